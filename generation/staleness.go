package generation

import (
	"time"

	"github.com/robfig/cron/v3"

	"finwell-go-be/config"
)

// Staleness decides when a persisted artifact batch must be regenerated:
// when it is older than the max age, or during the weekly refresh window
// if nothing was generated that calendar day. No prior artifact is
// always due.
type Staleness struct {
	maxAge   time.Duration
	schedule cron.Schedule
}

// NewStaleness parses the refresh window from the tunables table.
func NewStaleness(cfg config.Tunables) (*Staleness, error) {
	sched, err := cron.ParseStandard(cfg.RefreshCronSpec)
	if err != nil {
		return nil, err
	}
	return &Staleness{maxAge: cfg.MaxArtifactAge, schedule: sched}, nil
}

// Due reports whether regeneration is required for an artifact created at
// the given time. Either rule alone is sufficient.
func (s *Staleness) Due(createdAt *time.Time, now time.Time) bool {
	if createdAt == nil {
		return true
	}
	if now.Sub(*createdAt) >= s.maxAge {
		return true
	}
	if s.inWindow(now) && !sameDay(*createdAt, now) {
		return true
	}
	return false
}

// inWindow reports whether the current hour is a scheduled refresh tick.
// The cron spec has hour granularity, so the window spans that hour.
func (s *Staleness) inWindow(now time.Time) bool {
	hourStart := now.Truncate(time.Hour)
	return s.schedule.Next(hourStart.Add(-time.Second)).Equal(hourStart)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
