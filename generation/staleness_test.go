package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finwell-go-be/config"
)

// Wednesday afternoon, well outside the Monday 09:00 refresh window.
var wednesday = time.Date(2025, 3, 5, 15, 30, 0, 0, time.UTC)

func newStaleness(t *testing.T) *Staleness {
	t.Helper()
	s, err := NewStaleness(config.Defaults())
	require.NoError(t, err)
	return s
}

func TestNoPriorArtifactIsAlwaysDue(t *testing.T) {
	assert.True(t, newStaleness(t).Due(nil, wednesday))
}

func TestOldArtifactIsDue(t *testing.T) {
	createdAt := wednesday.Add(-8 * 24 * time.Hour)
	assert.True(t, newStaleness(t).Due(&createdAt, wednesday))
}

func TestFreshArtifactOutsideWindowIsNotDue(t *testing.T) {
	createdAt := wednesday.Add(-time.Hour)
	assert.False(t, newStaleness(t).Due(&createdAt, wednesday))
}

func TestWindowTriggersWhenNotGeneratedToday(t *testing.T) {
	s := newStaleness(t)
	monday := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

	yesterday := monday.Add(-24 * time.Hour)
	assert.True(t, s.Due(&yesterday, monday))

	sameDay := monday.Add(-90 * time.Minute)
	assert.False(t, s.Due(&sameDay, monday))
}

func TestWindowRequiresScheduledHour(t *testing.T) {
	s := newStaleness(t)
	mondayAfternoon := time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)
	yesterday := mondayAfternoon.Add(-24 * time.Hour)
	assert.False(t, s.Due(&yesterday, mondayAfternoon))
}

func TestBadCronSpecRejected(t *testing.T) {
	cfg := config.Defaults()
	cfg.RefreshCronSpec = "not a cron spec"
	_, err := NewStaleness(cfg)
	assert.Error(t, err)
}
