package generation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"finwell-go-be/config"
	"finwell-go-be/health"
	"finwell-go-be/models"
	"finwell-go-be/rules"
	"finwell-go-be/smartwins"
	"finwell-go-be/snapshot"
)

// LocalStrategy computes the batch deterministically from the snapshot
// using the scoring, rule and heuristic engines. It cannot fail and is
// the terminal link of the chain.
type LocalStrategy struct {
	cfg     config.Tunables
	catalog []models.HealthRule
	now     func() time.Time
	newID   IDFunc
}

// NewLocalStrategy wires the deterministic generator. The catalog may be
// empty; rule-derived insights are then simply absent.
func NewLocalStrategy(cfg config.Tunables, catalog []models.HealthRule, now func() time.Time, newID IDFunc) *LocalStrategy {
	if now == nil {
		now = time.Now
	}
	return &LocalStrategy{cfg: cfg, catalog: catalog, now: now, newID: newID}
}

func (l *LocalStrategy) Name() string { return "local" }

func (l *LocalStrategy) Generate(_ context.Context, snap snapshot.Snapshot) (*Artifacts, error) {
	now := l.now()

	report := health.Compute(snap, l.cfg)
	flags := rules.Active(rules.Evaluate(snap, l.catalog, nil, l.cfg, now, l.newID))

	art := &Artifacts{
		Insights:  l.insights(snap, report, flags, now),
		SmartWins: smartwins.Generate(snap, l.cfg, now, l.newID),
	}
	return art, nil
}

// insights derives dismissible explanations from weak metrics and from
// the active flags raised by the rule catalog.
func (l *LocalStrategy) insights(snap snapshot.Snapshot, report health.Report, flags []models.HealthFlag, now time.Time) []models.Insight {
	var out []models.Insight

	for _, m := range report.Metrics {
		if m.Score >= l.cfg.GoodFloor {
			continue
		}
		priority := "medium"
		if m.Status == "poor" {
			priority = "high"
		}
		out = append(out, models.Insight{
			ID:              l.newID(),
			UserID:          snap.UserID,
			Type:            "health_metric",
			Title:           m.Name + " needs attention",
			Description:     m.Description,
			ConfidenceScore: 0.8,
			PriorityLevel:   priority,
			ActionItems:     jsonList([]string{m.Recommendation}),
			CreatedAt:       now,
		})
	}

	byRuleID := make(map[string]models.HealthRule, len(l.catalog))
	for _, r := range l.catalog {
		byRuleID[r.RuleID] = r
	}
	for _, f := range flags {
		rule := byRuleID[f.RuleID]
		priority := rule.Severity
		if priority == "" {
			priority = "medium"
		}
		out = append(out, models.Insight{
			ID:              l.newID(),
			UserID:          snap.UserID,
			Type:            "rule_flag",
			Title:           titleFromRuleID(f.RuleID),
			Description:     "Triggered by your current account and spending data.",
			ConfidenceScore: 0.9,
			PriorityLevel:   priority,
			ActionItems:     rule.RecommendedActions,
			CreatedAt:       now,
		})
	}

	return out
}

func titleFromRuleID(ruleID string) string {
	title := strings.ReplaceAll(ruleID, "_", " ")
	if title == "" {
		return ruleID
	}
	return strings.ToUpper(title[:1]) + title[1:]
}

func jsonList(items []string) datatypes.JSON {
	b, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}
