// Package rules evaluates the declarative rule catalog against a snapshot
// and drives the flag lifecycle: inactive -> active when a condition first
// holds, active -> resolved on user action or (when the rule opts in)
// when the condition stops holding.
package rules

import (
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"finwell-go-be/config"
	"finwell-go-be/health"
	"finwell-go-be/models"
	"finwell-go-be/snapshot"
)

// Condition tests one rule against a snapshot. It returns whether the
// condition holds plus the trigger data worth recording on the flag.
type Condition func(snap snapshot.Snapshot, thresholds map[string]interface{}, cfg config.Tunables) (bool, map[string]interface{})

// conditions is the registry keyed by HealthRule.ConditionLogic. Rules
// naming an unknown condition are skipped, not failed.
var conditions = map[string]Condition{
	"emergency_fund_below_months": emergencyFundBelow,
	"debt_to_income_above":        debtToIncomeAbove,
	"cash_flow_negative":          cashFlowNegative,
	"savings_rate_below":          savingsRateBelow,
}

// Evaluate runs the catalog against the snapshot and returns the updated
// flag set. An empty catalog is a valid state and yields the existing
// flags untouched. Pure: callers persist the result themselves.
func Evaluate(snap snapshot.Snapshot, catalog []models.HealthRule, existing []models.HealthFlag,
	cfg config.Tunables, now time.Time, newID func() uuid.UUID) []models.HealthFlag {

	flags := make([]models.HealthFlag, len(existing))
	copy(flags, existing)

	activeIdx := make(map[string]int)
	for i, f := range flags {
		if f.Status == models.FlagActive {
			activeIdx[f.RuleID] = i
		}
	}

	for _, rule := range catalog {
		cond, ok := conditions[rule.ConditionLogic]
		if !ok {
			log.Printf("rules: unknown condition %q on rule %s, skipping", rule.ConditionLogic, rule.RuleID)
			continue
		}

		holds, data := cond(snap, rule.Thresholds, cfg)
		idx, hasActive := activeIdx[rule.RuleID]

		switch {
		case holds && hasActive:
			flags[idx].LastEvaluatedAt = now
			flags[idx].TriggerData = data
		case holds:
			flags = append(flags, models.HealthFlag{
				ID:               newID(),
				UserID:           snap.UserID,
				RuleID:           rule.RuleID,
				Status:           models.FlagActive,
				TriggerData:      data,
				FirstTriggeredAt: now,
				LastEvaluatedAt:  now,
			})
		case hasActive:
			flags[idx].LastEvaluatedAt = now
			if rule.AutoResolve {
				resolvedAt := now
				flags[idx].Status = models.FlagResolved
				flags[idx].ResolvedAt = &resolvedAt
			}
		}
	}

	return flags
}

// Active filters a flag set down to the active ones; only these are
// surfaced to insight generation.
func Active(flags []models.HealthFlag) []models.HealthFlag {
	var out []models.HealthFlag
	for _, f := range flags {
		if f.Status == models.FlagActive {
			out = append(out, f)
		}
	}
	return out
}

func emergencyFundBelow(snap snapshot.Snapshot, t map[string]interface{}, cfg config.Tunables) (bool, map[string]interface{}) {
	var savings float64
	for _, a := range snap.AccountsOf("depository", "savings") {
		savings += a.Balance
	}
	months := savings / health.MonthlyExpenses(snap, cfg)
	floor := threshold(t, "months", 3)
	return len(snap.Accounts) > 0 && months < floor, map[string]interface{}{
		"months_covered": math.Round(months*10) / 10,
		"threshold":      floor,
	}
}

func debtToIncomeAbove(snap snapshot.Snapshot, t map[string]interface{}, cfg config.Tunables) (bool, map[string]interface{}) {
	var debt float64
	for _, a := range snap.Accounts {
		if a.Type == "credit" || a.Type == "loan" {
			debt += math.Abs(a.Balance)
		}
	}
	ratio := debt / (health.MonthlyIncome(snap, cfg) * 12)
	ceiling := threshold(t, "ratio", 0.36)
	return ratio > ceiling, map[string]interface{}{
		"debt_to_income": math.Round(ratio*100) / 100,
		"threshold":      ceiling,
	}
}

func cashFlowNegative(snap snapshot.Snapshot, t map[string]interface{}, cfg config.Tunables) (bool, map[string]interface{}) {
	income := snap.TotalIncome()
	expenses := snap.TotalExpenses()
	if income == 0 && expenses == 0 {
		return false, nil
	}
	return expenses > income, map[string]interface{}{
		"monthly_income":   income / cfg.LookbackMonths,
		"monthly_expenses": expenses / cfg.LookbackMonths,
	}
}

func savingsRateBelow(snap snapshot.Snapshot, t map[string]interface{}, cfg config.Tunables) (bool, map[string]interface{}) {
	income := snap.TotalIncome()
	if income == 0 {
		return false, nil
	}
	rate := (income - snap.TotalExpenses()) / income * 100
	floor := threshold(t, "rate", 20)
	return rate < floor, map[string]interface{}{
		"savings_rate": math.Round(rate*10) / 10,
		"threshold":    floor,
	}
}

// threshold reads a numeric threshold off the rule's JSON map. JSON
// numbers decode as float64; anything else falls back to the default.
func threshold(t map[string]interface{}, key string, def float64) float64 {
	if t == nil {
		return def
	}
	switch v := t[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

// DefaultCatalog seeds a usable rule set when storage has none.
func DefaultCatalog() []models.HealthRule {
	return []models.HealthRule{
		{
			RuleID:         "low_emergency_fund",
			Category:       "savings",
			ConditionLogic: "emergency_fund_below_months",
			Thresholds:     datatypes.JSONMap{"months": 3},
			Severity:       "high",
			RecommendedActions: mustJSON([]string{
				"Open a dedicated high-yield savings account",
				"Automate a weekly transfer into it",
			}),
			AutoResolve: true,
		},
		{
			RuleID:         "high_debt_load",
			Category:       "debt",
			ConditionLogic: "debt_to_income_above",
			Thresholds:     datatypes.JSONMap{"ratio": 0.36},
			Severity:       "medium",
			RecommendedActions: mustJSON([]string{
				"List balances by interest rate",
				"Put extra payments toward the highest rate first",
			}),
		},
		{
			RuleID:         "negative_cash_flow",
			Category:       "spending",
			ConditionLogic: "cash_flow_negative",
			Thresholds:     datatypes.JSONMap{},
			Severity:       "high",
			RecommendedActions: mustJSON([]string{
				"Review your three largest spending categories",
				"Set a weekly spending check-in",
			}),
			AutoResolve: true,
		},
	}
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}
