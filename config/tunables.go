package config

import "time"

// Metric names used across scoring, rules and recommendations.
const (
	MetricEmergencyFund    = "Emergency Fund"
	MetricSavingsProgress  = "Savings Progress"
	MetricAccountDiversity = "Account Diversity"
	MetricDebtManagement   = "Debt Management"
	MetricGoalAchievement  = "Goal Achievement"
)

// Tunables is the single table of weights and thresholds consumed by the
// score calculator, the rule evaluator and the opportunity generator.
// Numbers here are defaults, not hard physics; tune them without touching
// the evaluators.
type Tunables struct {
	// Weights of the five sub-scores. Must sum to 1.0.
	Weights map[string]float64

	// Status buckets for sub-scores: excellent/good/fair floors.
	ExcellentFloor int
	GoodFloor      int
	FairFloor      int

	// Fallbacks when the snapshot carries no transaction data.
	FallbackMonthlyExpenses float64
	FallbackMonthlyIncome   float64

	// Transactions in a snapshot cover this trailing window; monthly
	// figures divide totals by its length in months.
	LookbackMonths float64

	// Per-heuristic thresholds, keyed by heuristic name.
	Heuristics map[string]map[string]float64

	// Merchant/category markers for recurring subscription spend.
	SubscriptionMarkers []string

	// Staleness policy: regenerate after MaxArtifactAge, or during the
	// weekly refresh window (standard cron spec, hour granularity).
	MaxArtifactAge  time.Duration
	RefreshCronSpec string
}

// LookbackWindow converts LookbackMonths into the duration the snapshot
// aggregator queries over.
func (t Tunables) LookbackWindow() time.Duration {
	return time.Duration(t.LookbackMonths * 30 * 24 * float64(time.Hour))
}

// Heuristic names, keying their threshold entries in Tunables.Heuristics.
const (
	HeuristicExcessChecking   = "excess_checking"
	HeuristicSubscriptions    = "subscription_audit"
	HeuristicTopCategory      = "top_category_excess"
	HeuristicGoalAutomation   = "goal_automation"
	HeuristicSavingsShortfall = "savings_rate_shortfall"
	HeuristicIdleCash         = "idle_cash"
)

// Defaults returns the stock tunables table.
func Defaults() Tunables {
	return Tunables{
		Weights: map[string]float64{
			MetricEmergencyFund:    0.25,
			MetricSavingsProgress:  0.20,
			MetricAccountDiversity: 0.15,
			MetricDebtManagement:   0.20,
			MetricGoalAchievement:  0.20,
		},
		ExcellentFloor: 85,
		GoodFloor:      70,
		FairFloor:      50,

		FallbackMonthlyExpenses: 3000,
		FallbackMonthlyIncome:   5000,
		LookbackMonths:          3,

		Heuristics: map[string]map[string]float64{
			HeuristicExcessChecking: {
				"trigger":     5000, // total checking above this fires
				"keep_buffer": 3000, // leave this much behind
				"yield":       0.04, // assumed high-yield savings APY
				"round_to":    100,
			},
			HeuristicSubscriptions: {
				"cut_share":   0.3, // share of subscription spend assumed cuttable
				"min_monthly": 20,  // fire only when the cut is worth it
				"max_monthly": 80,  // cap the monthly estimate
			},
			HeuristicTopCategory: {
				"income_share": 0.20, // top category above this share of income fires
				"cut_share":    0.15,
			},
			HeuristicGoalAutomation: {
				"min_monthly": 100, // combined monthly goal need worth automating
			},
			HeuristicSavingsShortfall: {
				"target_rate": 20,  // percent of income
				"min_gap":     100, // dollar gap worth recommending
			},
			HeuristicIdleCash: {
				"min_balance":  10000,
				"invest_share": 0.10,
				"return_rate":  0.07, // illustrative market return
			},
		},

		SubscriptionMarkers: []string{
			"subscription", "streaming", "entertainment",
			"netflix", "spotify", "gym", "membership",
		},

		MaxArtifactAge:  7 * 24 * time.Hour,
		RefreshCronSpec: "0 9 * * 1", // Monday 09:00
	}
}
