// Package health computes the composite financial-wellness score and its
// five weighted sub-scores from a snapshot. Everything here is pure and
// deterministic; empty collections hit explicit "no data" floors instead
// of errors.
package health

import (
	"fmt"
	"math"

	"finwell-go-be/config"
	"finwell-go-be/snapshot"
)

// Metric is one scored category. Ephemeral: recomputed per call, never
// stored as a row.
type Metric struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	Status         string `json:"status"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// Report pairs the composite score with its five metrics.
type Report struct {
	CompositeScore int      `json:"composite_score"`
	Metrics        []Metric `json:"metrics"`
}

// Compute evaluates all five sub-scores and their weighted composite.
func Compute(snap snapshot.Snapshot, cfg config.Tunables) Report {
	metrics := []Metric{
		buildMetric(config.MetricEmergencyFund, emergencyFundScore(snap, cfg), cfg,
			"Months of expenses covered by savings",
			"Build your emergency fund toward 3-6 months of expenses",
			"Your emergency fund is in good shape; keep it topped up"),
		buildMetric(config.MetricSavingsProgress, savingsProgressScore(snap), cfg,
			"Overall progress toward your savings goals",
			"Increase contributions to close the gap on your goals",
			"Solid progress; stay consistent with contributions"),
		buildMetric(config.MetricAccountDiversity, accountDiversityScore(snap), cfg,
			"Variety of account types in your financial picture",
			"Consider adding account types like savings or investment",
			"Your accounts cover a healthy mix of purposes"),
		buildMetric(config.MetricDebtManagement, debtManagementScore(snap, cfg), cfg,
			"Outstanding debt relative to your income",
			"Prioritize paying down high-interest balances",
			"Debt load looks manageable relative to income"),
		buildMetric(config.MetricGoalAchievement, goalAchievementScore(snap), cfg,
			"How close your individual goals are to completion",
			"Pick one goal and give it a funding boost this month",
			"Goals are on track; review targets quarterly"),
	}

	var weighted float64
	for _, m := range metrics {
		weighted += cfg.Weights[m.Name] * float64(m.Score)
	}

	return Report{
		CompositeScore: clampScore(int(math.Round(weighted))),
		Metrics:        metrics,
	}
}

func buildMetric(name string, score int, cfg config.Tunables, desc, improve, maintain string) Metric {
	rec := maintain
	if score < cfg.GoodFloor {
		rec = improve
	}
	return Metric{
		Name:           name,
		Score:          score,
		Status:         statusFor(score, cfg),
		Description:    fmt.Sprintf("%s.", desc),
		Recommendation: rec,
	}
}

func statusFor(score int, cfg config.Tunables) string {
	switch {
	case score >= cfg.ExcellentFloor:
		return "excellent"
	case score >= cfg.GoodFloor:
		return "good"
	case score >= cfg.FairFloor:
		return "fair"
	default:
		return "poor"
	}
}

// MonthlyExpenses estimates monthly outflow from the snapshot window,
// falling back to the configured constant when there is no usable data.
func MonthlyExpenses(snap snapshot.Snapshot, cfg config.Tunables) float64 {
	monthly := snap.TotalExpenses() / cfg.LookbackMonths
	if monthly <= 0 {
		return cfg.FallbackMonthlyExpenses
	}
	return monthly
}

// MonthlyIncome estimates monthly inflow the same way.
func MonthlyIncome(snap snapshot.Snapshot, cfg config.Tunables) float64 {
	monthly := snap.TotalIncome() / cfg.LookbackMonths
	if monthly <= 0 {
		return cfg.FallbackMonthlyIncome
	}
	return monthly
}

func emergencyFundScore(snap snapshot.Snapshot, cfg config.Tunables) int {
	if len(snap.Accounts) == 0 {
		return 30
	}
	savingsAccounts := snap.AccountsOf("depository", "savings")
	if len(savingsAccounts) == 0 {
		return 40
	}

	var totalSavings float64
	for _, a := range savingsAccounts {
		totalSavings += a.Balance
	}

	monthsCovered := totalSavings / MonthlyExpenses(snap, cfg)
	switch {
	case monthsCovered >= 6:
		return 100
	case monthsCovered >= 3:
		return 80
	case monthsCovered >= 1:
		return 60
	default:
		return maxInt(30, int(math.Round(monthsCovered*30)))
	}
}

func savingsProgressScore(snap snapshot.Snapshot) int {
	if len(snap.Goals) == 0 {
		return 40
	}
	var saved, target float64
	for _, g := range snap.Goals {
		saved += g.SavedAmount
		target += g.TargetAmount
	}
	if target == 0 {
		return 50
	}
	pct := int(math.Round(saved / target * 100))
	if pct < 20 {
		return 20
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func accountDiversityScore(snap snapshot.Snapshot) int {
	if len(snap.Accounts) == 0 {
		return 20
	}
	subtypes := make(map[string]bool)
	for _, a := range snap.Accounts {
		if a.Subtype != "" {
			subtypes[a.Subtype] = true
		}
	}
	switch {
	case len(subtypes) >= 4:
		return 100
	case len(subtypes) == 3:
		return 80
	case len(subtypes) == 2:
		return 60
	default:
		return 40
	}
}

// debtManagementScore rates outstanding credit/loan balances against
// annualized income. With no accounts at all there is no liability data,
// so it returns a neutral 75 rather than guessing.
func debtManagementScore(snap snapshot.Snapshot, cfg config.Tunables) int {
	if len(snap.Accounts) == 0 {
		return 75
	}

	var totalDebt float64
	for _, a := range snap.Accounts {
		if a.Type == "credit" || a.Type == "loan" {
			totalDebt += math.Abs(a.Balance)
		}
	}
	if totalDebt == 0 {
		return 90
	}

	annualIncome := MonthlyIncome(snap, cfg) * 12
	ratio := totalDebt / annualIncome
	switch {
	case ratio <= 0.2:
		return 85
	case ratio <= 0.36: // conventional DTI comfort line
		return 75
	case ratio <= 0.5:
		return 60
	default:
		return maxInt(30, 60-int(math.Round((ratio-0.5)*50)))
	}
}

func goalAchievementScore(snap snapshot.Snapshot) int {
	if len(snap.Goals) == 0 {
		return 30
	}
	var total float64
	for _, g := range snap.Goals {
		if g.TargetAmount <= 0 {
			continue // zero-target goals contribute 0
		}
		total += math.Min(100, g.SavedAmount/g.TargetAmount*100)
	}
	return clampScore(int(math.Round(total / float64(len(snap.Goals)))))
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
