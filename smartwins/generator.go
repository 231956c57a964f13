// Package smartwins runs a fixed battery of spending/saving heuristics
// over a snapshot and emits up to three ranked recommendations. Every
// dollar figure is computed from the snapshot; thresholds live in the
// shared tunables table.
package smartwins

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finwell-go-be/config"
	"finwell-go-be/models"
	"finwell-go-be/snapshot"
)

const maxWins = 3

type heuristic func(snap snapshot.Snapshot, cfg config.Tunables) (models.SmartWin, bool)

// battery runs in this fixed order; ranking happens afterward.
var battery = []heuristic{
	excessChecking,
	subscriptionAudit,
	topCategoryExcess,
	goalAutomation,
	savingsShortfall,
	idleCash,
}

// Generate applies the battery, de-duplicates, ranks by estimated annual
// impact (impact-less items last) and pads with evergreen tips so the
// batch always holds between 1 and 3 entries.
func Generate(snap snapshot.Snapshot, cfg config.Tunables, now time.Time, newID func() uuid.UUID) []models.SmartWin {
	var wins []models.SmartWin
	seen := make(map[string]bool)

	for _, h := range battery {
		win, ok := h(snap, cfg)
		if !ok || seen[win.Title] {
			continue
		}
		seen[win.Title] = true
		wins = append(wins, win)
	}

	// Impact-bearing items first, descending; stable so battery order
	// breaks ties.
	sort.SliceStable(wins, func(i, j int) bool {
		a, b := wins[i].Impact, wins[j].Impact
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	if len(wins) > maxWins {
		wins = wins[:maxWins]
	}
	for _, tip := range evergreenTips() {
		if len(wins) >= maxWins {
			break
		}
		if seen[tip.Title] {
			continue
		}
		seen[tip.Title] = true
		wins = append(wins, tip)
	}

	for i := range wins {
		wins[i].ID = newID()
		wins[i].UserID = snap.UserID
		wins[i].CreatedAt = now
	}
	return wins
}

func excessChecking(snap snapshot.Snapshot, cfg config.Tunables) (models.SmartWin, bool) {
	t := cfg.Heuristics[config.HeuristicExcessChecking]

	var total float64
	for _, a := range snap.AccountsOf("depository", "checking") {
		total += a.Balance
	}
	if total <= t["trigger"] {
		return models.SmartWin{}, false
	}

	movable := decimal.NewFromFloat(total - t["keep_buffer"])
	step := decimal.NewFromFloat(t["round_to"])
	transfer := movable.Div(step).Floor().Mul(step)
	impact := movable.Mul(decimal.NewFromFloat(t["yield"])).InexactFloat64()

	return models.SmartWin{
		Title: "Move idle checking cash to high-yield savings",
		Description: fmt.Sprintf(
			"You're holding about $%s in checking. Moving $%s to a high-yield savings account keeps a buffer and earns roughly %.0f%% APY.",
			decimal.NewFromFloat(total).StringFixed(0), transfer.StringFixed(0), t["yield"]*100),
		Type:       models.WinSavings,
		Impact:     &impact,
		Actionable: true,
	}, true
}

func subscriptionAudit(snap snapshot.Snapshot, cfg config.Tunables) (models.SmartWin, bool) {
	t := cfg.Heuristics[config.HeuristicSubscriptions]

	var total float64
	for _, tx := range snap.Transactions {
		if tx.Amount <= 0 {
			continue
		}
		if matchesSubscription(tx, cfg.SubscriptionMarkers) {
			total += tx.Amount
		}
	}
	monthly := total / cfg.LookbackMonths
	cut := monthly * t["cut_share"]
	if cut <= t["min_monthly"] {
		return models.SmartWin{}, false
	}

	monthlySaving := math.Min(cut, t["max_monthly"])
	impact := decimal.NewFromFloat(monthlySaving).Mul(decimal.NewFromInt(12)).InexactFloat64()

	return models.SmartWin{
		Title: "Audit your recurring subscriptions",
		Description: fmt.Sprintf(
			"You're spending about $%.0f/month on subscriptions and entertainment. Cancelling the ones you don't use could free up around $%.0f/month.",
			monthly, monthlySaving),
		Type:       models.WinSpending,
		Impact:     &impact,
		Actionable: true,
	}, true
}

func topCategoryExcess(snap snapshot.Snapshot, cfg config.Tunables) (models.SmartWin, bool) {
	t := cfg.Heuristics[config.HeuristicTopCategory]

	income := snap.TotalIncome() / cfg.LookbackMonths
	if income <= 0 {
		return models.SmartWin{}, false
	}

	byCategory := make(map[string]float64)
	for _, tx := range snap.Transactions {
		if tx.Amount <= 0 {
			continue
		}
		byCategory[primaryCategory(tx)] += tx.Amount
	}
	var topName string
	var topMonthly float64
	for name, total := range byCategory {
		if monthly := total / cfg.LookbackMonths; monthly > topMonthly {
			topName, topMonthly = name, monthly
		}
	}
	if topMonthly <= income*t["income_share"] {
		return models.SmartWin{}, false
	}

	monthlyCut := topMonthly * t["cut_share"]
	impact := decimal.NewFromFloat(monthlyCut).Mul(decimal.NewFromInt(12)).InexactFloat64()

	return models.SmartWin{
		Title: fmt.Sprintf("Trim your %s spending", topName),
		Description: fmt.Sprintf(
			"%s is your largest expense at about $%.0f/month, more than %.0f%% of your income. Cutting it by 15%% saves roughly $%.0f/month.",
			topName, topMonthly, t["income_share"]*100, monthlyCut),
		Type:       models.WinSpending,
		Impact:     &impact,
		Actionable: true,
	}, true
}

func goalAutomation(snap snapshot.Snapshot, cfg config.Tunables) (models.SmartWin, bool) {
	t := cfg.Heuristics[config.HeuristicGoalAutomation]

	var monthlyNeeded float64
	for _, g := range snap.Goals {
		if g.Deadline == nil || !g.Deadline.After(snap.At) {
			continue
		}
		remaining := g.TargetAmount - g.SavedAmount
		if remaining <= 0 {
			continue
		}
		months := math.Max(1, g.Deadline.Sub(snap.At).Hours()/(24*30))
		monthlyNeeded += remaining / months
	}
	if monthlyNeeded <= t["min_monthly"] {
		return models.SmartWin{}, false
	}

	// No impact estimate: the contribution itself is the benefit.
	return models.SmartWin{
		Title: "Automate your goal contributions",
		Description: fmt.Sprintf(
			"Hitting your goal deadlines takes about $%.0f/month. A recurring transfer on payday makes it automatic.",
			monthlyNeeded),
		Type:       models.WinGoal,
		Actionable: true,
	}, true
}

func savingsShortfall(snap snapshot.Snapshot, cfg config.Tunables) (models.SmartWin, bool) {
	t := cfg.Heuristics[config.HeuristicSavingsShortfall]

	income := snap.TotalIncome() / cfg.LookbackMonths
	if income <= 0 {
		return models.SmartWin{}, false
	}
	spending := snap.TotalExpenses() / cfg.LookbackMonths
	rate := (income - spending) / income * 100
	if rate >= t["target_rate"] {
		return models.SmartWin{}, false
	}

	gap := income*t["target_rate"]/100 - (income - spending)
	if gap <= t["min_gap"] {
		return models.SmartWin{}, false
	}

	rounded := decimal.NewFromFloat(gap).Round(0)
	impact := rounded.Mul(decimal.NewFromInt(12)).InexactFloat64()

	return models.SmartWin{
		Title: "Raise your savings rate",
		Description: fmt.Sprintf(
			"You're saving %.0f%% of income; %.0f%% is the usual target. Setting aside another $%s/month closes the gap.",
			math.Max(0, rate), t["target_rate"], rounded.StringFixed(0)),
		Type:       models.WinSavings,
		Impact:     &impact,
		Actionable: true,
	}, true
}

func idleCash(snap snapshot.Snapshot, cfg config.Tunables) (models.SmartWin, bool) {
	t := cfg.Heuristics[config.HeuristicIdleCash]

	var cash float64
	hasInvestment := false
	for _, a := range snap.Accounts {
		switch a.Type {
		case "depository":
			cash += a.Balance
		case "investment":
			hasInvestment = true
		}
	}
	if hasInvestment || cash <= t["min_balance"] {
		return models.SmartWin{}, false
	}

	amount := decimal.NewFromFloat(cash).Mul(decimal.NewFromFloat(t["invest_share"]))
	impact := amount.Mul(decimal.NewFromFloat(t["return_rate"])).InexactFloat64()

	return models.SmartWin{
		Title: "Put some cash to work in the market",
		Description: fmt.Sprintf(
			"You hold $%s in cash with no investment account. Investing about $%s (10%%) is a common starting point.",
			decimal.NewFromFloat(cash).StringFixed(0), amount.StringFixed(0)),
		Type:       models.WinInvestment,
		Impact:     &impact,
		Actionable: true,
	}, true
}

func matchesSubscription(tx models.Transaction, markers []string) bool {
	haystack := strings.ToLower(tx.Merchant)
	for _, c := range tx.CategoryList() {
		haystack += " " + strings.ToLower(c)
	}
	for _, m := range markers {
		if strings.Contains(haystack, m) {
			return true
		}
	}
	return false
}

func primaryCategory(tx models.Transaction) string {
	if cats := tx.CategoryList(); len(cats) > 0 {
		return cats[0]
	}
	if tx.Merchant != "" {
		return tx.Merchant
	}
	return "Uncategorized"
}

// evergreenTips pad the batch when few heuristics fire. Low priority, no
// impact estimate, so they always rank behind computed wins.
func evergreenTips() []models.SmartWin {
	return []models.SmartWin{
		{
			Title:       "Track your spending for two weeks",
			Description: "Knowing where the money goes is the first step; most people find one easy cut within a month.",
			Type:        models.WinOpportunity,
			Actionable:  true,
		},
		{
			Title:       "Automate a small weekly saving",
			Description: "Even $10/week builds the habit. Raise it once you stop noticing the transfer.",
			Type:        models.WinOpportunity,
			Actionable:  true,
		},
		{
			Title:       "Start an emergency fund",
			Description: "A starter cushion of $500 keeps small surprises off your credit card.",
			Type:        models.WinOpportunity,
			Actionable:  true,
		},
	}
}
