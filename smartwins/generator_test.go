package smartwins

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finwell-go-be/config"
	"finwell-go-be/models"
	"finwell-go-be/snapshot"
)

var fixedNow = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

func generate(t *testing.T, snap snapshot.Snapshot) []models.SmartWin {
	t.Helper()
	snap.At = fixedNow
	return Generate(snap, config.Defaults(), fixedNow, uuid.New)
}

func winByType(wins []models.SmartWin, winType string) (models.SmartWin, bool) {
	for _, w := range wins {
		if w.Type == winType {
			return w, true
		}
	}
	return models.SmartWin{}, false
}

func TestExcessCheckingTransferAndImpact(t *testing.T) {
	snap := snapshot.Snapshot{
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "checking", Balance: 8000},
		},
	}

	wins := generate(t, snap)
	win, ok := winByType(wins, models.WinSavings)
	require.True(t, ok, "excess-checking heuristic should fire")

	// (8000-3000) floored to $100 steps = 5000; impact = 5000 * 0.04.
	assert.Contains(t, win.Description, "$5000")
	require.NotNil(t, win.Impact)
	assert.InDelta(t, 200, *win.Impact, 0.01)
}

func TestBatchSizeAlwaysOneToThree(t *testing.T) {
	snaps := []snapshot.Snapshot{
		{}, // no data at all
		{Accounts: []models.Account{{ID: uuid.New(), Type: "depository", Subtype: "checking", Balance: 100}}},
		{Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "checking", Balance: 50000},
		}},
	}
	for i, snap := range snaps {
		wins := generate(t, snap)
		assert.GreaterOrEqual(t, len(wins), 1, "snapshot %d", i)
		assert.LessOrEqual(t, len(wins), 3, "snapshot %d", i)
	}
}

func TestImpactOrdering(t *testing.T) {
	// Fires excess checking, idle cash and subscription audit at once.
	snap := snapshot.Snapshot{
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "checking", Balance: 20000},
		},
		Transactions: []models.Transaction{
			{ID: uuid.New(), Amount: 150, Merchant: "Netflix"},
			{ID: uuid.New(), Amount: 150, Merchant: "Spotify"},
		},
	}

	wins := generate(t, snap)
	require.NotEmpty(t, wins)

	sawNilImpact := false
	var prev *float64
	for _, w := range wins {
		if w.Impact == nil {
			sawNilImpact = true
			continue
		}
		require.False(t, sawNilImpact, "impact-bearing win after an impact-less one")
		if prev != nil {
			assert.LessOrEqual(t, *w.Impact, *prev)
		}
		prev = w.Impact
	}
}

func TestIdempotentForIdenticalSnapshot(t *testing.T) {
	snap := snapshot.Snapshot{
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "checking", Balance: 8000},
			{ID: uuid.New(), Type: "depository", Subtype: "savings", Balance: 500},
		},
		Transactions: []models.Transaction{
			{ID: uuid.New(), Amount: -3000},
			{ID: uuid.New(), Amount: 2900},
		},
	}

	first := generate(t, snap)
	second := generate(t, snap)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Title, second[i].Title)
		if first[i].Impact == nil {
			assert.Nil(t, second[i].Impact)
		} else {
			require.NotNil(t, second[i].Impact)
			assert.InDelta(t, *first[i].Impact, *second[i].Impact, 1e-9)
		}
	}
}

func TestSubscriptionAudit(t *testing.T) {
	// $300 of subscription spend over 3 months = $100/month; 30% of that
	// beats the $20 floor, so the audit fires with 30*12 annual impact.
	snap := snapshot.Snapshot{
		Transactions: []models.Transaction{
			{ID: uuid.New(), Amount: 100, Merchant: "Netflix"},
			{ID: uuid.New(), Amount: 100, Merchant: "Gold's Gym Membership"},
			{ID: uuid.New(), Amount: 100, Merchant: "Spotify"},
		},
	}

	wins := generate(t, snap)
	win, ok := winByType(wins, models.WinSpending)
	require.True(t, ok)
	require.NotNil(t, win.Impact)
	assert.InDelta(t, 360, *win.Impact, 0.01)
}

func TestIdleCashNeedsNoInvestmentAccount(t *testing.T) {
	cash := snapshot.Snapshot{
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "savings", Balance: 20000},
		},
	}
	wins := generate(t, cash)
	win, ok := winByType(wins, models.WinInvestment)
	require.True(t, ok)
	require.NotNil(t, win.Impact)
	// 20000 * 10% * 7%
	assert.InDelta(t, 140, *win.Impact, 0.01)

	invested := cash
	invested.Accounts = append(invested.Accounts,
		models.Account{ID: uuid.New(), Type: "investment", Subtype: "brokerage", Balance: 5000})
	wins = generate(t, invested)
	_, ok = winByType(wins, models.WinInvestment)
	assert.False(t, ok, "idle-cash should not fire with an investment account present")
}

func TestGoalAutomationFiresWithoutImpact(t *testing.T) {
	deadline := fixedNow.AddDate(0, 6, 0)
	snap := snapshot.Snapshot{
		Goals: []models.Goal{
			{ID: uuid.New(), Name: "House", TargetAmount: 20000, SavedAmount: 2000, Deadline: &deadline},
		},
	}

	wins := generate(t, snap)
	win, ok := winByType(wins, models.WinGoal)
	require.True(t, ok)
	assert.Nil(t, win.Impact)
	assert.True(t, win.Actionable)
}

func TestEveryWinIsStamped(t *testing.T) {
	wins := generate(t, snapshot.Snapshot{UserID: uuid.New()})
	for _, w := range wins {
		assert.NotEqual(t, uuid.Nil, w.ID)
		assert.Equal(t, fixedNow, w.CreatedAt)
	}
}
