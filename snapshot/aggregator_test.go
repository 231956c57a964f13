package snapshot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"finwell-go-be/models"
)

func TestFlowTotalsFollowSignConvention(t *testing.T) {
	snap := Snapshot{
		Transactions: []models.Transaction{
			{ID: uuid.New(), Amount: 120.50},  // expense
			{ID: uuid.New(), Amount: 79.50},   // expense
			{ID: uuid.New(), Amount: -3000},   // income
			{ID: uuid.New(), Amount: -250.25}, // income
		},
	}

	assert.InDelta(t, 200.0, snap.TotalExpenses(), 1e-9)
	assert.InDelta(t, 3250.25, snap.TotalIncome(), 1e-9)
}

func TestAccountsOfFiltersTypeAndSubtype(t *testing.T) {
	snap := Snapshot{
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "checking"},
			{ID: uuid.New(), Type: "depository", Subtype: "savings"},
			{ID: uuid.New(), Type: "investment", Subtype: "brokerage"},
		},
	}

	assert.Len(t, snap.AccountsOf("depository", ""), 2)
	assert.Len(t, snap.AccountsOf("depository", "savings"), 1)
	assert.Empty(t, snap.AccountsOf("loan", ""))
}

func TestNilDatabaseYieldsEmptySnapshot(t *testing.T) {
	agg := NewAggregator(nil, 0)
	snap := agg.Load(uuid.New())

	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Goals)
	assert.Empty(t, snap.Transactions)
	assert.False(t, snap.At.IsZero())
}
