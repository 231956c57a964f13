package rules

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

var evalNow = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

func lowSavingsSnapshot(userID uuid.UUID) snapshot.Snapshot {
	return snapshot.Snapshot{
		UserID: userID,
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "savings", Balance: 1000},
		},
		// 9000 of expenses across the window = 3000/month, so savings
		// cover well under a month.
		Transactions: []models.Transaction{
			{ID: uuid.New(), Amount: 3000},
			{ID: uuid.New(), Amount: 3000},
			{ID: uuid.New(), Amount: 3000},
			{ID: uuid.New(), Amount: -9000},
		},
	}
}

func healthySnapshot(userID uuid.UUID) snapshot.Snapshot {
	return snapshot.Snapshot{
		UserID: userID,
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "savings", Balance: 30000},
		},
		Transactions: []models.Transaction{
			{ID: uuid.New(), Amount: 3000},
			{ID: uuid.New(), Amount: -9000},
		},
	}
}

func catalogRule(ruleID string) models.HealthRule {
	for _, r := range DefaultCatalog() {
		if r.RuleID == ruleID {
			return r
		}
	}
	panic("unknown rule " + ruleID)
}

func TestConditionTriggersActiveFlag(t *testing.T) {
	userID := uuid.New()
	flags := Evaluate(lowSavingsSnapshot(userID), []models.HealthRule{catalogRule("low_emergency_fund")},
		nil, config.Defaults(), evalNow, uuid.New)

	require.Len(t, flags, 1)
	f := flags[0]
	assert.Equal(t, models.FlagActive, f.Status)
	assert.Equal(t, "low_emergency_fund", f.RuleID)
	assert.Equal(t, userID, f.UserID)
	assert.Equal(t, evalNow, f.FirstTriggeredAt)
	assert.Equal(t, evalNow, f.LastEvaluatedAt)
	assert.Nil(t, f.ResolvedAt)
	assert.NotNil(t, f.TriggerData["months_covered"])
}

func TestOneActiveFlagPerRule(t *testing.T) {
	userID := uuid.New()
	firstSeen := evalNow.Add(-48 * time.Hour)
	existing := []models.HealthFlag{{
		ID:               uuid.New(),
		UserID:           userID,
		RuleID:           "low_emergency_fund",
		Status:           models.FlagActive,
		FirstTriggeredAt: firstSeen,
		LastEvaluatedAt:  firstSeen,
	}}

	flags := Evaluate(lowSavingsSnapshot(userID), []models.HealthRule{catalogRule("low_emergency_fund")},
		existing, config.Defaults(), evalNow, uuid.New)

	require.Len(t, flags, 1)
	assert.Equal(t, existing[0].ID, flags[0].ID)
	assert.Equal(t, firstSeen, flags[0].FirstTriggeredAt)
	assert.Equal(t, evalNow, flags[0].LastEvaluatedAt)
}

func TestAutoResolveWhenConditionClears(t *testing.T) {
	userID := uuid.New()
	existing := []models.HealthFlag{{
		ID:     uuid.New(),
		UserID: userID,
		RuleID: "low_emergency_fund", // AutoResolve: true
		Status: models.FlagActive,
	}}

	flags := Evaluate(healthySnapshot(userID), []models.HealthRule{catalogRule("low_emergency_fund")},
		existing, config.Defaults(), evalNow, uuid.New)

	require.Len(t, flags, 1)
	assert.Equal(t, models.FlagResolved, flags[0].Status)
	require.NotNil(t, flags[0].ResolvedAt)
	assert.Equal(t, evalNow, *flags[0].ResolvedAt)
}

func TestStickyFlagWithoutAutoResolve(t *testing.T) {
	userID := uuid.New()
	existing := []models.HealthFlag{{
		ID:     uuid.New(),
		UserID: userID,
		RuleID: "high_debt_load", // AutoResolve: false
		Status: models.FlagActive,
	}}

	// No credit or loan accounts, so the condition no longer holds.
	flags := Evaluate(healthySnapshot(userID), []models.HealthRule{catalogRule("high_debt_load")},
		existing, config.Defaults(), evalNow, uuid.New)

	require.Len(t, flags, 1)
	assert.Equal(t, models.FlagActive, flags[0].Status)
	assert.Nil(t, flags[0].ResolvedAt)
}

func TestEmptyCatalogIsNoOp(t *testing.T) {
	userID := uuid.New()
	existing := []models.HealthFlag{{
		ID:     uuid.New(),
		UserID: userID,
		RuleID: "low_emergency_fund",
		Status: models.FlagActive,
	}}

	flags := Evaluate(lowSavingsSnapshot(userID), nil, existing, config.Defaults(), evalNow, uuid.New)
	assert.Equal(t, existing, flags)
}

func TestUnknownConditionSkipped(t *testing.T) {
	rule := models.HealthRule{RuleID: "mystery", ConditionLogic: "not_a_condition"}
	flags := Evaluate(lowSavingsSnapshot(uuid.New()), []models.HealthRule{rule},
		nil, config.Defaults(), evalNow, uuid.New)
	assert.Empty(t, flags)
}

func TestActiveFilter(t *testing.T) {
	resolvedAt := evalNow
	flags := []models.HealthFlag{
		{ID: uuid.New(), Status: models.FlagActive},
		{ID: uuid.New(), Status: models.FlagResolved, ResolvedAt: &resolvedAt},
		{ID: uuid.New(), Status: models.FlagActive},
	}
	assert.Len(t, Active(flags), 2)
}

func TestDebtToIncomeCondition(t *testing.T) {
	userID := uuid.New()
	snap := snapshot.Snapshot{
		UserID: userID,
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "loan", Subtype: "student", Balance: 50000},
		},
		// 3000/month income -> 36000/year; 50000/36000 well above 0.36.
		Transactions: []models.Transaction{{ID: uuid.New(), Amount: -9000}},
	}

	flags := Evaluate(snap, []models.HealthRule{catalogRule("high_debt_load")},
		nil, config.Defaults(), evalNow, uuid.New)
	require.Len(t, flags, 1)
	assert.Equal(t, models.FlagActive, flags[0].Status)
}
