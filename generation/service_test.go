package generation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finwell-go-be/config"
	"finwell-go-be/models"
	"finwell-go-be/rules"
	"finwell-go-be/snapshot"
)

type countingStrategy struct {
	calls int
}

func (c *countingStrategy) Name() string { return "counting" }
func (c *countingStrategy) Generate(context.Context, snapshot.Snapshot) (*Artifacts, error) {
	c.calls++
	return &Artifacts{SmartWins: []models.SmartWin{{ID: uuid.New(), Title: "win"}}}, nil
}

func newTestService(strategy Strategy, at time.Time) *Service {
	staleness, _ := NewStaleness(config.Defaults())
	svc := NewService(NewChain(strategy), NewStore(nil), NewSession(), staleness)
	svc.now = func() time.Time { return at }
	return svc
}

func TestServiceReusesSessionBatchUntilStale(t *testing.T) {
	strategy := &countingStrategy{}
	svc := newTestService(strategy, wednesday)
	snap := snapshot.Snapshot{UserID: uuid.New()}

	first := svc.Artifacts(context.Background(), snap)
	second := svc.Artifacts(context.Background(), snap)

	require.Equal(t, len(first.SmartWins), len(second.SmartWins))
	assert.Equal(t, first.SmartWins[0].Title, second.SmartWins[0].Title)
	assert.Equal(t, 1, strategy.calls, "check-existing-before-generate should skip the second call")
}

func TestServiceRegeneratesWhenStale(t *testing.T) {
	strategy := &countingStrategy{}
	svc := newTestService(strategy, wednesday)
	snap := snapshot.Snapshot{UserID: uuid.New()}

	svc.Artifacts(context.Background(), snap)

	svc.now = func() time.Time { return wednesday.Add(8 * 24 * time.Hour) }
	svc.Artifacts(context.Background(), snap)

	assert.Equal(t, 2, strategy.calls)
}

func TestServiceWorksWithoutPersistence(t *testing.T) {
	svc := newTestService(&countingStrategy{}, wednesday)
	snap := snapshot.Snapshot{UserID: uuid.New()}

	art := svc.Artifacts(context.Background(), snap)
	require.NotNil(t, art)
	assert.NotEmpty(t, art.SmartWins)

	// Dismiss and resolve must not panic or error with storage down.
	svc.DismissInsight(snap.UserID, uuid.New())
	svc.ResolveFlag(snap.UserID, uuid.New())
}

type insightStrategy struct {
	insightID uuid.UUID
}

func (s insightStrategy) Name() string { return "insight stub" }
func (s insightStrategy) Generate(_ context.Context, snap snapshot.Snapshot) (*Artifacts, error) {
	return &Artifacts{
		Insights: []models.Insight{{ID: s.insightID, UserID: snap.UserID, Title: "Cut spending"}},
	}, nil
}

func TestHandedOutBatchUnaffectedByLaterDismissal(t *testing.T) {
	insightID := uuid.New()
	svc := newTestService(insightStrategy{insightID: insightID}, wednesday)
	snap := snapshot.Snapshot{UserID: uuid.New()}

	first := svc.Artifacts(context.Background(), snap)
	svc.DismissInsight(snap.UserID, insightID)

	assert.False(t, first.Insights[0].Dismissed, "caller's batch must not change under it")

	second := svc.Artifacts(context.Background(), snap)
	assert.True(t, second.Insights[0].Dismissed, "dismissal must show up on the next fetch")
}

func TestConcurrentReadsAndDismissals(t *testing.T) {
	insightID := uuid.New()
	svc := newTestService(insightStrategy{insightID: insightID}, wednesday)
	snap := snapshot.Snapshot{UserID: uuid.New()}
	svc.Artifacts(context.Background(), snap)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			art := svc.Artifacts(context.Background(), snap)
			_ = art.Insights[0].Dismissed
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			svc.DismissInsight(snap.UserID, insightID)
		}
	}()
	wg.Wait()
}

func TestResolveFlagSurvivesReevaluationWithoutPersistence(t *testing.T) {
	svc := newTestService(&countingStrategy{}, wednesday)
	userID := uuid.New()
	cfg := config.Defaults()
	catalog := rules.DefaultCatalog()
	snap := snapshot.Snapshot{
		UserID: userID,
		Accounts: []models.Account{
			{ID: uuid.New(), Type: "depository", Subtype: "savings", Balance: 500},
		},
		Transactions: []models.Transaction{
			{ID: uuid.New(), Amount: 3000},
			{ID: uuid.New(), Amount: -9000},
		},
	}

	// First request: evaluate, cache, then resolve the raised flag.
	first := rules.Evaluate(snap, catalog, nil, cfg, wednesday, uuid.New)
	first = rules.Active(first)
	require.NotEmpty(t, first)
	svc.Session().PutFlags(userID, first)
	svc.ResolveFlag(userID, first[0].ID)

	// Second request: the cached set keeps IDs stable and the rule
	// stays resolved, so the flag is still hidden.
	cached, ok := svc.Session().Flags(userID)
	require.True(t, ok)
	second := rules.Evaluate(snap, catalog, cached, cfg, wednesday.Add(time.Minute), uuid.New)
	require.NotEmpty(t, second)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, svc.Session().RuleResolved(userID, second[0].RuleID))
}

func TestStoreUnavailableProbe(t *testing.T) {
	store := NewStore(nil)
	assert.False(t, store.Available())

	_, _, err := store.LatestBatch(uuid.New())
	assert.ErrorIs(t, err, ErrPersistenceUnavailable)
	assert.ErrorIs(t, store.SaveBatch(uuid.New(), &Artifacts{}), ErrPersistenceUnavailable)
	assert.ErrorIs(t, store.DismissInsight(uuid.New(), uuid.New()), ErrPersistenceUnavailable)
	assert.ErrorIs(t, store.ResolveFlag(uuid.New(), uuid.New()), ErrPersistenceUnavailable)
}
