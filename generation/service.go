package generation

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"finwell-go-be/snapshot"
)

// Service is the async face of the engine: it gates generation on the
// staleness schedule, runs the fallback chain and persists best-effort.
// Concurrent duplicate generation for one user is tolerated (idempotent
// overwrite); the check-existing-before-generate pass just keeps remote
// calls rare.
type Service struct {
	chain     *Chain
	store     *Store
	session   *Session
	staleness *Staleness
	now       func() time.Time
}

func NewService(chain *Chain, store *Store, session *Session, staleness *Staleness) *Service {
	return &Service{
		chain:     chain,
		store:     store,
		session:   session,
		staleness: staleness,
		now:       time.Now,
	}
}

// Artifacts returns the current batch for the snapshot's user,
// regenerating only when the staleness schedule says it is due. Always
// returns a batch; on total failure it is empty, never nil.
func (s *Service) Artifacts(ctx context.Context, snap snapshot.Snapshot) *Artifacts {
	now := s.now()

	if s.store.Available() {
		art, createdAt, err := s.store.LatestBatch(snap.UserID)
		if err != nil {
			log.Printf("generation: reading persisted batch for %s: %v", snap.UserID, err)
		} else if art != nil && !s.staleness.Due(createdAt, now) {
			return art
		}
	} else if art, createdAt, ok := s.session.Get(snap.UserID); ok && !s.staleness.Due(&createdAt, now) {
		return art
	}

	art := s.chain.Generate(ctx, snap)

	if err := s.store.SaveBatch(snap.UserID, art); err != nil {
		// Computed result still stands; it just stays session-local.
		log.Printf("generation: persisting batch for %s: %v", snap.UserID, err)
	}
	s.session.Put(snap.UserID, art, now)

	return art
}

// DismissInsight applies the transition locally first, then best-effort
// in storage. The local update is guaranteed even when persistence fails.
func (s *Service) DismissInsight(userID, insightID uuid.UUID) {
	s.session.DismissInsight(userID, insightID)
	if err := s.store.DismissInsight(userID, insightID); err != nil {
		log.Printf("generation: dismissing insight %s: %v", insightID, err)
	}
}

// ResolveFlag records the resolution locally and best-effort in storage.
// The session keys resolutions by rule so they survive re-evaluation,
// which mints fresh flag IDs while persistence is down.
func (s *Service) ResolveFlag(userID, flagID uuid.UUID) {
	if ruleID, ok := s.session.FlagRule(userID, flagID); ok {
		s.session.MarkRuleResolved(userID, ruleID)
	}
	if err := s.store.ResolveFlag(userID, flagID); err != nil {
		log.Printf("generation: resolving flag %s: %v", flagID, err)
	}
}

// Session exposes the cache for handlers that filter by session state.
func (s *Service) Session() *Session { return s.session }
