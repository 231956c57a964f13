// Package generation produces insight and smart-win batches for a user
// through an ordered strategy chain (remote model first, deterministic
// local algorithms second), gated by a staleness schedule and persisted
// best-effort.
package generation

import (
	"context"
	"log"

	"github.com/google/uuid"

	"finwell-go-be/models"
	"finwell-go-be/snapshot"
)

// IDFunc allocates identifiers for ephemeral records. Injected so tests
// can supply deterministic IDs; production wires uuid.New.
type IDFunc func() uuid.UUID

// Artifacts is one generated batch: the insights and smart wins for a
// single user as of one generation pass.
type Artifacts struct {
	Insights  []models.Insight  `json:"insights"`
	SmartWins []models.SmartWin `json:"smart_wins"`
}

// Strategy is one way of producing an artifact batch from a snapshot.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, snap snapshot.Snapshot) (*Artifacts, error)
}

// Chain tries strategies in order and returns the first success. It
// never returns an error to its caller; the last strategy is expected to
// be the deterministic local one, which cannot fail.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a chain over the given strategies, evaluated in order.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Generate returns the first strategy's successful result. Failures are
// logged and skipped; if every strategy fails the result is an empty
// batch, never an error.
func (c *Chain) Generate(ctx context.Context, snap snapshot.Snapshot) *Artifacts {
	for _, s := range c.strategies {
		art, err := s.Generate(ctx, snap)
		if err != nil {
			log.Printf("generation: %s strategy failed for %s: %v", s.Name(), snap.UserID, err)
			continue
		}
		if art == nil {
			continue
		}
		return art
	}
	return &Artifacts{}
}
