package generation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"finwell-go-be/models"
)

type sessionEntry struct {
	artifacts *Artifacts
	createdAt time.Time
}

// Session is the per-user in-memory state used when persistence is
// unavailable and as a fast path otherwise. Invalidation happens only
// through the staleness schedule, never through UI lifecycle events.
// Artifacts are copied on the way in and out, so callers may read their
// batch while another request mutates session state.
type Session struct {
	mu            sync.RWMutex
	entries       map[uuid.UUID]sessionEntry
	flags         map[uuid.UUID][]models.HealthFlag
	resolvedRules map[uuid.UUID]map[string]bool // userID -> rule IDs resolved this session
}

func NewSession() *Session {
	return &Session{
		entries:       make(map[uuid.UUID]sessionEntry),
		flags:         make(map[uuid.UUID][]models.HealthFlag),
		resolvedRules: make(map[uuid.UUID]map[string]bool),
	}
}

func (s *Session) Get(userID uuid.UUID) (*Artifacts, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	if !ok {
		return nil, time.Time{}, false
	}
	return cloneArtifacts(e.artifacts), e.createdAt, true
}

func (s *Session) Put(userID uuid.UUID, art *Artifacts, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = sessionEntry{artifacts: cloneArtifacts(art), createdAt: createdAt}
}

func (s *Session) Invalidate(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// DismissInsight marks the insight dismissed in the cached batch so the
// state transition holds locally even when persistence is down. Only the
// session's private copy is touched; batches already handed out are not.
func (s *Session) DismissInsight(userID, insightID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		return false
	}
	for i := range e.artifacts.Insights {
		if e.artifacts.Insights[i].ID == insightID {
			e.artifacts.Insights[i].Dismissed = true
			return true
		}
	}
	return false
}

// Flags returns the cached evaluated flag set, keeping flag IDs stable
// across requests while persistence is down.
func (s *Session) Flags(userID uuid.UUID) ([]models.HealthFlag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.flags[userID]
	if !ok {
		return nil, false
	}
	out := make([]models.HealthFlag, len(cached))
	copy(out, cached)
	return out, true
}

// PutFlags caches the latest evaluated flag set for one user.
func (s *Session) PutFlags(userID uuid.UUID, flags []models.HealthFlag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]models.HealthFlag, len(flags))
	copy(stored, flags)
	s.flags[userID] = stored
}

// FlagRule resolves a cached flag ID to its rule ID.
func (s *Session) FlagRule(userID, flagID uuid.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.flags[userID] {
		if f.ID == flagID {
			return f.RuleID, true
		}
	}
	return "", false
}

// MarkRuleResolved remembers a flag resolution for this session. Keyed
// by rule ID, not flag ID: re-evaluation may mint new flag IDs, but the
// (user, rule) pair is what the user actually resolved.
func (s *Session) MarkRuleResolved(userID uuid.UUID, ruleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolvedRules[userID] == nil {
		s.resolvedRules[userID] = make(map[string]bool)
	}
	s.resolvedRules[userID][ruleID] = true
}

// RuleResolved reports whether the user resolved this rule's flag during
// the session.
func (s *Session) RuleResolved(userID uuid.UUID, ruleID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolvedRules[userID][ruleID]
}

func cloneArtifacts(a *Artifacts) *Artifacts {
	if a == nil {
		return nil
	}
	out := &Artifacts{}
	if a.Insights != nil {
		out.Insights = make([]models.Insight, len(a.Insights))
		copy(out.Insights, a.Insights)
	}
	if a.SmartWins != nil {
		out.SmartWins = make([]models.SmartWin, len(a.SmartWins))
		copy(out.SmartWins, a.SmartWins)
	}
	return out
}
