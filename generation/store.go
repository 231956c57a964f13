package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"finwell-go-be/models"
)

// Store persists generated artifacts and the rule catalog. Built over a
// nil db it reports unavailable and every operation returns
// ErrPersistenceUnavailable; callers degrade to the session cache.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Available is the capability probe resolved once at startup.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

// LatestBatch returns the current artifact batch and its creation time,
// or (nil, nil, nil) when the user has none yet.
func (s *Store) LatestBatch(userID uuid.UUID) (*Artifacts, *time.Time, error) {
	if !s.Available() {
		return nil, nil, ErrPersistenceUnavailable
	}

	var art Artifacts
	if err := s.db.Where("user_id = ? AND dismissed = false AND (expires_at IS NULL OR expires_at > ?)", userID, time.Now()).
		Order("created_at DESC").Find(&art.Insights).Error; err != nil {
		return nil, nil, err
	}
	if err := s.db.Where("user_id = ? AND expires_at IS NULL", userID).
		Order("created_at DESC").Find(&art.SmartWins).Error; err != nil {
		return nil, nil, err
	}
	if len(art.Insights) == 0 && len(art.SmartWins) == 0 {
		return nil, nil, nil
	}

	createdAt := time.Time{}
	for _, i := range art.Insights {
		if i.CreatedAt.After(createdAt) {
			createdAt = i.CreatedAt
		}
	}
	for _, w := range art.SmartWins {
		if w.CreatedAt.After(createdAt) {
			createdAt = w.CreatedAt
		}
	}
	return &art, &createdAt, nil
}

// SaveBatch expires the previous win batch and writes the new one.
// Duplicate regeneration overwrites idempotently rather than locking.
func (s *Store) SaveBatch(userID uuid.UUID, art *Artifacts) error {
	if !s.Available() {
		return ErrPersistenceUnavailable
	}

	// Supersede the previous batch by expiry; dismissed stays reserved
	// for explicit user dismissal.
	now := time.Now()
	if err := s.db.Model(&models.SmartWin{}).
		Where("user_id = ? AND expires_at IS NULL", userID).
		Update("expires_at", now).Error; err != nil {
		return err
	}
	if err := s.db.Model(&models.Insight{}).
		Where("user_id = ? AND expires_at IS NULL", userID).
		Update("expires_at", now).Error; err != nil {
		return err
	}

	if len(art.SmartWins) > 0 {
		if err := s.db.Create(&art.SmartWins).Error; err != nil {
			return err
		}
	}
	if len(art.Insights) > 0 {
		if err := s.db.Create(&art.Insights).Error; err != nil {
			return err
		}
	}
	return nil
}

// DismissInsight soft-deletes one insight.
func (s *Store) DismissInsight(userID, insightID uuid.UUID) error {
	if !s.Available() {
		return ErrPersistenceUnavailable
	}
	return s.db.Model(&models.Insight{}).
		Where("id = ? AND user_id = ?", insightID, userID).
		Update("dismissed", true).Error
}

// Flags returns the full flag set for one user.
func (s *Store) Flags(userID uuid.UUID) ([]models.HealthFlag, error) {
	if !s.Available() {
		return nil, ErrPersistenceUnavailable
	}
	var flags []models.HealthFlag
	err := s.db.Where("user_id = ?", userID).Find(&flags).Error
	return flags, err
}

// SaveFlags upserts the evaluated flag set.
func (s *Store) SaveFlags(flags []models.HealthFlag) error {
	if !s.Available() {
		return ErrPersistenceUnavailable
	}
	for _, f := range flags {
		if err := s.db.Save(&f).Error; err != nil {
			return err
		}
	}
	return nil
}

// ResolveFlag transitions one flag to resolved.
func (s *Store) ResolveFlag(userID, flagID uuid.UUID) error {
	if !s.Available() {
		return ErrPersistenceUnavailable
	}
	now := time.Now()
	return s.db.Model(&models.HealthFlag{}).
		Where("id = ? AND user_id = ?", flagID, userID).
		Updates(map[string]interface{}{
			"status":      models.FlagResolved,
			"resolved_at": now,
		}).Error
}

// Rules loads the rule catalog, seeding the defaults on first use so
// flag evaluation has something to chew on.
func (s *Store) Rules(defaults []models.HealthRule) ([]models.HealthRule, error) {
	if !s.Available() {
		return nil, ErrPersistenceUnavailable
	}
	var catalog []models.HealthRule
	if err := s.db.Find(&catalog).Error; err != nil {
		return nil, err
	}
	if len(catalog) == 0 && len(defaults) > 0 {
		if err := s.db.Create(&defaults).Error; err != nil {
			return nil, err
		}
		return defaults, nil
	}
	return catalog, nil
}
