// Package snapshot shapes a user's current accounts, goals and
// transactions into one read-only value for the insight engine.
package snapshot

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"finwell-go-be/models"
)

// Snapshot is everything the engine knows about one user as of call time.
// Any collection may be empty; that is valid input everywhere downstream.
type Snapshot struct {
	UserID       uuid.UUID            `json:"user_id"`
	Accounts     []models.Account     `json:"accounts"`
	Goals        []models.Goal        `json:"goals"`
	Transactions []models.Transaction `json:"transactions"`
	At           time.Time            `json:"at"`
}

// Aggregator loads snapshots from storage.
type Aggregator struct {
	db       *gorm.DB
	lookback time.Duration
}

// NewAggregator builds an aggregator over the given database. Transactions
// are limited to the trailing lookback window so monthly figures divide
// cleanly. A nil db yields empty snapshots.
func NewAggregator(db *gorm.DB, lookback time.Duration) *Aggregator {
	return &Aggregator{db: db, lookback: lookback}
}

// Load reads the three collections for one user. A failure in any one
// source degrades that collection to empty rather than failing the load.
func (a *Aggregator) Load(userID uuid.UUID) Snapshot {
	now := time.Now()
	snap := Snapshot{UserID: userID, At: now}
	if a.db == nil {
		return snap
	}

	if err := a.db.Where("user_id = ?", userID).Find(&snap.Accounts).Error; err != nil {
		log.Printf("snapshot: accounts unavailable for %s: %v", userID, err)
		snap.Accounts = nil
	}
	if err := a.db.Where("user_id = ?", userID).Find(&snap.Goals).Error; err != nil {
		log.Printf("snapshot: goals unavailable for %s: %v", userID, err)
		snap.Goals = nil
	}
	since := now.Add(-a.lookback)
	if err := a.db.Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC").Find(&snap.Transactions).Error; err != nil {
		log.Printf("snapshot: transactions unavailable for %s: %v", userID, err)
		snap.Transactions = nil
	}

	return snap
}

// TotalExpenses sums outflows (positive amounts) over the window.
func (s Snapshot) TotalExpenses() float64 {
	var total float64
	for _, t := range s.Transactions {
		if t.Amount > 0 {
			total += t.Amount
		}
	}
	return total
}

// TotalIncome sums inflows (negative amounts, returned positive).
func (s Snapshot) TotalIncome() float64 {
	var total float64
	for _, t := range s.Transactions {
		if t.Amount < 0 {
			total += -t.Amount
		}
	}
	return total
}

// AccountsOf filters accounts by type, and by subtype when non-empty.
func (s Snapshot) AccountsOf(accountType, subtype string) []models.Account {
	var out []models.Account
	for _, a := range s.Accounts {
		if a.Type != accountType {
			continue
		}
		if subtype != "" && a.Subtype != subtype {
			continue
		}
		out = append(out, a)
	}
	return out
}
