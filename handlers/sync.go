package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"finwell-go-be/models"
)

// AccountSync is one account snapshot from the aggregation provider.
type AccountSync struct {
	ExternalID      string    `json:"external_id"`
	Type            string    `json:"type"`
	Subtype         string    `json:"subtype"`
	Balance         float64   `json:"balance"`
	InstitutionName string    `json:"institution_name"`
	LastUpdated     time.Time `json:"last_updated"`
}

// GoalSync is a goal create/update from the client.
type GoalSync struct {
	ID           *uuid.UUID `json:"id,omitempty"`
	Name         string     `json:"name"`
	TargetAmount float64    `json:"target_amount"`
	SavedAmount  float64    `json:"saved_amount"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Category     string     `json:"category"`
}

// TransactionSync is one transaction from the aggregation provider.
// Positive amount = expense, negative = income.
type TransactionSync struct {
	ExternalID string    `json:"external_id"`
	AccountID  uuid.UUID `json:"account_id"`
	Amount     float64   `json:"amount"`
	Merchant   string    `json:"merchant"`
	Categories []string  `json:"categories"`
	Date       time.Time `json:"date"`
}

// SyncPayload is the batch body for /sync.
type SyncPayload struct {
	Accounts     []AccountSync     `json:"accounts"`
	Goals        []GoalSync        `json:"goals"`
	Transactions []TransactionSync `json:"transactions"`
}

// SyncResponse reports what the batch actually changed.
type SyncResponse struct {
	AccountsUpserted int `json:"accounts_upserted"`
	GoalsUpserted    int `json:"goals_upserted"`
	Synced           int `json:"synced"`
	Duplicates       int `json:"duplicates"`
}

// BatchSync ingests account/goal/transaction snapshots from the
// aggregation collaborator. Transactions deduplicate on external ID;
// accounts and goals upsert in place.
func BatchSync(c *fiber.Ctx) error {
	userID, ok := userFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if db == nil {
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"error": "Persistence unavailable, sync disabled"})
	}

	var payload SyncPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	resp := SyncResponse{}
	resp.AccountsUpserted = upsertAccounts(userID, payload.Accounts)
	resp.GoalsUpserted = upsertGoals(userID, payload.Goals)
	resp.Synced, resp.Duplicates = insertTransactions(userID, payload.Transactions)

	return c.JSON(resp)
}

func upsertAccounts(userID uuid.UUID, accounts []AccountSync) int {
	count := 0
	for _, in := range accounts {
		var acct models.Account
		err := db.Where("user_id = ? AND external_id = ?", userID, in.ExternalID).First(&acct).Error
		if err != nil {
			acct = models.Account{ID: newID(), UserID: userID, ExternalID: in.ExternalID}
		}
		acct.Type = in.Type
		acct.Subtype = in.Subtype
		acct.Balance = in.Balance
		acct.InstitutionName = in.InstitutionName
		acct.LastUpdated = in.LastUpdated
		if db.Save(&acct).Error == nil {
			count++
		}
	}
	return count
}

func upsertGoals(userID uuid.UUID, goals []GoalSync) int {
	count := 0
	for _, in := range goals {
		var goal models.Goal
		if in.ID != nil {
			if err := db.Where("id = ? AND user_id = ?", *in.ID, userID).First(&goal).Error; err != nil {
				continue
			}
		} else {
			goal = models.Goal{ID: newID(), UserID: userID}
		}
		goal.Name = in.Name
		goal.TargetAmount = in.TargetAmount
		goal.SavedAmount = in.SavedAmount
		goal.Deadline = in.Deadline
		goal.Category = in.Category
		if db.Save(&goal).Error == nil {
			count++
		}
	}
	return count
}

func insertTransactions(userID uuid.UUID, txns []TransactionSync) (synced, duplicates int) {
	if len(txns) == 0 {
		return 0, 0
	}

	payloadIDs := make([]string, len(txns))
	for i, t := range txns {
		payloadIDs[i] = t.ExternalID
	}
	var existingIDs []string
	db.Model(&models.Transaction{}).
		Where("user_id = ? AND external_id IN ?", userID, payloadIDs).
		Pluck("external_id", &existingIDs)
	existing := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	var rows []models.Transaction
	for _, in := range txns {
		if existing[in.ExternalID] {
			duplicates++
			continue
		}
		cats, _ := json.Marshal(in.Categories)
		rows = append(rows, models.Transaction{
			ID:         newID(),
			UserID:     userID,
			AccountID:  in.AccountID,
			ExternalID: in.ExternalID,
			Amount:     in.Amount,
			Merchant:   in.Merchant,
			Categories: datatypes.JSON(cats),
			Date:       in.Date,
		})
	}

	if len(rows) > 0 {
		// CreateInBatches is efficient for large datasets
		if err := db.CreateInBatches(rows, 100).Error; err != nil {
			return 0, duplicates
		}
	}
	return len(rows), duplicates
}
