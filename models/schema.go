package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User represents a user in the system.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is a point-in-time balance snapshot of one linked account,
// refreshed by the external aggregation service.
type Account struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ExternalID      string    `gorm:"uniqueIndex;not null" json:"external_id"` // ID from the aggregation provider
	Type            string    `gorm:"not null" json:"type"`                    // depository | investment | credit | loan
	Subtype         string    `json:"subtype"`                                 // checking | savings | ...
	Balance         float64   `json:"balance"`
	InstitutionName string    `json:"institution_name"`
	LastUpdated     time.Time `json:"last_updated"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Goal is a savings goal. SavedAmount may exceed TargetAmount in storage;
// progress is clamped at computation time, not here.
type Goal struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string     `gorm:"not null" json:"name"`
	TargetAmount float64    `json:"target_amount"`
	SavedAmount  float64    `json:"saved_amount"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Category     string     `json:"category"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Transaction represents a financial transaction.
// Sign convention: positive amount = outflow/expense, negative = inflow/income.
type Transaction struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID  uuid.UUID      `gorm:"type:uuid;index" json:"account_id"`
	ExternalID string         `gorm:"uniqueIndex;not null" json:"external_id"`
	Amount     float64        `json:"amount"`
	Merchant   string         `json:"merchant"`
	Categories datatypes.JSON `json:"categories"` // JSON array of category strings
	Date       time.Time      `json:"date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CategoryList decodes the Categories column. A missing or broken column
// is just an empty list.
func (t Transaction) CategoryList() []string {
	var cats []string
	if len(t.Categories) == 0 {
		return cats
	}
	if err := json.Unmarshal(t.Categories, &cats); err != nil {
		return nil
	}
	return cats
}

// HealthRule is a declarative threshold rule from the rule catalog.
// ConditionLogic names a registered condition; Thresholds parameterizes it.
type HealthRule struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RuleID             string            `gorm:"uniqueIndex;not null" json:"rule_id"`
	Category           string            `json:"category"`
	ConditionLogic     string            `gorm:"not null" json:"condition_logic"`
	Thresholds         datatypes.JSONMap `json:"thresholds"`
	Severity           string            `json:"severity"` // low | medium | high
	RecommendedActions datatypes.JSON    `json:"recommended_actions"`
	AutoResolve        bool              `gorm:"default:false" json:"auto_resolve"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Flag lifecycle states.
const (
	FlagActive   = "active"
	FlagResolved = "resolved"
)

// HealthFlag marks that a rule's condition currently holds for a user.
// One active flag per (user, rule).
type HealthFlag struct {
	ID               uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"flag_id"`
	UserID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	RuleID           string            `gorm:"not null;index" json:"rule_id"`
	Status           string            `gorm:"not null;default:active" json:"status"`
	TriggerData      datatypes.JSONMap `json:"trigger_data"`
	FirstTriggeredAt time.Time         `json:"first_triggered_at"`
	LastEvaluatedAt  time.Time         `json:"last_evaluated_at"`
	ResolvedAt       *time.Time        `json:"resolved_at,omitempty"`
}

// Insight is a human-readable explanation derived from flags and metrics.
// Soft-deleted via Dismissed, optionally time-boxed via ExpiresAt.
type Insight struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"insight_id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type            string         `json:"type"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `json:"description"`
	ConfidenceScore float64        `json:"confidence_score"` // 0-1
	PriorityLevel   string         `json:"priority_level"`   // low | medium | high
	ActionItems     datatypes.JSON `json:"action_items"`
	Dismissed       bool           `gorm:"default:false" json:"dismissed"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Smart-win types.
const (
	WinSavings     = "savings"
	WinSpending    = "spending"
	WinInvestment  = "investment"
	WinGoal        = "goal"
	WinOpportunity = "opportunity"
)

// SmartWin is one short, ranked recommendation with an optional
// annualized dollar impact estimate.
type SmartWin struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Impact      *float64   `json:"impact,omitempty"` // estimated annual dollars
	Actionable  bool       `gorm:"default:true" json:"actionable"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
