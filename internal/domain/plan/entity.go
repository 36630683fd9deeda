// internal/domain/plan/entity.go
package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
	PlanStatusArchived PlanStatus = "archived"
)

// SubscriptionPlan is a billing plan a salon subscribes to. A plan change
// never mutates an existing record; it inserts a new one and archives the old.
type SubscriptionPlan struct {
	ID                int64           `json:"id" db:"id"`
	PlanCode          string          `json:"plan_code" db:"plan_code"`
	Name              string          `json:"name" db:"name"`
	Price             decimal.Decimal `json:"price" db:"price"`
	Currency          string          `json:"currency" db:"currency"`
	BillingPeriodDays int             `json:"billing_period_days" db:"billing_period_days"`
	StartDate         time.Time       `json:"start_date" db:"start_date"`
	ExpiresAt         time.Time       `json:"expires_at" db:"expires_at"`
	Status            PlanStatus      `json:"status" db:"status"`
	IsPublic          bool            `json:"is_public" db:"is_public"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProrationResult is the transient outcome of a mid-cycle plan change
// preview. It is recomputed on demand and never persisted.
type ProrationResult struct {
	DaysElapsed   int `json:"days_elapsed"`
	DaysRemaining int `json:"days_remaining"`
	PeriodDays    int `json:"period_days"`

	CurrentPlanRemainingValue     decimal.Decimal `json:"current_plan_remaining_value"`
	NewPlanCostForRemainingPeriod decimal.Decimal `json:"new_plan_cost_for_remaining_period"`
	Difference                    decimal.Decimal `json:"difference"`

	IsUpgrade    bool `json:"is_upgrade"`
	ExtendedDays int  `json:"extended_days"`

	EffectiveDate time.Time `json:"effective_date"`
	NewExpiryDate time.Time `json:"new_expiry_date"`
}
