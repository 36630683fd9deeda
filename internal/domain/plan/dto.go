// internal/domain/plan/dto.go
package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangePlanRequest asks for a mid-cycle move to another plan.
type ChangePlanRequest struct {
	NewPlanID     int64  `json:"new_plan_id" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// ChangePlanPreviewResponse is what the dashboard renders before the
// merchant confirms.
type ChangePlanPreviewResponse struct {
	CurrentPlan *SubscriptionPlan `json:"current_plan"`
	NewPlan     *SubscriptionPlan `json:"new_plan"`
	Proration   *ProrationResult  `json:"proration"`
	// ChargeDue is the immediate charge for upgrades, zero for downgrades.
	ChargeDue decimal.Decimal `json:"charge_due"`
	Currency  string          `json:"currency"`
}

// ChangePlanResult reports a committed plan change.
type ChangePlanResult struct {
	OldPlanID     int64           `json:"old_plan_id"`
	NewPlanID     int64           `json:"new_plan_id"`
	IsUpgrade     bool            `json:"is_upgrade"`
	AmountCharged decimal.Decimal `json:"amount_charged"`
	TransactionID string          `json:"transaction_id,omitempty"`
	EffectiveDate time.Time       `json:"effective_date"`
	NewExpiryDate time.Time       `json:"new_expiry_date"`
}

type PlanListFilters struct {
	Status   *PlanStatus `form:"status"`
	IsPublic *bool       `form:"is_public"`
	Page     int         `form:"page"`
	PageSize int         `form:"page_size"`
}
