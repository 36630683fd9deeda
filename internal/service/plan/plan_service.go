// internal/service/plan/plan_service.go
package plan

import (
	"context"
	"fmt"
	"time"

	"salora-service/internal/domain/plan"
	"salora-service/internal/gateway"
	xerrors "salora-service/internal/pkg/errors"
	"salora-service/internal/pkg/reference"
	"salora-service/internal/service/billing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlanService answers plan lookups and runs mid-cycle plan changes. Upgrades
// charge the prorated difference up front; downgrades convert the credit into
// extra days on the new plan and never refund money.
type PlanService struct {
	planRepo plan.Repository
	charger  gateway.Charger
	logger   *zap.Logger
}

func NewPlanService(planRepo plan.Repository, charger gateway.Charger, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		charger:  charger,
		logger:   logger,
	}
}

// GetPlan retrieves one plan by id.
func (s *PlanService) GetPlan(ctx context.Context, id int64) (*plan.SubscriptionPlan, error) {
	p, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlans retrieves plans with filters.
func (s *PlanService) ListPlans(ctx context.Context, filters *plan.PlanListFilters) ([]plan.SubscriptionPlan, int64, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}
	plans, total, err := s.planRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, total, nil
}

// PreviewChange computes the proration for moving the salon's active plan to
// the requested one, without committing anything.
func (s *PlanService) PreviewChange(ctx context.Context, salonID int64, req *plan.ChangePlanRequest) (*plan.ChangePlanPreviewResponse, error) {
	current, next, result, err := s.prorate(ctx, salonID, req.NewPlanID, time.Now())
	if err != nil {
		return nil, err
	}

	chargeDue := decimal.Zero
	if result.IsUpgrade {
		chargeDue = result.Difference
	}

	return &plan.ChangePlanPreviewResponse{
		CurrentPlan: current,
		NewPlan:     next,
		Proration:   result,
		ChargeDue:   chargeDue,
		Currency:    next.Currency,
	}, nil
}

// CommitChange executes the plan change. For an upgrade the prorated
// difference is charged first; the switch is persisted only after the charge
// succeeds. A downgrade persists immediately with the extended expiry.
func (s *PlanService) CommitChange(ctx context.Context, salonID int64, req *plan.ChangePlanRequest) (*plan.ChangePlanResult, error) {
	now := time.Now()
	current, next, result, err := s.prorate(ctx, salonID, req.NewPlanID, now)
	if err != nil {
		return nil, err
	}

	amountCharged := decimal.Zero
	var transactionID string

	if result.IsUpgrade && result.Difference.IsPositive() {
		charge, err := s.charger.Charge(ctx, &gateway.ChargeRequest{
			Amount:    result.Difference,
			Currency:  next.Currency,
			Method:    req.PaymentMethod,
			Reference: reference.PaymentReference(),
		})
		if err != nil {
			return nil, fmt.Errorf("gateway charge failed: %w", err)
		}
		amountCharged = result.Difference
		transactionID = charge.TransactionID
	}

	committed, err := s.planRepo.PersistPlanChange(ctx, salonID, next, result.NewExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("failed to persist plan change: %w", err)
	}

	s.logger.Info("plan changed",
		zap.Int64("salon_id", salonID),
		zap.Int64("old_plan_id", current.ID),
		zap.Int64("new_plan_id", committed.ID),
		zap.Bool("is_upgrade", result.IsUpgrade),
		zap.String("amount_charged", amountCharged.String()),
	)

	return &plan.ChangePlanResult{
		OldPlanID:     current.ID,
		NewPlanID:     committed.ID,
		IsUpgrade:     result.IsUpgrade,
		AmountCharged: amountCharged,
		TransactionID: transactionID,
		EffectiveDate: result.EffectiveDate,
		NewExpiryDate: result.NewExpiryDate,
	}, nil
}

func (s *PlanService) prorate(ctx context.Context, salonID, newPlanID int64, now time.Time) (*plan.SubscriptionPlan, *plan.SubscriptionPlan, *plan.ProrationResult, error) {
	current, err := s.planRepo.FindActiveBySalon(ctx, salonID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("no active plan for salon: %w", err)
	}
	next, err := s.planRepo.FindByID(ctx, newPlanID)
	if err != nil {
		return nil, nil, nil, err
	}
	if next.ID == current.ID {
		return nil, nil, nil, fmt.Errorf("already subscribed to plan %d: %w", next.ID, xerrors.ErrInvalidInput)
	}
	if next.Status != plan.PlanStatusActive {
		return nil, nil, nil, fmt.Errorf("plan %d is not open for subscription: %w", next.ID, xerrors.ErrInvalidPlan)
	}

	result, err := billing.Prorate(current, next, now)
	if err != nil {
		return nil, nil, nil, err
	}
	return current, next, result, nil
}
