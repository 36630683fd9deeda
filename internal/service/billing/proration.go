// internal/service/billing/proration.go
package billing

import (
	"time"

	"salora-service/internal/domain/plan"
	xerrors "salora-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// Prorate computes the mid-cycle settlement for moving a salon from its
// current plan to a new one. It is a pure function of its arguments: safe to
// call repeatedly for previews, nothing is persisted here.
//
// An upgrade owes the difference immediately; a downgrade converts the credit
// into whole extra days on the new plan's daily rate. Fractional days of
// credit are discarded by the floor division.
func Prorate(current, next *plan.SubscriptionPlan, now time.Time) (*plan.ProrationResult, error) {
	if current == nil || next == nil {
		return nil, xerrors.ErrInvalidPlan
	}
	if current.BillingPeriodDays <= 0 || next.BillingPeriodDays <= 0 {
		return nil, xerrors.ErrInvalidPlan
	}
	if now.Before(current.StartDate) {
		return nil, xerrors.ErrInvalidPlan
	}

	periodDays := current.BillingPeriodDays
	daysElapsed := int(now.Sub(current.StartDate).Hours() / hoursPerDay)
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	if daysElapsed > periodDays {
		daysElapsed = periodDays
	}
	daysRemaining := periodDays - daysElapsed

	remaining := decimal.NewFromInt(int64(daysRemaining))
	currentValue := current.Price.Mul(remaining).Div(decimal.NewFromInt(int64(periodDays)))
	newCost := next.Price.Mul(remaining).Div(decimal.NewFromInt(int64(next.BillingPeriodDays)))

	isUpgrade := newCost.GreaterThan(currentValue)
	difference := newCost.Sub(currentValue).Abs()

	extendedDays := 0
	if !isUpgrade && difference.IsPositive() {
		dailyRate := next.Price.Div(decimal.NewFromInt(int64(next.BillingPeriodDays)))
		if dailyRate.IsPositive() {
			extendedDays = int(difference.Div(dailyRate).IntPart())
		}
	}

	expiryDays := daysRemaining
	if !isUpgrade {
		expiryDays += extendedDays
	}

	return &plan.ProrationResult{
		DaysElapsed:                   daysElapsed,
		DaysRemaining:                 daysRemaining,
		PeriodDays:                    periodDays,
		CurrentPlanRemainingValue:     currentValue,
		NewPlanCostForRemainingPeriod: newCost,
		Difference:                    difference,
		IsUpgrade:                     isUpgrade,
		ExtendedDays:                  extendedDays,
		EffectiveDate:                 now,
		NewExpiryDate:                 now.AddDate(0, 0, expiryDays),
	}, nil
}
