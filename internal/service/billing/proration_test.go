package billing

import (
	"testing"
	"time"

	"salora-service/internal/domain/plan"
	xerrors "salora-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearlyPlan(price int64, start time.Time) *plan.SubscriptionPlan {
	return &plan.SubscriptionPlan{
		Price:             decimal.NewFromInt(price),
		BillingPeriodDays: 365,
		StartDate:         start,
		Currency:          "EUR",
	}
}

func TestProrateUpgradeMidCycle(t *testing.T) {
	now := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	start := now.Add(-122 * 24 * time.Hour)

	current := yearlyPlan(3000, start)
	next := yearlyPlan(4200, start)

	res, err := Prorate(current, next, now)
	require.NoError(t, err)

	assert.Equal(t, 122, res.DaysElapsed)
	assert.Equal(t, 243, res.DaysRemaining)
	assert.Equal(t, 365, res.PeriodDays)
	assert.True(t, res.IsUpgrade)
	assert.Equal(t, 0, res.ExtendedDays)

	assert.Equal(t, "1997.26", res.CurrentPlanRemainingValue.Round(2).String())
	assert.Equal(t, "2796.16", res.NewPlanCostForRemainingPeriod.Round(2).String())
	assert.Equal(t, "798.90", res.Difference.Round(2).String())

	assert.Equal(t, now, res.EffectiveDate)
	assert.Equal(t, now.AddDate(0, 0, 243), res.NewExpiryDate)
}

func TestProrateUpgradeDifferenceMatchesValues(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	current := yearlyPlan(1000, now.AddDate(0, 0, -50))
	next := yearlyPlan(2500, now.AddDate(0, 0, -50))

	res, err := Prorate(current, next, now)
	require.NoError(t, err)
	require.True(t, res.IsUpgrade)

	want := res.NewPlanCostForRemainingPeriod.Sub(res.CurrentPlanRemainingValue)
	assert.True(t, res.Difference.Equal(want))
	assert.False(t, res.Difference.IsNegative())
}

func TestProrateDowngradeExtendsExpiry(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	current := &plan.SubscriptionPlan{
		Price:             decimal.NewFromInt(300),
		BillingPeriodDays: 30,
		StartDate:         now.AddDate(0, 0, -10),
	}
	next := &plan.SubscriptionPlan{
		Price:             decimal.NewFromInt(150),
		BillingPeriodDays: 30,
	}

	res, err := Prorate(current, next, now)
	require.NoError(t, err)

	assert.False(t, res.IsUpgrade)
	// credit 100 at a daily rate of 5 buys exactly 20 extra days
	assert.True(t, res.Difference.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 20, res.ExtendedDays)
	assert.Equal(t, now.AddDate(0, 0, 20+20), res.NewExpiryDate)
}

func TestProrateDowngradeFlooredFractionalDay(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	current := &plan.SubscriptionPlan{
		Price:             decimal.NewFromInt(300),
		BillingPeriodDays: 30,
		StartDate:         now.AddDate(0, 0, -10),
	}
	next := &plan.SubscriptionPlan{
		Price:             decimal.NewFromInt(140),
		BillingPeriodDays: 30,
	}

	res, err := Prorate(current, next, now)
	require.NoError(t, err)

	require.False(t, res.IsUpgrade)
	// 106.67 of credit at 4.67/day is 22.85 days; the fraction is dropped
	assert.Equal(t, 22, res.ExtendedDays)
	assert.True(t, res.ExtendedDays >= 0)
}

func TestProrateClampsElapsedToPeriod(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	current := &plan.SubscriptionPlan{
		Price:             decimal.NewFromInt(300),
		BillingPeriodDays: 30,
		StartDate:         now.AddDate(0, 0, -45),
	}
	next := &plan.SubscriptionPlan{
		Price:             decimal.NewFromInt(600),
		BillingPeriodDays: 30,
	}

	res, err := Prorate(current, next, now)
	require.NoError(t, err)

	assert.Equal(t, 30, res.DaysElapsed)
	assert.Equal(t, 0, res.DaysRemaining)
	assert.True(t, res.CurrentPlanRemainingValue.IsZero())
	assert.True(t, res.NewPlanCostForRemainingPeriod.IsZero())
	assert.True(t, res.Difference.IsZero())
	assert.Equal(t, 0, res.ExtendedDays)
	assert.Equal(t, now, res.NewExpiryDate)
}

func TestProrateRejectsInvalidPlans(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := yearlyPlan(3000, now.AddDate(0, 0, -10))

	tests := []struct {
		name    string
		current *plan.SubscriptionPlan
		next    *plan.SubscriptionPlan
		at      time.Time
	}{
		{name: "nil current", current: nil, next: valid, at: now},
		{name: "nil next", current: valid, next: nil, at: now},
		{
			name:    "zero period current",
			current: &plan.SubscriptionPlan{Price: decimal.NewFromInt(10), StartDate: now.AddDate(0, 0, -1)},
			next:    valid,
			at:      now,
		},
		{
			name:    "negative period next",
			current: valid,
			next:    &plan.SubscriptionPlan{Price: decimal.NewFromInt(10), BillingPeriodDays: -5},
			at:      now,
		},
		{name: "now before start", current: yearlyPlan(3000, now.AddDate(0, 0, 1)), next: valid, at: now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Prorate(tt.current, tt.next, tt.at)
			assert.ErrorIs(t, err, xerrors.ErrInvalidPlan)
		})
	}
}

func TestProrateIsIdempotent(t *testing.T) {
	now := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	current := yearlyPlan(3000, now.AddDate(0, 0, -122))
	next := yearlyPlan(4200, now.AddDate(0, 0, -122))

	first, err := Prorate(current, next, now)
	require.NoError(t, err)
	second, err := Prorate(current, next, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
