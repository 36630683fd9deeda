// internal/domain/plan/repository.go
package plan

import (
	"context"
	"time"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*SubscriptionPlan, error)
	FindActiveBySalon(ctx context.Context, salonID int64) (*SubscriptionPlan, error)
	List(ctx context.Context, filters *PlanListFilters) ([]SubscriptionPlan, int64, error)

	// PersistPlanChange archives the salon's current plan and inserts the
	// replacement with the given expiry, in one transaction.
	PersistPlanChange(ctx context.Context, salonID int64, newPlan *SubscriptionPlan, newExpiry time.Time) (*SubscriptionPlan, error)
}
