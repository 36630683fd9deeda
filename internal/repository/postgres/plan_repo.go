// internal/repository/postgres/plan_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salora-service/internal/domain/plan"
	xerrors "salora-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type PlanRepository struct {
	db *DB
}

func NewPlanRepository(db *DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, plan_code, name, price, currency, billing_period_days,
	       start_date, expires_at, status, is_public, created_at, updated_at`

// FindByID retrieves a subscription plan by ID
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*plan.SubscriptionPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscription_plans
		WHERE id = $1
	`, planColumns)

	p, err := scanPlan(r.db.Pool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription plan: %w", err)
	}
	return p, nil
}

// FindActiveBySalon retrieves the salon's current active plan.
func (r *PlanRepository) FindActiveBySalon(ctx context.Context, salonID int64) (*plan.SubscriptionPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscription_plans
		WHERE id = (SELECT plan_id FROM salon_subscriptions WHERE salon_id = $1)
		  AND status = 'active'
	`, planColumns)

	p, err := scanPlan(r.db.Pool().QueryRow(ctx, query, salonID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active plan for salon: %w", err)
	}
	return p, nil
}

// List retrieves plans with optional filters and pagination.
func (r *PlanRepository) List(ctx context.Context, filters *plan.PlanListFilters) ([]plan.SubscriptionPlan, int64, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}
	if filters.IsPublic != nil {
		conditions = append(conditions, fmt.Sprintf("is_public = $%d", argPos))
		args = append(args, *filters.IsPublic)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM subscription_plans %s", whereClause)
	var total int64
	if err := r.db.Pool().QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM subscription_plans
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, planColumns, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []plan.SubscriptionPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read plans: %w", err)
	}

	return plans, total, nil
}

// PersistPlanChange archives the salon's current plan row and points the
// salon at a fresh copy of the new plan with the prorated expiry, in one
// transaction.
func (r *PlanRepository) PersistPlanChange(ctx context.Context, salonID int64, newPlan *plan.SubscriptionPlan, newExpiry time.Time) (*plan.SubscriptionPlan, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE subscription_plans
		SET status = 'archived', updated_at = NOW()
		WHERE id = (SELECT plan_id FROM salon_subscriptions WHERE salon_id = $1)
	`, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to archive current plan: %w", err)
	}

	committed := *newPlan
	committed.StartDate = time.Now()
	committed.ExpiresAt = newExpiry
	committed.Status = plan.PlanStatusActive

	err = tx.QueryRow(ctx, `
		INSERT INTO subscription_plans (
			plan_code, name, price, currency, billing_period_days,
			start_date, expires_at, status, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`,
		committed.PlanCode, committed.Name, committed.Price, committed.Currency, committed.BillingPeriodDays,
		committed.StartDate, committed.ExpiresAt, committed.Status, committed.IsPublic,
	).Scan(&committed.ID, &committed.CreatedAt, &committed.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert replacement plan: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO salon_subscriptions (salon_id, plan_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (salon_id) DO UPDATE SET plan_id = EXCLUDED.plan_id, updated_at = NOW()
	`, salonID, committed.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to switch salon subscription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit plan change: %w", err)
	}

	return &committed, nil
}

func scanPlan(row pgx.Row) (*plan.SubscriptionPlan, error) {
	var p plan.SubscriptionPlan
	err := row.Scan(
		&p.ID, &p.PlanCode, &p.Name, &p.Price, &p.Currency, &p.BillingPeriodDays,
		&p.StartDate, &p.ExpiresAt, &p.Status, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
