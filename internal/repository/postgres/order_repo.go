// internal/repository/postgres/order_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"salora-service/internal/domain/order"
	xerrors "salora-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var discountJSON []byte
	if o.Discount != nil {
		discountJSON, err = json.Marshal(o.Discount)
		if err != nil {
			return fmt.Errorf("failed to marshal discount: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, salon_id, customer_id, discount,
			currency, already_paid, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		o.OrderNumber, o.SalonID, o.CustomerID, discountJSON,
		o.Currency, o.AlreadyPaid, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, name, unit_price, quantity, kind, stock_ceiling)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, o.ID, it.Name, it.UnitPrice, it.Quantity, it.Kind, it.StockCeiling).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order create: %w", err)
	}

	return nil
}

// FindByID retrieves an order with its line items and payment history.
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	var discountJSON []byte

	err := r.db.Pool().QueryRow(ctx, `
		SELECT id, order_number, salon_id, customer_id, discount,
		       certificate_code, certificate_applied,
		       currency, already_paid, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&o.ID, &o.OrderNumber, &o.SalonID, &o.CustomerID, &discountJSON,
		&o.CertificateCode, &o.CertificateApplied,
		&o.Currency, &o.AlreadyPaid, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if len(discountJSON) > 0 {
		if err := json.Unmarshal(discountJSON, &o.Discount); err != nil {
			return nil, fmt.Errorf("failed to unmarshal discount: %w", err)
		}
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, &o); err != nil {
		return nil, err
	}

	return &o, nil
}

// List retrieves a salon's orders, newest first. Items and payments are not
// hydrated here; the list view only needs the header row.
func (r *OrderRepository) List(ctx context.Context, salonID int64, filters *order.OrderListFilters) ([]order.Order, int64, error) {
	conditions := []string{"salon_id = $1"}
	args := []interface{}{salonID}
	argPos := 2

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	var total int64
	if err := r.db.Pool().QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT id, order_number, salon_id, customer_id, discount,
		       certificate_code, certificate_applied,
		       currency, already_paid, status, created_at, updated_at
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []order.Order{}
	for rows.Next() {
		var o order.Order
		var discountJSON []byte
		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.SalonID, &o.CustomerID, &discountJSON,
			&o.CertificateCode, &o.CertificateApplied,
			&o.Currency, &o.AlreadyPaid, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		if len(discountJSON) > 0 {
			if err := json.Unmarshal(discountJSON, &o.Discount); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal discount: %w", err)
			}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read orders: %w", err)
	}

	return orders, total, nil
}

// ReplaceItems swaps the full line-item list of a draft order.
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID int64, items []order.OrderLineItem) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to clear line items: %w", err)
	}

	for i := range items {
		it := &items[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, name, unit_price, quantity, kind, stock_ceiling)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, orderID, it.Name, it.UnitPrice, it.Quantity, it.Kind, it.StockCeiling).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET updated_at = NOW() WHERE id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to touch order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit item replace: %w", err)
	}

	return nil
}

// SetCertificateRedemption records a committed redemption on the order.
func (r *OrderRepository) SetCertificateRedemption(ctx context.Context, orderID int64, code string, applied decimal.Decimal) error {
	tag, err := r.db.Pool().Exec(ctx, `
		UPDATE orders
		SET certificate_code = $2, certificate_applied = $3, updated_at = NOW()
		WHERE id = $1
	`, orderID, code, applied)
	if err != nil {
		return fmt.Errorf("failed to record certificate redemption: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// AppendPayment inserts the payment record and rolls already_paid and status
// forward in one transaction. The unique index on (order_id, transaction_id)
// backs the duplicate guard even across concurrent writers.
func (r *OrderRepository) AppendPayment(ctx context.Context, orderID int64, record *order.PaymentRecord, newStatus order.OrderStatus) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO order_payments (order_id, amount, method, kind, paid_at, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, orderID, record.Amount, record.Method, record.Kind, record.PaidAt, record.TransactionID).Scan(&record.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return xerrors.ErrDuplicatePayment
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET already_paid = already_paid + $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`, orderID, record.Amount, newStatus)
	if err != nil {
		return fmt.Errorf("failed to update order balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}

	return nil
}

// UpdateStatus moves the order to the given status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.OrderStatus) error {
	tag, err := r.db.Pool().Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, o *order.Order) error {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, name, unit_price, quantity, kind, stock_ceiling
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	o.Items = []order.OrderLineItem{}
	for rows.Next() {
		var it order.OrderLineItem
		if err := rows.Scan(&it.ID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Kind, &it.StockCeiling); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *OrderRepository) loadPayments(ctx context.Context, o *order.Order) error {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, amount, method, kind, paid_at, transaction_id
		FROM order_payments
		WHERE order_id = $1
		ORDER BY paid_at, id
	`, o.ID)
	if err != nil {
		return fmt.Errorf("failed to load payment history: %w", err)
	}
	defer rows.Close()

	o.PaymentHistory = []order.PaymentRecord{}
	for rows.Next() {
		var p order.PaymentRecord
		if err := rows.Scan(&p.ID, &p.Amount, &p.Method, &p.Kind, &p.PaidAt, &p.TransactionID); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		o.PaymentHistory = append(o.PaymentHistory, p)
	}
	return rows.Err()
}
