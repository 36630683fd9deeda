// internal/domain/order/repository.go
package order

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, salonID int64, filters *OrderListFilters) ([]Order, int64, error)

	// ReplaceItems swaps the full line-item list of a draft order.
	ReplaceItems(ctx context.Context, orderID int64, items []OrderLineItem) error

	// SetCertificateRedemption records a committed redemption on the order:
	// the code and the exact amount the settlement consumed.
	SetCertificateRedemption(ctx context.Context, orderID int64, code string, applied decimal.Decimal) error

	// AppendPayment inserts the record and updates already_paid and status in
	// one transaction. Surfaces xerrors.ErrDuplicatePayment on a replayed
	// transaction ID.
	AppendPayment(ctx context.Context, orderID int64, record *PaymentRecord, newStatus OrderStatus) error
	UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) error
}
