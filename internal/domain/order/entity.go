// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "draft"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPartiallyPaid   OrderStatus = "partially_paid"
	OrderStatusFullyPaid       OrderStatus = "fully_paid"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFullyPaid || s == OrderStatusCancelled
}

type ItemKind string

const (
	ItemKindService ItemKind = "service"
	ItemKindProduct ItemKind = "product"
)

type DiscountKind string

const (
	DiscountKindPercent DiscountKind = "percent"
	DiscountKindAmount  DiscountKind = "amount"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodLink PaymentMethod = "link"
)

type PaymentKind string

const (
	PaymentKindDeposit PaymentKind = "deposit"
	PaymentKindFull    PaymentKind = "full_payment"
	PaymentKindPartial PaymentKind = "partial_payment"
)

// OrderLineItem is one billable unit on an order. StockCeiling applies to
// products only; zero means untracked.
type OrderLineItem struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Kind         ItemKind        `json:"kind" db:"kind"`
	StockCeiling int             `json:"stock_ceiling,omitempty" db:"stock_ceiling"`
}

// Discount reduces the subtotal. Percent value is in [0,100]; amount value
// is capped by the subtotal at computation time.
type Discount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// PaymentRecord is an externally confirmed payment. TransactionID is the
// dedup key per order.
type PaymentRecord struct {
	ID            int64           `json:"id" db:"id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Method        PaymentMethod   `json:"method" db:"method"`
	Kind          PaymentKind     `json:"kind" db:"kind"`
	PaidAt        time.Time       `json:"paid_at" db:"paid_at"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
}

// OrderTotals is the settlement snapshot:
// totalToPay = max(0, subtotal - discount - certificate - alreadyPaid).
type OrderTotals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	CertificateApplied decimal.Decimal `json:"certificate_applied"`
	AlreadyPaid        decimal.Decimal `json:"already_paid"`
	TotalToPay         decimal.Decimal `json:"total_to_pay"`
}

type Order struct {
	ID          int64  `json:"id" db:"id"`
	OrderNumber string `json:"order_number" db:"order_number"`
	SalonID     int64  `json:"salon_id" db:"salon_id"`
	CustomerID  int64  `json:"customer_id,omitempty" db:"customer_id"`

	Items    []OrderLineItem `json:"items"`
	Discount *Discount       `json:"discount,omitempty"`

	// CertificateCode and CertificateApplied are set together when a
	// redemption commits. The applied amount is frozen here: the stored
	// balance has already moved, so totals must never re-preview the code.
	CertificateCode    string          `json:"certificate_code,omitempty" db:"certificate_code"`
	CertificateApplied decimal.Decimal `json:"certificate_applied" db:"certificate_applied"`

	Currency       string          `json:"currency" db:"currency"`
	AlreadyPaid    decimal.Decimal `json:"already_paid" db:"already_paid"`
	PaymentHistory []PaymentRecord `json:"payment_history"`
	Status         OrderStatus     `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasPayment reports whether a transaction ID is already in the history.
func (o *Order) HasPayment(transactionID string) bool {
	for _, p := range o.PaymentHistory {
		if p.TransactionID == transactionID {
			return true
		}
	}
	return false
}
