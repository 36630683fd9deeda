// internal/domain/order/dto.go
package order

import (
	"github.com/shopspring/decimal"
)

// CreateOrderRequest opens a draft order with its initial line items.
type CreateOrderRequest struct {
	CustomerID int64           `json:"customer_id"`
	Currency   string          `json:"currency"`
	Items      []OrderLineItem `json:"items" binding:"required"`
	Discount   *Discount       `json:"discount,omitempty"`
}

// AddItemRequest appends one line item to a draft order.
type AddItemRequest struct {
	Item OrderLineItem `json:"item" binding:"required"`
}

// SetQuantityRequest changes a line item's quantity; zero or below removes it.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest settles whatever remains due on the order.
type CheckoutRequest struct {
	CertificateCode string        `json:"certificate_code,omitempty"`
	Method          PaymentMethod `json:"method" binding:"required"`
	Kind            PaymentKind   `json:"kind"`
}

type CheckoutResponse struct {
	Order  *Order      `json:"order"`
	Totals OrderTotals `json:"totals"`
	// AmountCharged is what the gateway actually captured this round.
	AmountCharged      decimal.Decimal `json:"amount_charged"`
	CertificateApplied decimal.Decimal `json:"certificate_applied"`
	TransactionID      string          `json:"transaction_id,omitempty"`
}

// RecordPaymentRequest commits an externally confirmed payment, e.g. cash
// taken at the desk or a gateway callback replay.
type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Method        PaymentMethod   `json:"method" binding:"required"`
	Kind          PaymentKind     `json:"kind"`
	TransactionID string          `json:"transaction_id" binding:"required"`
}

type OrderListFilters struct {
	Status   *OrderStatus `form:"status"`
	Page     int          `form:"page"`
	PageSize int          `form:"page_size"`
}

type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
