// internal/service/order/order_service.go
package order

import (
	"context"
	"fmt"
	"time"

	"salora-service/internal/domain/certificate"
	"salora-service/internal/domain/order"
	"salora-service/internal/gateway"
	"salora-service/internal/notify"
	xerrors "salora-service/internal/pkg/errors"
	"salora-service/internal/pkg/reference"
	"salora-service/internal/service/billing"
	certsvc "salora-service/internal/service/certificate"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultCurrency = "EUR"

// OrderService owns the order lifecycle: draft mutation, totals, checkout and
// payment recording. All money math is delegated to the pure billing package;
// this service sequences the collaborators around it. The settlement ordering
// is fixed: gateway charge, then certificate redemption commit, then payment
// record append. A failed charge never touches a certificate balance.
type OrderService struct {
	orderRepo order.Repository
	ledger    *certsvc.LedgerService
	charger   gateway.Charger
	notifier  notify.Publisher
	logger    *zap.Logger
}

func NewOrderService(
	orderRepo order.Repository,
	ledger *certsvc.LedgerService,
	charger gateway.Charger,
	notifier notify.Publisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		ledger:    ledger,
		charger:   charger,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateOrder opens a draft order with its initial line items.
func (s *OrderService) CreateOrder(ctx context.Context, salonID int64, req *order.CreateOrderRequest) (*order.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order needs at least one line item: %w", xerrors.ErrInvalidInput)
	}
	for _, it := range req.Items {
		if it.Quantity < 1 || it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("line item %q has invalid price or quantity: %w", it.Name, xerrors.ErrInvalidInput)
		}
	}

	// Reject a broken discount at creation time rather than at first totals read.
	if _, err := billing.DiscountAmount(billing.Subtotal(req.Items), req.Discount); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	o := &order.Order{
		OrderNumber: reference.OrderNumber(),
		SalonID:     salonID,
		CustomerID:  req.CustomerID,
		Items:       req.Items,
		Discount:    req.Discount,
		Currency:    currency,
		AlreadyPaid: decimal.Zero,
		Status:      order.OrderStatusDraft,
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Int64("salon_id", salonID),
		zap.Int("items", len(o.Items)),
	)

	return o, nil
}

// GetOrder retrieves an order, enforcing salon ownership.
func (s *OrderService) GetOrder(ctx context.Context, salonID, orderID int64) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SalonID != salonID {
		return nil, xerrors.ErrUnauthorized
	}
	return o, nil
}

// ListOrders retrieves a salon's orders with filters.
func (s *OrderService) ListOrders(ctx context.Context, salonID int64, filters *order.OrderListFilters) (*order.OrderListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	orders, total, err := s.orderRepo.List(ctx, salonID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &order.OrderListResponse{
		Orders:     orders,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// AddItem appends a line item to a draft order.
func (s *OrderService) AddItem(ctx context.Context, salonID, orderID int64, item order.OrderLineItem) (*order.Order, error) {
	o, err := s.mutableOrder(ctx, salonID, orderID)
	if err != nil {
		return nil, err
	}
	if item.Quantity < 1 || item.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("line item %q has invalid price or quantity: %w", item.Name, xerrors.ErrInvalidInput)
	}

	items := billing.AddItem(o.Items, item)
	if err := s.orderRepo.ReplaceItems(ctx, orderID, items); err != nil {
		return nil, fmt.Errorf("failed to add line item: %w", err)
	}
	o.Items = items
	return o, nil
}

// RemoveItem drops a line item from a draft order.
func (s *OrderService) RemoveItem(ctx context.Context, salonID, orderID, itemID int64) (*order.Order, error) {
	o, err := s.mutableOrder(ctx, salonID, orderID)
	if err != nil {
		return nil, err
	}

	items := billing.RemoveItem(o.Items, itemID)
	if err := s.orderRepo.ReplaceItems(ctx, orderID, items); err != nil {
		return nil, fmt.Errorf("failed to remove line item: %w", err)
	}
	o.Items = items
	return o, nil
}

// SetItemQuantity changes a line item's quantity; zero or below removes it.
// Product stock ceilings are enforced and leave the order untouched on failure.
func (s *OrderService) SetItemQuantity(ctx context.Context, salonID, orderID, itemID int64, quantity int) (*order.Order, error) {
	o, err := s.mutableOrder(ctx, salonID, orderID)
	if err != nil {
		return nil, err
	}

	items, err := billing.SetQuantity(o.Items, itemID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.ReplaceItems(ctx, orderID, items); err != nil {
		return nil, fmt.Errorf("failed to update quantity: %w", err)
	}
	o.Items = items
	return o, nil
}

// GetTotals recomputes the settlement snapshot from the stored order state.
// Safe to call on every UI refresh; nothing is written.
func (s *OrderService) GetTotals(ctx context.Context, salonID, orderID int64) (order.OrderTotals, error) {
	o, err := s.GetOrder(ctx, salonID, orderID)
	if err != nil {
		return order.OrderTotals{}, err
	}
	return s.computeTotals(ctx, o)
}

// Checkout settles whatever remains due on the order: validate the
// certificate, compute totals, charge the gateway, commit the redemption, and
// append the payment record, in that order.
func (s *OrderService) Checkout(ctx context.Context, salonID, orderID int64, req *order.CheckoutRequest) (*order.CheckoutResponse, error) {
	o, err := s.GetOrder(ctx, salonID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, xerrors.ErrOrderClosed
	}

	var cert *certificate.GiftCertificate
	var totals order.OrderTotals
	if req.CertificateCode != "" {
		if o.CertificateApplied.IsPositive() {
			return nil, fmt.Errorf("order already has a redeemed certificate: %w", xerrors.ErrInvalidInput)
		}
		cert, err = s.ledger.Validate(ctx, req.CertificateCode, salonID)
		if err != nil {
			return nil, err
		}
		totals, err = billing.ComputeTotals(o.Items, o.Discount, cert, o.AlreadyPaid)
	} else {
		totals, err = s.computeTotals(ctx, o)
	}
	if err != nil {
		return nil, err
	}

	// The order leaves Draft the moment a settlement attempt starts, so a
	// declined charge keeps it cancellable but no longer item-mutable.
	if o.Status == order.OrderStatusDraft {
		if err := s.orderRepo.UpdateStatus(ctx, orderID, order.OrderStatusAwaitingPayment); err != nil {
			return nil, fmt.Errorf("failed to mark order awaiting payment: %w", err)
		}
		o.Status = order.OrderStatusAwaitingPayment
	}

	amountDue := totals.TotalToPay
	var transactionID string

	switch {
	case amountDue.IsPositive() && req.Method == order.PaymentMethodCash:
		// Cash is confirmed at the desk; no gateway round trip.
		transactionID = reference.PaymentReference()
	case amountDue.IsPositive():
		charge, err := s.charger.Charge(ctx, &gateway.ChargeRequest{
			Amount:    amountDue,
			Currency:  o.Currency,
			Method:    string(req.Method),
			Reference: reference.PaymentReference(),
		})
		if err != nil {
			return nil, fmt.Errorf("gateway charge failed: %w", err)
		}
		transactionID = charge.TransactionID
	}

	// Charge confirmed: now, and only now, spend the certificate.
	if cert != nil && totals.CertificateApplied.IsPositive() {
		if _, err := s.ledger.CommitRedemption(ctx, cert, totals.CertificateApplied); err != nil {
			return nil, err
		}
		if err := s.orderRepo.SetCertificateRedemption(ctx, orderID, cert.Code, totals.CertificateApplied); err != nil {
			return nil, fmt.Errorf("failed to attach certificate redemption to order: %w", err)
		}
		o.CertificateCode = cert.Code
		o.CertificateApplied = totals.CertificateApplied
	}

	if amountDue.IsPositive() {
		kind := req.Kind
		if kind == "" {
			kind = order.PaymentKindFull
		}
		record := &order.PaymentRecord{
			Amount:        amountDue,
			Method:        req.Method,
			Kind:          kind,
			PaidAt:        time.Now(),
			TransactionID: transactionID,
		}
		o, err = s.appendPayment(ctx, o, record, totals.CertificateApplied)
		if err != nil {
			return nil, err
		}
	} else {
		// Nothing left to charge: discounts, certificate and prior payments
		// already cover the order.
		if err := s.orderRepo.UpdateStatus(ctx, orderID, order.OrderStatusFullyPaid); err != nil {
			return nil, fmt.Errorf("failed to close settled order: %w", err)
		}
		o.Status = order.OrderStatusFullyPaid
	}

	s.publish(o, "checkout_settled", amountDue, transactionID)

	finalTotals, err := s.computeTotals(ctx, o)
	if err != nil {
		return nil, err
	}

	return &order.CheckoutResponse{
		Order:              o,
		Totals:             finalTotals,
		AmountCharged:      amountDue,
		CertificateApplied: totals.CertificateApplied,
		TransactionID:      transactionID,
	}, nil
}

// RecordPayment appends an externally confirmed payment to the order history.
// A replayed transaction ID is rejected without touching the balance.
func (s *OrderService) RecordPayment(ctx context.Context, salonID, orderID int64, req *order.RecordPaymentRequest) (*order.Order, error) {
	o, err := s.GetOrder(ctx, salonID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, xerrors.ErrOrderClosed
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive: %w", xerrors.ErrInvalidInput)
	}
	if req.TransactionID == "" {
		return nil, fmt.Errorf("transaction id is required: %w", xerrors.ErrInvalidInput)
	}

	kind := req.Kind
	if kind == "" {
		kind = order.PaymentKindPartial
	}
	record := &order.PaymentRecord{
		Amount:        req.Amount,
		Method:        req.Method,
		Kind:          kind,
		PaidAt:        time.Now(),
		TransactionID: req.TransactionID,
	}

	o, err = s.appendPayment(ctx, o, record, o.CertificateApplied)
	if err != nil {
		return nil, err
	}

	s.publish(o, "payment_recorded", record.Amount, record.TransactionID)
	return o, nil
}

// CancelOrder is allowed from Draft or AwaitingPayment only. An order with
// any committed payment needs the refund workflow instead.
func (s *OrderService) CancelOrder(ctx context.Context, salonID, orderID int64) (*order.Order, error) {
	o, err := s.GetOrder(ctx, salonID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, xerrors.ErrOrderClosed
	}
	if len(o.PaymentHistory) > 0 || o.AlreadyPaid.IsPositive() {
		return nil, xerrors.ErrOrderNotCancellable
	}
	if o.Status != order.OrderStatusDraft && o.Status != order.OrderStatusAwaitingPayment {
		return nil, xerrors.ErrOrderNotCancellable
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.OrderStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	o.Status = order.OrderStatusCancelled

	s.logger.Info("order cancelled",
		zap.Int64("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
	)
	return o, nil
}

// ========== Helpers ==========

func (s *OrderService) mutableOrder(ctx context.Context, salonID, orderID int64) (*order.Order, error) {
	o, err := s.GetOrder(ctx, salonID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.OrderStatusDraft {
		return nil, xerrors.ErrOrderClosed
	}
	return o, nil
}

// appendPayment enforces the duplicate guard and the payment state machine.
func (s *OrderService) appendPayment(ctx context.Context, o *order.Order, record *order.PaymentRecord, certificateApplied decimal.Decimal) (*order.Order, error) {
	if o.HasPayment(record.TransactionID) {
		return nil, xerrors.ErrDuplicatePayment
	}

	newPaid := o.AlreadyPaid.Add(record.Amount)
	newStatus := order.OrderStatusPartiallyPaid

	totals, err := billing.ComputeTotals(o.Items, o.Discount, nil, newPaid)
	if err != nil {
		return nil, err
	}
	if totals.TotalToPay.Sub(certificateApplied).LessThanOrEqual(decimal.Zero) {
		newStatus = order.OrderStatusFullyPaid
	}

	if err := s.orderRepo.AppendPayment(ctx, o.ID, record, newStatus); err != nil {
		return nil, fmt.Errorf("failed to append payment: %w", err)
	}

	o.PaymentHistory = append(o.PaymentHistory, *record)
	o.AlreadyPaid = newPaid
	o.Status = newStatus

	s.logger.Info("payment recorded",
		zap.Int64("order_id", o.ID),
		zap.String("transaction_id", record.TransactionID),
		zap.String("amount", record.Amount.String()),
		zap.String("status", string(newStatus)),
	)

	return o, nil
}

// computeTotals runs the pure totals engine over the stored order state. A
// committed redemption enters as its frozen amount, never as a fresh preview
// of the already-decremented balance.
func (s *OrderService) computeTotals(_ context.Context, o *order.Order) (order.OrderTotals, error) {
	totals, err := billing.ComputeTotals(o.Items, o.Discount, nil, o.AlreadyPaid)
	if err != nil {
		return order.OrderTotals{}, err
	}
	if o.CertificateApplied.IsPositive() {
		totals.CertificateApplied = o.CertificateApplied
		totals.TotalToPay = totals.TotalToPay.Sub(o.CertificateApplied)
		if totals.TotalToPay.IsNegative() {
			totals.TotalToPay = decimal.Zero
		}
	}
	return totals, nil
}

func (s *OrderService) publish(o *order.Order, eventType string, amount decimal.Decimal, transactionID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishPayment(o.SalonID, notify.PaymentEvent{
		Type:          eventType,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Amount:        amount,
		TransactionID: transactionID,
		Status:        string(o.Status),
		OccurredAt:    time.Now(),
	})
}
