package order

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"salora-service/internal/domain/certificate"
	"salora-service/internal/domain/order"
	"salora-service/internal/gateway"
	"salora-service/internal/notify"
	xerrors "salora-service/internal/pkg/errors"
	certsvc "salora-service/internal/service/certificate"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ========== Fakes ==========

type fakeOrderRepo struct {
	orders     map[int64]*order.Order
	nextID     int64
	nextItemID int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*order.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.nextID++
	o.ID = r.nextID
	for i := range o.Items {
		if o.Items[i].ID == 0 {
			r.nextItemID++
			o.Items[i].ID = r.nextItemID
		}
	}
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id int64) (*order.Order, error) {
	stored, ok := r.orders[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return copyOrder(stored), nil
}

func (r *fakeOrderRepo) List(_ context.Context, salonID int64, _ *order.OrderListFilters) ([]order.Order, int64, error) {
	var out []order.Order
	for _, o := range r.orders {
		if o.SalonID == salonID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) ReplaceItems(_ context.Context, orderID int64, items []order.OrderLineItem) error {
	stored := r.orders[orderID]
	for i := range items {
		if items[i].ID == 0 {
			r.nextItemID++
			items[i].ID = r.nextItemID
		}
	}
	stored.Items = append([]order.OrderLineItem(nil), items...)
	return nil
}

func (r *fakeOrderRepo) SetCertificateRedemption(_ context.Context, orderID int64, code string, applied decimal.Decimal) error {
	stored := r.orders[orderID]
	stored.CertificateCode = code
	stored.CertificateApplied = applied
	return nil
}

func (r *fakeOrderRepo) AppendPayment(_ context.Context, orderID int64, record *order.PaymentRecord, newStatus order.OrderStatus) error {
	stored := r.orders[orderID]
	if stored.HasPayment(record.TransactionID) {
		return xerrors.ErrDuplicatePayment
	}
	stored.PaymentHistory = append(stored.PaymentHistory, *record)
	stored.AlreadyPaid = stored.AlreadyPaid.Add(record.Amount)
	stored.Status = newStatus
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID int64, status order.OrderStatus) error {
	r.orders[orderID].Status = status
	return nil
}

func copyOrder(o *order.Order) *order.Order {
	dup := *o
	dup.Items = append([]order.OrderLineItem(nil), o.Items...)
	dup.PaymentHistory = append([]order.PaymentRecord(nil), o.PaymentHistory...)
	return &dup
}

type fakeCertRepo struct {
	certs map[string]*certificate.GiftCertificate
}

func (r *fakeCertRepo) Create(_ context.Context, cert *certificate.GiftCertificate) error {
	stored := *cert
	r.certs[cert.Code] = &stored
	return nil
}

func (r *fakeCertRepo) FindByCode(_ context.Context, code string) (*certificate.GiftCertificate, error) {
	stored, ok := r.certs[code]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	found := *stored
	return &found, nil
}

func (r *fakeCertRepo) DecrementBalance(_ context.Context, code string, amountUsed, expectedBalance decimal.Decimal) (decimal.Decimal, error) {
	stored := r.certs[code]
	if !stored.CurrentBalance.Equal(expectedBalance) {
		return decimal.Zero, xerrors.ErrCertificateAlreadyRedeemed
	}
	stored.CurrentBalance = stored.CurrentBalance.Sub(amountUsed)
	return stored.CurrentBalance, nil
}

type fakeCharger struct {
	calls []gateway.ChargeRequest
	err   error
}

func (c *fakeCharger) Charge(_ context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.calls = append(c.calls, *req)
	return &gateway.ChargeResponse{TransactionID: fmt.Sprintf("TXN-%d", len(c.calls))}, nil
}

type fakeNotifier struct {
	events []notify.PaymentEvent
}

func (n *fakeNotifier) PublishPayment(_ int64, event notify.PaymentEvent) {
	n.events = append(n.events, event)
}

// ========== Harness ==========

type harness struct {
	svc      *OrderService
	orders   *fakeOrderRepo
	certs    *fakeCertRepo
	charger  *fakeCharger
	notifier *fakeNotifier
}

func newHarness() *harness {
	orders := newFakeOrderRepo()
	certs := &fakeCertRepo{certs: map[string]*certificate.GiftCertificate{}}
	charger := &fakeCharger{}
	notifier := &fakeNotifier{}
	ledger := certsvc.NewLedgerService(certs, zap.NewNop())
	return &harness{
		svc:      NewOrderService(orders, ledger, charger, notifier, zap.NewNop()),
		orders:   orders,
		certs:    certs,
		charger:  charger,
		notifier: notifier,
	}
}

func (h *harness) seedCert(code string, salonID, balance int64) {
	h.certs.certs[code] = &certificate.GiftCertificate{
		Code:           code,
		SalonID:        salonID,
		OriginalAmount: decimal.NewFromInt(balance),
		CurrentBalance: decimal.NewFromInt(balance),
	}
}

func (h *harness) createOrder(t *testing.T, discount *order.Discount) *order.Order {
	t.Helper()
	o, err := h.svc.CreateOrder(context.Background(), 1, &order.CreateOrderRequest{
		Items: []order.OrderLineItem{
			{Name: "Balayage", UnitPrice: decimal.NewFromInt(150), Quantity: 2, Kind: order.ItemKindService},
			{Name: "Repair mask", UnitPrice: decimal.NewFromInt(200), Quantity: 1, Kind: order.ItemKindProduct, StockCeiling: 5},
		},
		Discount: discount,
	})
	require.NoError(t, err)
	return o
}

// ========== Tests ==========

func TestCheckoutCertificateCoversOrder(t *testing.T) {
	h := newHarness()
	h.seedCert("GC-FULL", 1, 1000)
	o := h.createOrder(t, &order.Discount{Kind: order.DiscountKindPercent, Value: decimal.NewFromInt(10)})
	ctx := context.Background()

	resp, err := h.svc.Checkout(ctx, 1, o.ID, &order.CheckoutRequest{
		CertificateCode: "GC-FULL",
		Method:          order.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.True(t, resp.AmountCharged.IsZero())
	assert.Equal(t, "450", resp.CertificateApplied.String())
	assert.Empty(t, h.charger.calls, "no gateway charge when the certificate covers everything")
	assert.Equal(t, order.OrderStatusFullyPaid, resp.Order.Status)
	assert.True(t, resp.Totals.TotalToPay.IsZero())

	stored := h.certs.certs["GC-FULL"]
	assert.Equal(t, "550", stored.CurrentBalance.String())
}

func TestCheckoutPartialCertificateChargesRemainder(t *testing.T) {
	h := newHarness()
	h.seedCert("GC-100", 1, 100)
	o := h.createOrder(t, nil)
	ctx := context.Background()

	resp, err := h.svc.Checkout(ctx, 1, o.ID, &order.CheckoutRequest{
		CertificateCode: "GC-100",
		Method:          order.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, "400", resp.AmountCharged.String())
	assert.Equal(t, "100", resp.CertificateApplied.String())
	require.Len(t, h.charger.calls, 1)
	assert.Equal(t, "400", h.charger.calls[0].Amount.String())
	assert.Equal(t, order.OrderStatusFullyPaid, resp.Order.Status)
	assert.True(t, h.certs.certs["GC-100"].CurrentBalance.IsZero())
}

func TestCheckoutFailedChargeLeavesCertificateUntouched(t *testing.T) {
	h := newHarness()
	h.seedCert("GC-100", 1, 100)
	o := h.createOrder(t, nil)
	h.charger.err = errors.New("card declined")
	ctx := context.Background()

	_, err := h.svc.Checkout(ctx, 1, o.ID, &order.CheckoutRequest{
		CertificateCode: "GC-100",
		Method:          order.PaymentMethodCard,
	})
	require.Error(t, err)

	// charge happens before redemption, so the balance must be intact
	assert.Equal(t, "100", h.certs.certs["GC-100"].CurrentBalance.String())

	stored, err := h.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusAwaitingPayment, stored.Status)
	assert.True(t, stored.AlreadyPaid.IsZero())
	assert.Empty(t, stored.PaymentHistory)
}

func TestCheckoutTotalsDoNotRecountCommittedCertificate(t *testing.T) {
	h := newHarness()
	h.seedCert("GC-300", 1, 300)
	o := h.createOrder(t, nil)
	ctx := context.Background()

	resp, err := h.svc.Checkout(ctx, 1, o.ID, &order.CheckoutRequest{
		CertificateCode: "GC-300",
		Method:          order.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, "200", resp.AmountCharged.String())

	totals, err := h.svc.GetTotals(ctx, 1, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", totals.CertificateApplied.String())
	assert.True(t, totals.TotalToPay.IsZero())
}

func TestRecordPaymentDuplicateTransaction(t *testing.T) {
	h := newHarness()
	o := h.createOrder(t, nil)
	ctx := context.Background()

	req := &order.RecordPaymentRequest{
		Amount:        decimal.NewFromInt(200),
		Method:        order.PaymentMethodCash,
		TransactionID: "TXN-DESK-1",
	}

	updated, err := h.svc.RecordPayment(ctx, 1, o.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "200", updated.AlreadyPaid.String())
	assert.Equal(t, order.OrderStatusPartiallyPaid, updated.Status)

	_, err = h.svc.RecordPayment(ctx, 1, o.ID, req)
	assert.ErrorIs(t, err, xerrors.ErrDuplicatePayment)

	stored, err := h.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "200", stored.AlreadyPaid.String())
	assert.Len(t, stored.PaymentHistory, 1)
}

func TestRecordPaymentReachesFullyPaid(t *testing.T) {
	h := newHarness()
	o := h.createOrder(t, nil)
	ctx := context.Background()

	_, err := h.svc.RecordPayment(ctx, 1, o.ID, &order.RecordPaymentRequest{
		Amount: decimal.NewFromInt(200), Method: order.PaymentMethodCash, TransactionID: "TXN-1",
	})
	require.NoError(t, err)

	updated, err := h.svc.RecordPayment(ctx, 1, o.ID, &order.RecordPaymentRequest{
		Amount: decimal.NewFromInt(300), Method: order.PaymentMethodCard, TransactionID: "TXN-2",
	})
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusFullyPaid, updated.Status)

	// terminal: further payments are rejected
	_, err = h.svc.RecordPayment(ctx, 1, o.ID, &order.RecordPaymentRequest{
		Amount: decimal.NewFromInt(10), Method: order.PaymentMethodCash, TransactionID: "TXN-3",
	})
	assert.ErrorIs(t, err, xerrors.ErrOrderClosed)
}

func TestCancelOrderRules(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	draft := h.createOrder(t, nil)
	cancelled, err := h.svc.CancelOrder(ctx, 1, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, cancelled.Status)

	_, err = h.svc.CancelOrder(ctx, 1, draft.ID)
	assert.ErrorIs(t, err, xerrors.ErrOrderClosed)

	paid := h.createOrder(t, nil)
	_, err = h.svc.RecordPayment(ctx, 1, paid.ID, &order.RecordPaymentRequest{
		Amount: decimal.NewFromInt(50), Method: order.PaymentMethodCash, TransactionID: "TXN-P",
	})
	require.NoError(t, err)
	_, err = h.svc.CancelOrder(ctx, 1, paid.ID)
	assert.ErrorIs(t, err, xerrors.ErrOrderNotCancellable)
}

func TestItemMutationOnDraftOnly(t *testing.T) {
	h := newHarness()
	o := h.createOrder(t, nil)
	ctx := context.Background()

	// stock guard propagates and keeps the order unchanged
	productID := o.Items[1].ID
	_, err := h.svc.SetItemQuantity(ctx, 1, o.ID, productID, 6)
	assert.ErrorIs(t, err, xerrors.ErrInsufficientStock)

	stored, err := h.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Items[1].Quantity)

	updated, err := h.svc.SetItemQuantity(ctx, 1, o.ID, productID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Items[1].Quantity)

	// once checkout starts the order is no longer item-mutable
	_, err = h.svc.RecordPayment(ctx, 1, o.ID, &order.RecordPaymentRequest{
		Amount: decimal.NewFromInt(10), Method: order.PaymentMethodCash, TransactionID: "TXN-X",
	})
	require.NoError(t, err)
	_, err = h.svc.AddItem(ctx, 1, o.ID, order.OrderLineItem{Name: "Blow dry", UnitPrice: decimal.NewFromInt(40), Quantity: 1, Kind: order.ItemKindService})
	assert.ErrorIs(t, err, xerrors.ErrOrderClosed)
}

func TestCheckoutRacingCertificateSurfacesConflict(t *testing.T) {
	h := newHarness()
	h.seedCert("GC-RACE", 1, 500)
	first := h.createOrder(t, nil)
	second := h.createOrder(t, nil)
	ctx := context.Background()

	_, err := h.svc.Checkout(ctx, 1, first.ID, &order.CheckoutRequest{
		CertificateCode: "GC-RACE",
		Method:          order.PaymentMethodCard,
	})
	require.NoError(t, err)

	// the first checkout drained the certificate, so the second one fails
	// at validation before any charge is attempted
	_, err = h.svc.Checkout(ctx, 1, second.ID, &order.CheckoutRequest{
		CertificateCode: "GC-RACE",
		Method:          order.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, xerrors.ErrCertificateZeroBalance)
}

func TestOwnershipEnforced(t *testing.T) {
	h := newHarness()
	o := h.createOrder(t, nil)

	_, err := h.svc.GetOrder(context.Background(), 2, o.ID)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestCheckoutPublishesPaymentEvent(t *testing.T) {
	h := newHarness()
	o := h.createOrder(t, nil)

	_, err := h.svc.Checkout(context.Background(), 1, o.ID, &order.CheckoutRequest{Method: order.PaymentMethodCard})
	require.NoError(t, err)

	require.NotEmpty(t, h.notifier.events)
	assert.Equal(t, "checkout_settled", h.notifier.events[0].Type)
	assert.Equal(t, o.ID, h.notifier.events[0].OrderID)
}
