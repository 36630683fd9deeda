package billing

import (
	"testing"

	"salora-service/internal/domain/certificate"
	"salora-service/internal/domain/order"
	xerrors "salora-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureItems() []order.OrderLineItem {
	return []order.OrderLineItem{
		{ID: 1, Name: "Balayage", UnitPrice: decimal.NewFromInt(150), Quantity: 2, Kind: order.ItemKindService},
		{ID: 2, Name: "Repair mask", UnitPrice: decimal.NewFromInt(200), Quantity: 1, Kind: order.ItemKindProduct, StockCeiling: 5},
	}
}

func validCert(balance int64) *certificate.GiftCertificate {
	return &certificate.GiftCertificate{
		Code:           "GC-TEST",
		CurrentBalance: decimal.NewFromInt(balance),
		OriginalAmount: decimal.NewFromInt(balance),
		IsValid:        true,
	}
}

func TestComputeTotalsCertificateCoversOrder(t *testing.T) {
	discount := &order.Discount{Kind: order.DiscountKindPercent, Value: decimal.NewFromInt(10)}

	totals, err := ComputeTotals(fixtureItems(), discount, validCert(1000), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "500", totals.Subtotal.String())
	assert.Equal(t, "50", totals.DiscountAmount.String())
	assert.Equal(t, "450", totals.CertificateApplied.String())
	assert.True(t, totals.TotalToPay.IsZero())
}

func TestComputeTotalsPartialCertificate(t *testing.T) {
	totals, err := ComputeTotals(fixtureItems(), nil, validCert(100), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "500", totals.Subtotal.String())
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.Equal(t, "100", totals.CertificateApplied.String())
	assert.Equal(t, "400", totals.TotalToPay.String())
}

func TestComputeTotalsIgnoresInvalidCertificate(t *testing.T) {
	cert := validCert(1000)
	cert.IsValid = false
	cert.ErrorMessage = "expired"

	totals, err := ComputeTotals(fixtureItems(), nil, cert, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.CertificateApplied.IsZero())
	assert.Equal(t, "500", totals.TotalToPay.String())
}

func TestComputeTotalsAmountDiscountAndPayments(t *testing.T) {
	discount := &order.Discount{Kind: order.DiscountKindAmount, Value: decimal.NewFromInt(120)}

	totals, err := ComputeTotals(fixtureItems(), discount, nil, decimal.NewFromInt(180))
	require.NoError(t, err)

	assert.Equal(t, "120", totals.DiscountAmount.String())
	assert.Equal(t, "180", totals.AlreadyPaid.String())
	assert.Equal(t, "200", totals.TotalToPay.String())
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	// already paid above the amount due clamps to zero, never refunds here
	totals, err := ComputeTotals(fixtureItems(), nil, validCert(300), decimal.NewFromInt(900))
	require.NoError(t, err)
	assert.True(t, totals.TotalToPay.IsZero())
}

func TestComputeTotalsRejectsInvalidDiscount(t *testing.T) {
	tests := []struct {
		name     string
		discount *order.Discount
	}{
		{name: "percent above 100", discount: &order.Discount{Kind: order.DiscountKindPercent, Value: decimal.NewFromInt(150)}},
		{name: "negative percent", discount: &order.Discount{Kind: order.DiscountKindPercent, Value: decimal.NewFromInt(-1)}},
		{name: "amount above subtotal", discount: &order.Discount{Kind: order.DiscountKindAmount, Value: decimal.NewFromInt(501)}},
		{name: "negative amount", discount: &order.Discount{Kind: order.DiscountKindAmount, Value: decimal.NewFromInt(-5)}},
		{name: "unknown kind", discount: &order.Discount{Kind: "bogus", Value: decimal.NewFromInt(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotals(fixtureItems(), tt.discount, nil, decimal.Zero)
			assert.ErrorIs(t, err, xerrors.ErrInvalidDiscount)
		})
	}
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	discount := &order.Discount{Kind: order.DiscountKindPercent, Value: decimal.NewFromInt(10)}
	cert := validCert(250)

	first, err := ComputeTotals(fixtureItems(), discount, cert, decimal.NewFromInt(50))
	require.NoError(t, err)
	second, err := ComputeTotals(fixtureItems(), discount, cert, decimal.NewFromInt(50))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// the certificate itself is untouched by the preview
	assert.Equal(t, "250", cert.CurrentBalance.String())
}

func TestPreviewRedemptionBound(t *testing.T) {
	cert := validCert(100)

	applied := PreviewRedemption(cert, decimal.NewFromInt(450))
	assert.Equal(t, "100", applied.String())

	applied = PreviewRedemption(cert, decimal.NewFromInt(60))
	assert.Equal(t, "60", applied.String())

	assert.True(t, PreviewRedemption(nil, decimal.NewFromInt(60)).IsZero())
}

func TestSetQuantityStockGuard(t *testing.T) {
	items := fixtureItems()

	out, err := SetQuantity(items, 2, 6)
	assert.ErrorIs(t, err, xerrors.ErrInsufficientStock)
	assert.Equal(t, items, out)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestSetQuantityUpdatesAndRemoves(t *testing.T) {
	items := fixtureItems()

	out, err := SetQuantity(items, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out[1].Quantity)
	assert.Equal(t, 1, items[1].Quantity)

	out, err = SetQuantity(items, 1, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)

	_, err = SetQuantity(items, 99, 2)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestAddAndRemoveItemDoNotMutate(t *testing.T) {
	items := fixtureItems()

	added := AddItem(items, order.OrderLineItem{ID: 3, Name: "Blow dry", UnitPrice: decimal.NewFromInt(40), Quantity: 1, Kind: order.ItemKindService})
	assert.Len(t, added, 3)
	assert.Len(t, items, 2)

	removed := RemoveItem(added, 1)
	assert.Len(t, removed, 2)
	assert.Len(t, added, 3)

	assert.Equal(t, "540", Subtotal(added).String())
}
