// internal/service/billing/totals.go
package billing

import (
	"salora-service/internal/domain/certificate"
	"salora-service/internal/domain/order"
	xerrors "salora-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Subtotal sums unit price times quantity across the line items.
func Subtotal(items []order.OrderLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// DiscountAmount resolves a discount against a subtotal. Percent discounts
// must be within [0,100], amount discounts within [0,subtotal].
func DiscountAmount(subtotal decimal.Decimal, d *order.Discount) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, nil
	}
	switch d.Kind {
	case order.DiscountKindPercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(oneHundred) {
			return decimal.Zero, xerrors.ErrInvalidDiscount
		}
		return subtotal.Mul(d.Value).Div(oneHundred), nil
	case order.DiscountKindAmount:
		if d.Value.IsNegative() || d.Value.GreaterThan(subtotal) {
			return decimal.Zero, xerrors.ErrInvalidDiscount
		}
		return d.Value, nil
	default:
		return decimal.Zero, xerrors.ErrInvalidDiscount
	}
}

// PreviewRedemption returns how much of a certificate the given amount can
// consume. Pure read: the stored balance is untouched until commit.
func PreviewRedemption(cert *certificate.GiftCertificate, amountAfterDiscount decimal.Decimal) decimal.Decimal {
	if cert == nil || !cert.IsValid {
		return decimal.Zero
	}
	if cert.CurrentBalance.LessThan(amountAfterDiscount) {
		return cert.CurrentBalance
	}
	return amountAfterDiscount
}

// ComputeTotals combines line items, the optional discount, an optional
// validated certificate and the payment history into the amount still due.
// Identical inputs always produce identical totals.
func ComputeTotals(items []order.OrderLineItem, discount *order.Discount, cert *certificate.GiftCertificate, alreadyPaid decimal.Decimal) (order.OrderTotals, error) {
	subtotal := Subtotal(items)

	discountAmount, err := DiscountAmount(subtotal, discount)
	if err != nil {
		return order.OrderTotals{}, err
	}

	afterDiscount := subtotal.Sub(discountAmount)
	applied := PreviewRedemption(cert, afterDiscount)

	totalToPay := afterDiscount.Sub(applied).Sub(alreadyPaid)
	if totalToPay.IsNegative() {
		totalToPay = decimal.Zero
	}

	return order.OrderTotals{
		Subtotal:           subtotal,
		DiscountAmount:     discountAmount,
		CertificateApplied: applied,
		AlreadyPaid:        alreadyPaid,
		TotalToPay:         totalToPay,
	}, nil
}
