// internal/domain/certificate/repository.go
package certificate

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, cert *GiftCertificate) error
	FindByCode(ctx context.Context, code string) (*GiftCertificate, error)

	// DecrementBalance subtracts amountUsed from the stored balance, but only
	// if the balance still equals expectedBalance (optimistic concurrency).
	// Returns the new balance, or xerrors.ErrCertificateAlreadyRedeemed when
	// the guard fails.
	DecrementBalance(ctx context.Context, code string, amountUsed, expectedBalance decimal.Decimal) (decimal.Decimal, error)
}
