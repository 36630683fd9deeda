// internal/repository/postgres/certificate_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"salora-service/internal/domain/certificate"
	xerrors "salora-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type CertificateRepository struct {
	db *DB
}

func NewCertificateRepository(db *DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a new gift certificate
func (r *CertificateRepository) Create(ctx context.Context, cert *certificate.GiftCertificate) error {
	query := `
		INSERT INTO gift_certificates (
			code, salon_id, original_amount, current_balance, expires_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool().QueryRow(
		ctx, query,
		cert.Code, cert.SalonID, cert.OriginalAmount, cert.CurrentBalance, cert.ExpiresAt,
	).Scan(&cert.ID, &cert.CreatedAt, &cert.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create gift certificate: %w", err)
	}

	return nil
}

// FindByCode retrieves a gift certificate by its code
func (r *CertificateRepository) FindByCode(ctx context.Context, code string) (*certificate.GiftCertificate, error) {
	query := `
		SELECT id, code, salon_id, original_amount, current_balance, expires_at,
		       created_at, updated_at
		FROM gift_certificates
		WHERE code = $1
	`

	var cert certificate.GiftCertificate
	err := r.db.Pool().QueryRow(ctx, query, code).Scan(
		&cert.ID, &cert.Code, &cert.SalonID, &cert.OriginalAmount, &cert.CurrentBalance, &cert.ExpiresAt,
		&cert.CreatedAt, &cert.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find gift certificate: %w", err)
	}

	return &cert, nil
}

// DecrementBalance spends amountUsed from the certificate, but only if the
// stored balance still equals expectedBalance. A zero row count means another
// redemption got there first and the caller must re-validate.
func (r *CertificateRepository) DecrementBalance(ctx context.Context, code string, amountUsed, expectedBalance decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE gift_certificates
		SET current_balance = current_balance - $2, updated_at = NOW()
		WHERE code = $1 AND current_balance = $3
		RETURNING current_balance
	`

	var newBalance decimal.Decimal
	err := r.db.Pool().QueryRow(ctx, query, code, amountUsed, expectedBalance).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, xerrors.ErrCertificateAlreadyRedeemed
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decrement certificate balance: %w", err)
	}

	return newBalance, nil
}
