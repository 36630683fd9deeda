// internal/service/certificate/ledger_service.go
package certificate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salora-service/internal/domain/certificate"
	xerrors "salora-service/internal/pkg/errors"
	"salora-service/internal/pkg/reference"
	"salora-service/internal/service/billing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService validates gift certificates and moves their balance. Balance
// moves only at CommitRedemption, guarded by an optimistic compare-and-swap
// in the store, so that two racing checkouts cannot double-spend a code.
type LedgerService struct {
	certRepo certificate.Repository
	logger   *zap.Logger
}

func NewLedgerService(certRepo certificate.Repository, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		certRepo: certRepo,
		logger:   logger,
	}
}

// Issue creates new stored value for a salon with a generated code.
func (s *LedgerService) Issue(ctx context.Context, salonID int64, req *certificate.IssueCertificateRequest) (*certificate.GiftCertificate, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("certificate amount must be positive: %w", xerrors.ErrInvalidInput)
	}

	cert := &certificate.GiftCertificate{
		Code:           reference.CertificateCode(),
		SalonID:        salonID,
		OriginalAmount: req.Amount,
		CurrentBalance: req.Amount,
	}
	if req.ExpiresAt != nil {
		cert.ExpiresAt = sql.NullTime{Time: *req.ExpiresAt, Valid: true}
	}

	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	s.logger.Info("gift certificate issued",
		zap.String("code", cert.Code),
		zap.Int64("salon_id", salonID),
		zap.String("amount", req.Amount.String()),
	)

	cert.IsValid = true
	return cert, nil
}

// Validate looks a code up and classifies it. The returned certificate always
// carries IsValid and, when invalid, an ErrorMessage the UI can surface; the
// sentinel error travels alongside for callers that branch on it.
func (s *LedgerService) Validate(ctx context.Context, code string, salonID int64) (*certificate.GiftCertificate, error) {
	cert, err := s.certRepo.FindByCode(ctx, code)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return s.invalid(&certificate.GiftCertificate{Code: code}, xerrors.ErrCertificateNotFound)
		}
		return nil, fmt.Errorf("failed to look up certificate: %w", err)
	}

	if cert.SalonID != salonID {
		return s.invalid(cert, xerrors.ErrCertificateWrongSalon)
	}
	if cert.Expired(time.Now()) {
		return s.invalid(cert, xerrors.ErrCertificateExpired)
	}
	if !cert.CurrentBalance.IsPositive() {
		return s.invalid(cert, xerrors.ErrCertificateZeroBalance)
	}

	cert.IsValid = true
	return cert, nil
}

// PreviewRedemption is a pure read: how much of the certificate this amount
// would consume. The stored balance is untouched.
func (s *LedgerService) PreviewRedemption(cert *certificate.GiftCertificate, amountAfterDiscount decimal.Decimal) decimal.Decimal {
	return billing.PreviewRedemption(cert, amountAfterDiscount)
}

// CommitRedemption decrements the stored balance, expecting it to still equal
// what the preview saw. Runs only after a successful gateway charge; a CAS
// miss means another checkout spent the code first and the caller must
// re-preview.
func (s *LedgerService) CommitRedemption(ctx context.Context, cert *certificate.GiftCertificate, amountUsed decimal.Decimal) (*certificate.CommitRedemptionResult, error) {
	if cert == nil || !cert.IsValid {
		return nil, fmt.Errorf("certificate not validated: %w", xerrors.ErrInvalidInput)
	}
	if !amountUsed.IsPositive() {
		return nil, fmt.Errorf("redemption amount must be positive: %w", xerrors.ErrInvalidInput)
	}
	if amountUsed.GreaterThan(cert.CurrentBalance) {
		return nil, fmt.Errorf("redemption exceeds certificate balance: %w", xerrors.ErrInvalidInput)
	}

	newBalance, err := s.certRepo.DecrementBalance(ctx, cert.Code, amountUsed, cert.CurrentBalance)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrCertificateAlreadyRedeemed) {
			s.logger.Warn("certificate balance moved between preview and commit",
				zap.String("code", cert.Code),
				zap.String("expected_balance", cert.CurrentBalance.String()),
			)
			return nil, err
		}
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	s.logger.Info("gift certificate redeemed",
		zap.String("code", cert.Code),
		zap.String("amount_used", amountUsed.String()),
		zap.String("new_balance", newBalance.String()),
	)

	return &certificate.CommitRedemptionResult{
		Code:       cert.Code,
		AmountUsed: amountUsed,
		NewBalance: newBalance,
	}, nil
}

func (s *LedgerService) invalid(cert *certificate.GiftCertificate, reason error) (*certificate.GiftCertificate, error) {
	cert.IsValid = false
	cert.ErrorMessage = reason.Error()
	return cert, reason
}
