// internal/domain/certificate/dto.go
package certificate

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidateCertificateRequest comes from the checkout UI before any money moves.
type ValidateCertificateRequest struct {
	Code    string `json:"code" binding:"required"`
	SalonID int64  `json:"salon_id" binding:"required"`
}

type ValidateCertificateResponse struct {
	Success     bool             `json:"success"`
	Certificate *GiftCertificate `json:"certificate,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// IssueCertificateRequest creates new stored value for a salon.
type IssueCertificateRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// CommitRedemptionResult reports the post-commit balance.
type CommitRedemptionResult struct {
	Code       string          `json:"code"`
	AmountUsed decimal.Decimal `json:"amount_used"`
	NewBalance decimal.Decimal `json:"new_balance"`
}
