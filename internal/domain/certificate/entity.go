// internal/domain/certificate/entity.go
package certificate

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// GiftCertificate is stored value redeemable against an order. The balance
// moves exactly once per redemption, at payment commit, never at preview.
type GiftCertificate struct {
	ID             int64           `json:"id" db:"id"`
	Code           string          `json:"code" db:"code"`
	SalonID        int64           `json:"salon_id" db:"salon_id"`
	OriginalAmount decimal.Decimal `json:"original_amount" db:"original_amount"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance"`
	ExpiresAt      sql.NullTime    `json:"expires_at,omitempty" db:"expires_at"`

	// Set by validation, not persisted.
	IsValid      bool   `json:"is_valid" db:"-"`
	ErrorMessage string `json:"error_message,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the certificate is past its expiry at the given time.
func (c *GiftCertificate) Expired(now time.Time) bool {
	return c.ExpiresAt.Valid && now.After(c.ExpiresAt.Time)
}
