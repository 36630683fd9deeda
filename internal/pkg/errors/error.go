package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInternal     = errors.New("internal server error")
	ErrRateLimited  = errors.New("too many requests")
)

// Billing settlement errors
var (
	ErrInvalidPlan         = errors.New("invalid subscription plan")
	ErrInvalidDiscount     = errors.New("invalid discount")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrDuplicatePayment    = errors.New("duplicate payment transaction")
	ErrOrderNotCancellable = errors.New("order has committed payments and cannot be cancelled")
	ErrOrderClosed         = errors.New("order is in a terminal state")
)

// Gift certificate errors
var (
	ErrCertificateNotFound        = errors.New("gift certificate not found")
	ErrCertificateExpired         = errors.New("gift certificate has expired")
	ErrCertificateZeroBalance     = errors.New("gift certificate has no remaining balance")
	ErrCertificateWrongSalon      = errors.New("gift certificate belongs to a different salon")
	ErrCertificateAlreadyRedeemed = errors.New("gift certificate balance changed since preview")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
