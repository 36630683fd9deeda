// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CertificateLimiter throttles certificate validation attempts so a client
// cannot brute-force codes. Keys are scoped per caller IP and salon.
type CertificateLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewCertificateLimiter(client *redis.Client) *CertificateLimiter {
	return &CertificateLimiter{
		client:      client,
		maxAttempts: 20,
		window:      time.Minute,
	}
}

// CheckValidationAttempt reports whether another lookup is allowed, plus the
// attempts remaining in the current window.
func (r *CertificateLimiter) CheckValidationAttempt(ctx context.Context, ip string, salonID int64) (bool, int64, error) {
	key := fmt.Sprintf("ratelimit:certvalidate:%s:%d", ip, salonID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment validation attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, r.window)
	}

	remaining := r.maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.maxAttempts, remaining, nil
}
