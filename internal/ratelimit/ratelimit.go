// Package ratelimit provides the token-bucket throttle shared by all
// outbound provider clients. One limiter per provider; every network call
// waits on it before dialing.
package ratelimit

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound provider calls. Implementations are safe for
// concurrent use.
type Limiter interface {
	Wait(ctx context.Context) error
}

// New returns a token-bucket limiter allowing one call per interval with a
// burst of one. Non-positive intervals yield an unthrottled limiter.
func New(interval time.Duration) Limiter {
	if interval <= 0 {
		return NewNop()
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// PerIntervalMS builds a limiter from a millisecond figure as carried by
// config.
func PerIntervalMS(ms int) Limiter {
	return New(time.Duration(ms) * time.Millisecond)
}

// NewNop returns a limiter that never blocks. Used in tests and for
// providers with throttling disabled.
func NewNop() Limiter { return nopLimiter{} }

type nopLimiter struct{}

func (nopLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, timeouts, connection errors).
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "429") || strings.Contains(message, "rate limit") {
		return true
	}
	// Server errors are typically transient (outages, deploys, overload).
	for _, code := range []string{"502", "503", "504"} {
		if strings.Contains(message, code) {
			return true
		}
	}
	timeoutTokens := []string{
		"timeout",
		"deadline exceeded",
		"client.timeout exceeded",
		"connection reset",
		"connection refused",
		"temporary failure",
		"awaiting headers",
	}
	for _, token := range timeoutTokens {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
