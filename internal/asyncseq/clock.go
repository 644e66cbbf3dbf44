package asyncseq

import (
	"context"
	"time"
)

// Clock is the scheduler abstraction used by throttled traversal: a time
// source plus a suspension primitive.
//
// SystemClock is used in production; tests substitute a virtual clock so
// throttle waits complete instantly and deterministically.
type Clock interface {
	Now() time.Time
	// Sleep suspends for d or until ctx is done, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock implements Clock with wall-clock time.
// Thread-safety: SystemClock is stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d, returning early with ctx.Err() if ctx is cancelled.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
