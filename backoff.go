package smartpoll

import (
	"math"
	"time"
)

// BackoffPolicy computes the sleep that should follow the emptyCount-th
// consecutive empty poll, bounded above by maxIdleDelay. Implementations
// must be pure functions of their inputs: delayFor(0, _) == 0, and the
// sequence delayFor(1, m), delayFor(2, m), ... must be monotonically
// non-decreasing and never exceed m.
type BackoffPolicy func(emptyCount int64, maxIdleDelay time.Duration) time.Duration

const (
	// backoffBaseDelay is the sleep following the first empty poll.
	backoffBaseDelay = 10 * time.Millisecond
	// backoffGrowthRatio is the geometric growth factor between successive
	// empty polls, ahead of the maxIdleDelay cap. Must be >= 1.5. From the
	// 10ms base, the curve alone reaches any cap up to 10ms*2^19 (about 87
	// minutes) within 20 empty polls; backoffCapEmptyCount covers larger caps.
	backoffGrowthRatio = 2.0
	// backoffCapEmptyCount is the consecutive empty-poll count from which
	// DefaultBackoff always returns maxIdleDelay, so the cap is reached
	// within 20 empty polls however large maxIdleDelay is.
	backoffCapEmptyCount = 20
	// backoffMaxExponent bounds the exponent fed to math.Pow; the cap is
	// always reached well before this, it just avoids computing with huge
	// floats for pathological emptyCount values.
	backoffMaxExponent = 48
)

// DefaultBackoff is the BackoffPolicy used when Config.Backoff is nil. It
// grows geometrically from backoffBaseDelay, doubling each consecutive
// empty poll, until it reaches maxIdleDelay, after which it holds steady.
// From the backoffCapEmptyCount-th consecutive empty poll on, it returns
// maxIdleDelay whatever the curve would give.
func DefaultBackoff(emptyCount int64, maxIdleDelay time.Duration) time.Duration {
	if emptyCount <= 0 || maxIdleDelay <= 0 {
		return 0
	}
	if emptyCount >= backoffCapEmptyCount {
		return maxIdleDelay
	}

	exponent := emptyCount - 1
	if exponent > backoffMaxExponent {
		return maxIdleDelay
	}

	delay := float64(backoffBaseDelay) * math.Pow(backoffGrowthRatio, float64(exponent))
	if delay <= 0 || delay >= float64(maxIdleDelay) || math.IsInf(delay, 1) {
		return maxIdleDelay
	}

	return time.Duration(delay)
}
