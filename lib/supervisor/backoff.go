// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import "time"

// RetryPolicy bounds the readiness-cookie poll loop: a capped number of
// attempts, a growing inter-attempt delay with a hard ceiling, and a
// per-attempt execution timeout.
type RetryPolicy struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	Growth         float64
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy covers roughly two minutes of node startup before
// giving up.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    30,
		InitialDelay:   500 * time.Millisecond,
		Growth:         1.5,
		MaxDelay:       5 * time.Second,
		AttemptTimeout: 2 * time.Second,
	}
}

// delay returns the wait before attempt n (zero-based; attempt 0 runs
// immediately). Pure function of the policy, so the schedule is
// reproducible in tests.
func (p RetryPolicy) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := float64(p.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Growth
		if d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}
