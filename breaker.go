// breaker.go: Circuit breaker guarding recovery plugins against remediation storms
//
// A recovery action that keeps failing (restart loops, failover flapping) is
// worse than no action at all. The RecoveryManager can wrap each recovery
// plugin in a breaker: after enough consecutive failures the plugin's
// bindings are skipped, exactly like an unresolved plugin, until the cooldown
// passes and a limited number of trial attempts succeed again.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// BreakerState represents the current operational state of a recovery breaker.
//
//   - BreakerClosed: normal operation, attempts are allowed
//   - BreakerOpen: tripped, attempts are skipped until the cooldown expires
//   - BreakerHalfOpen: trial phase, limited attempts allowed to test recovery
type BreakerState int32

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes the recovery breaker.
//
// The zero value disables breaking entirely, preserving the plain escalation
// semantics of the recovery stage.
type BreakerConfig struct {
	// Enabled turns the breaker on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// FailureThreshold is how many recorded failures trip the breaker.
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold"`

	// Cooldown is how long an open breaker blocks attempts before moving
	// to the half-open trial phase.
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`

	// TrialSuccesses is how many consecutive half-open successes close the
	// breaker again. Also bounds how many trial attempts are admitted.
	TrialSuccesses int `json:"trial_successes" yaml:"trial_successes"`
}

// withDefaults fills zero thresholds with safe values.
func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.TrialSuccesses <= 0 {
		c.TrialSuccesses = 2
	}
	return c
}

// recoveryBreaker is the per-plugin breaker instance.
//
// Counters are atomic so AttemptAllRecoveries can consult the breaker without
// serializing on a lock in the common closed-state path; the mutex guards
// only state transitions.
type recoveryBreaker struct {
	config BreakerConfig

	state       atomic.Int32
	failures    atomic.Int64
	successes   atomic.Int64
	attempts    atomic.Int64
	lastFailure atomic.Int64 // unix nanos

	mu sync.Mutex
}

func newRecoveryBreaker(config BreakerConfig) *recoveryBreaker {
	rb := &recoveryBreaker{config: config.withDefaults()}
	rb.config.Enabled = config.Enabled
	rb.state.Store(int32(BreakerClosed))
	return rb
}

// Allow reports whether a recovery attempt may proceed right now.
//
// May transition an open breaker to half-open when the cooldown has passed.
func (rb *recoveryBreaker) Allow() bool {
	if !rb.config.Enabled {
		return true
	}

	switch BreakerState(rb.state.Load()) {
	case BreakerClosed:
		return true

	case BreakerOpen:
		if !rb.cooldownExpired() {
			return false
		}
		rb.mu.Lock()
		if BreakerState(rb.state.Load()) == BreakerOpen && rb.cooldownExpired() {
			rb.state.Store(int32(BreakerHalfOpen))
			rb.resetCounters()
		}
		rb.mu.Unlock()
		return BreakerState(rb.state.Load()) == BreakerHalfOpen

	case BreakerHalfOpen:
		return rb.attempts.Load() < int64(rb.config.TrialSuccesses)

	default:
		return false
	}
}

// RecordSuccess notes a successful attempt and may close a half-open breaker.
func (rb *recoveryBreaker) RecordSuccess() {
	if !rb.config.Enabled {
		return
	}

	rb.successes.Add(1)
	rb.attempts.Add(1)

	if BreakerState(rb.state.Load()) == BreakerHalfOpen {
		rb.mu.Lock()
		defer rb.mu.Unlock()
		if rb.successes.Load() >= int64(rb.config.TrialSuccesses) {
			rb.state.Store(int32(BreakerClosed))
			rb.resetCounters()
		}
	}
}

// RecordFailure notes a failed attempt and may trip the breaker.
func (rb *recoveryBreaker) RecordFailure() {
	if !rb.config.Enabled {
		return
	}

	rb.failures.Add(1)
	rb.attempts.Add(1)
	rb.lastFailure.Store(timecache.CachedTimeNano())

	state := BreakerState(rb.state.Load())
	if state == BreakerClosed || state == BreakerHalfOpen {
		rb.mu.Lock()
		defer rb.mu.Unlock()

		// Any half-open failure reopens immediately; closed trips on threshold.
		if state == BreakerHalfOpen || rb.failures.Load() >= int64(rb.config.FailureThreshold) {
			rb.state.Store(int32(BreakerOpen))
		}
	}
}

// State returns the breaker's current state.
func (rb *recoveryBreaker) State() BreakerState {
	return BreakerState(rb.state.Load())
}

func (rb *recoveryBreaker) cooldownExpired() bool {
	last := rb.lastFailure.Load()
	if last == 0 {
		return true
	}
	return time.Since(time.Unix(0, last)) >= rb.config.Cooldown
}

// resetCounters clears counters; callers hold mu.
func (rb *recoveryBreaker) resetCounters() {
	rb.failures.Store(0)
	rb.successes.Store(0)
	rb.attempts.Store(0)
}
