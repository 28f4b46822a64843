// stage.go: Options and helpers shared by the three stage managers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"
	"time"
)

// Default tuning for stage managers when options leave fields zero.
const (
	DefaultMaxConcurrency = 4
	DefaultCallTimeout    = 30 * time.Second
)

// ManagerOptions tunes a stage manager's execution behavior.
//
// Within a cycle, per-target invocations are mutually independent and run on
// a bounded worker pool so one stalled plugin cannot delay completion of
// independent targets. Concurrency is an implementation freedom, not part of
// the pipeline contract: MaxConcurrency of 1 yields strictly sequential
// execution with identical output.
type ManagerOptions struct {
	// Logger receives construction and isolation-boundary events.
	// Accepts a Logger implementation or nil (silent).
	Logger Logger

	// MaxConcurrency bounds how many targets are processed at once.
	// Zero selects DefaultMaxConcurrency.
	MaxConcurrency int

	// CallTimeout is the per-plugin-call deadline. Each capability call gets
	// its own timeout derived from the cycle context. Zero selects
	// DefaultCallTimeout.
	CallTimeout time.Duration
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (o ManagerOptions) withDefaults() ManagerOptions {
	if o.Logger == nil {
		o.Logger = DefaultLogger()
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = DefaultMaxConcurrency
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	return o
}

// callContext derives the per-call context for one plugin invocation.
func (o ManagerOptions) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.CallTimeout)
}

// bindingCacheKey builds the plugin-instance cache key for a binding. Instances are
// cached per unique namespace/name pair, one instance per key, shared
// read-only across all targets bound to that plugin.
func bindingCacheKey(namespace, name string) string {
	return namespace + "/" + name
}
