// registry.go: Read-only target registry backing the stage managers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"sort"
)

// TargetRegistry is an immutable, in-memory view of which plugins are bound
// to which target, per stage.
//
// It is built once from a validated PipelineConfig and shared read-only by
// all three stage managers, which makes every manager independently
// constructible and testable. Target iteration order is fixed at
// construction (sorted by target ID) so cycle output is deterministic and
// log-friendly regardless of map ordering in the source configuration.
type TargetRegistry struct {
	targets map[string]TargetConfig
	order   []string
}

// NewTargetRegistry builds a registry from a pipeline configuration.
//
// The configuration is copied; later mutation of the input does not affect
// the registry.
func NewTargetRegistry(config *PipelineConfig) *TargetRegistry {
	targets := make(map[string]TargetConfig, len(config.Targets))
	order := make([]string, 0, len(config.Targets))

	for targetID, target := range config.Targets {
		targets[targetID] = target
		order = append(order, targetID)
	}
	sort.Strings(order)

	return &TargetRegistry{
		targets: targets,
		order:   order,
	}
}

// TargetIDs returns all configured target IDs in registry order.
//
// The returned slice is a copy; callers may not mutate registry state.
func (tr *TargetRegistry) TargetIDs() []string {
	ids := make([]string, len(tr.order))
	copy(ids, tr.order)
	return ids
}

// Get returns the configuration for a target.
//
// A missing target is a ConfigurationError in the taxonomy sense: it means
// "nothing to do", so callers get a plain ok=false rather than an error.
func (tr *TargetRegistry) Get(targetID string) (TargetConfig, bool) {
	target, ok := tr.targets[targetID]
	return target, ok
}

// Enabled reports whether a target exists and is enabled.
func (tr *TargetRegistry) Enabled(targetID string) bool {
	target, ok := tr.targets[targetID]
	return ok && target.Enabled
}

// DiagnosticBindings returns a target's ordered diagnostic bindings, or nil
// when the target is unknown or has none.
func (tr *TargetRegistry) DiagnosticBindings(targetID string) []BindingConfig {
	target, ok := tr.targets[targetID]
	if !ok {
		return nil
	}
	return target.Diagnostics
}

// RecoveryBindings returns a target's ordered recovery bindings, or nil when
// the target is unknown or has none.
func (tr *TargetRegistry) RecoveryBindings(targetID string) []BindingConfig {
	target, ok := tr.targets[targetID]
	if !ok {
		return nil
	}
	return target.Recovery
}

// Len returns the number of configured targets.
func (tr *TargetRegistry) Len() int {
	return len(tr.order)
}
