// recovery.go: Recover stage - attempts automated remediation of diagnosed issues
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"
	"fmt"

	"github.com/agilira/go-timecache"
)

// EscalationPolicy controls how the RecoveryManager walks a target's
// recovery bindings for one issue.
type EscalationPolicy int

const (
	// EscalationStopAtFirstSuccess tries bindings in declared order and
	// stops at the first one producing a "success" outcome. This mirrors a
	// cheap-fix-first ladder while avoiding redundant remediation once one
	// action succeeds. This is the default.
	EscalationStopAtFirstSuccess EscalationPolicy = iota

	// EscalationTryAll offers the issue to every applicable binding
	// regardless of earlier outcomes.
	EscalationTryAll
)

func (p EscalationPolicy) String() string {
	switch p {
	case EscalationStopAtFirstSuccess:
		return "stop-at-first-success"
	case EscalationTryAll:
		return "try-all"
	default:
		return "unknown"
	}
}

// RecoveryOptions tunes the Recover stage.
type RecoveryOptions struct {
	ManagerOptions

	// Escalation selects the binding-walk policy. Defaults to
	// EscalationStopAtFirstSuccess.
	Escalation EscalationPolicy

	// Breaker guards each recovery plugin against remediation storms.
	// Disabled by default.
	Breaker BreakerConfig
}

// RecoveryManager offers each diagnosed issue to its target's recovery
// bindings and emits enriched RecoveryOutcomes.
//
// Construction resolves and instantiates every recovery binding across every
// target, caching one instance per unique namespace/name pair; unresolvable
// bindings are skipped independently. AttemptRecovery is never called unless
// CanRecover just returned true for that issue, and a declined binding emits
// no outcome at all, distinguishing "not applicable" from "attempted and
// failed".
type RecoveryManager struct {
	plugins  map[string]RecoveryPlugin
	breakers map[string]*recoveryBreaker
	bindings map[string][]recoveryBinding
	opts     RecoveryOptions
	logger   Logger
	stats    RecoveryStats
}

// recoveryBinding is one loaded plugin binding for a target, in escalation
// order.
type recoveryBinding struct {
	pluginName string
	plugin     RecoveryPlugin
	breaker    *recoveryBreaker
	config     map[string]any
}

// RecoveryStats reports construction-time outcomes.
type RecoveryStats struct {
	ConfiguredBindings int `json:"configured_bindings"`
	ActiveBindings     int `json:"active_bindings"`
	LoadFailures       int `json:"load_failures"`
	PluginsCached      int `json:"plugins_cached"`
}

// NewRecoveryManager builds the Recover stage from the target registry.
//
// Construction never fails; a binding whose plugin cannot be resolved is
// logged and treated as absent.
func NewRecoveryManager(registry *TargetRegistry, resolver *PluginResolver, opts RecoveryOptions) *RecoveryManager {
	opts.ManagerOptions = opts.ManagerOptions.withDefaults()

	rm := &RecoveryManager{
		plugins:  make(map[string]RecoveryPlugin),
		breakers: make(map[string]*recoveryBreaker),
		bindings: make(map[string][]recoveryBinding),
		opts:     opts,
		logger:   opts.Logger,
	}

	for _, targetID := range registry.TargetIDs() {
		for _, binding := range registry.RecoveryBindings(targetID) {
			rm.stats.ConfiguredBindings++

			key := bindingCacheKey(binding.ResolveNamespace(), binding.Plugin)
			plugin, ok := rm.plugins[key]
			if !ok {
				var err error
				plugin, err = resolver.ResolveRecovery(binding.ResolveNamespace(), binding.Plugin)
				if err != nil {
					rm.stats.LoadFailures++
					rm.logger.Warn("Recovery plugin unavailable for target",
						"target", targetID,
						"plugin", binding.Plugin,
						"error", err)
					continue
				}
				rm.plugins[key] = plugin
				rm.breakers[key] = newRecoveryBreaker(opts.Breaker)
			}

			rm.bindings[targetID] = append(rm.bindings[targetID], recoveryBinding{
				pluginName: binding.Plugin,
				plugin:     plugin,
				breaker:    rm.breakers[key],
				config:     binding.Config,
			})
			rm.stats.ActiveBindings++
		}
	}
	rm.stats.PluginsCached = len(rm.plugins)

	return rm
}

// Stats returns construction-time statistics.
func (rm *RecoveryManager) Stats() RecoveryStats {
	return rm.stats
}

// AttemptAllRecoveries walks every issue through its target's recovery
// ladder and returns the enriched outcomes.
//
// Issues are processed sequentially in input order: remediation actions have
// side effects, and running two actions against the same target at once is
// exactly the kind of storm this stage exists to prevent. For each issue the
// target's bindings are tried in declared order; unresolved plugins and
// declined CanRecover gates are skipped without emitting an outcome. A
// failing or panicking AttemptRecovery yields a synthesized error outcome
// and escalation continues; under the default policy a "success" outcome
// stops the ladder for that issue.
//
// Cancelling ctx stops before the next attempt; outcomes already collected
// are returned.
func (rm *RecoveryManager) AttemptAllRecoveries(ctx context.Context, issues []Issue) []RecoveryOutcome {
	var outcomes []RecoveryOutcome

	for _, issue := range issues {
		select {
		case <-ctx.Done():
			rm.logger.Warn("Recovery pass cancelled",
				"collected_outcomes", len(outcomes),
				"total_issues", len(issues))
			return outcomes
		default:
		}

		outcomes = append(outcomes, rm.recoverIssue(ctx, issue)...)
	}

	return outcomes
}

// recoverIssue walks one issue down its target's escalation ladder.
func (rm *RecoveryManager) recoverIssue(ctx context.Context, issue Issue) []RecoveryOutcome {
	bindings := rm.bindings[issue.TargetID]
	if len(bindings) == 0 {
		// Nothing to do: the target has no recovery configured.
		return nil
	}

	var outcomes []RecoveryOutcome

	for _, binding := range bindings {
		if !binding.breaker.Allow() {
			rm.logger.Warn("Recovery breaker open, skipping binding",
				"target", issue.TargetID,
				"plugin", binding.pluginName,
				"issue_type", issue.Type)
			continue
		}

		if !rm.canRecover(binding, issue) {
			continue
		}

		outcome := rm.attemptRecovery(ctx, binding, issue)
		outcomes = append(outcomes, outcome)

		if outcome.Status == StatusSuccess {
			binding.breaker.RecordSuccess()
			if rm.opts.Escalation == EscalationStopAtFirstSuccess {
				break
			}
		} else {
			binding.breaker.RecordFailure()
		}
	}

	return outcomes
}

// canRecover evaluates the applicability gate inside the isolation boundary.
// A panicking CanRecover counts as declined.
func (rm *RecoveryManager) canRecover(binding recoveryBinding, issue Issue) bool {
	applicable, err := safeCall(rm.logger, binding.pluginName, func() (bool, error) {
		return binding.plugin.CanRecover(issue), nil
	})
	if err != nil {
		rm.logger.Warn("CanRecover panicked, treating binding as not applicable",
			"target", issue.TargetID,
			"plugin", binding.pluginName,
			"error", err)
		return false
	}
	return applicable
}

// attemptRecovery runs one isolated remediation attempt and wraps the
// outcome into the enrichment envelope.
func (rm *RecoveryManager) attemptRecovery(ctx context.Context, binding recoveryBinding, issue Issue) RecoveryOutcome {
	callCtx, cancel := rm.opts.callContext(ctx)
	defer cancel()

	report, err := safeCall(rm.logger, binding.pluginName, func() (RecoveryReport, error) {
		return binding.plugin.AttemptRecovery(callCtx, issue, binding.config)
	})

	outcome := RecoveryOutcome{
		TargetID:    issue.TargetID,
		RecoveredBy: binding.pluginName,
		Timestamp:   timecache.CachedTime(),
	}

	if err != nil {
		rm.logger.Warn("Recovery attempt failed",
			"target", issue.TargetID,
			"plugin", binding.pluginName,
			"issue_type", issue.Type,
			"error", NewPluginExecutionFailedError(binding.pluginName, err))

		outcome.Status = StatusError
		outcome.ErrorMessage = fmt.Sprintf("Exception in plugin: %v", err)
		return outcome
	}

	outcome.Status = report.Status
	outcome.Details = report.Details
	outcome.Fields = report.Fields
	return outcome
}
