// diagnoser.go: Diagnose stage - classifies issues from monitor data
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"
	"fmt"
	"sync"

	"github.com/agilira/go-timecache"
)

// IssueDiagnoser feeds each target's health records to its bound diagnostic
// plugins and emits enriched Issues.
//
// Construction resolves and instantiates every diagnostic binding across
// every target, caching one instance per unique namespace/name pair.
// Unresolvable bindings are skipped independently of others. The plugin
// cache is read-only after construction.
type IssueDiagnoser struct {
	plugins  map[string]DiagnosticPlugin
	bindings map[string][]diagnosticBinding
	order    []string
	opts     ManagerOptions
	logger   Logger
	stats    DiagnoserStats
}

// diagnosticBinding is one loaded plugin binding for a target, in the order
// the configuration declared it.
type diagnosticBinding struct {
	pluginName string
	plugin     DiagnosticPlugin
	config     map[string]any
}

// DiagnoserStats reports construction-time outcomes.
type DiagnoserStats struct {
	ConfiguredBindings int `json:"configured_bindings"`
	ActiveBindings     int `json:"active_bindings"`
	LoadFailures       int `json:"load_failures"`
	PluginsCached      int `json:"plugins_cached"`
}

// NewIssueDiagnoser builds the Diagnose stage from the target registry.
//
// Construction never fails; a binding whose plugin cannot be resolved is
// logged and treated as absent.
func NewIssueDiagnoser(registry *TargetRegistry, resolver *PluginResolver, opts ManagerOptions) *IssueDiagnoser {
	opts = opts.withDefaults()

	d := &IssueDiagnoser{
		plugins:  make(map[string]DiagnosticPlugin),
		bindings: make(map[string][]diagnosticBinding),
		order:    registry.TargetIDs(),
		opts:     opts,
		logger:   opts.Logger,
	}

	for _, targetID := range d.order {
		for _, binding := range registry.DiagnosticBindings(targetID) {
			d.stats.ConfiguredBindings++

			key := bindingCacheKey(binding.ResolveNamespace(), binding.Plugin)
			plugin, ok := d.plugins[key]
			if !ok {
				var err error
				plugin, err = resolver.ResolveDiagnostic(binding.ResolveNamespace(), binding.Plugin)
				if err != nil {
					d.stats.LoadFailures++
					d.logger.Warn("Diagnostic plugin unavailable for target",
						"target", targetID,
						"plugin", binding.Plugin,
						"error", err)
					continue
				}
				d.plugins[key] = plugin
			}

			d.bindings[targetID] = append(d.bindings[targetID], diagnosticBinding{
				pluginName: binding.Plugin,
				plugin:     plugin,
				config:     binding.Config,
			})
			d.stats.ActiveBindings++
		}
	}
	d.stats.PluginsCached = len(d.plugins)

	return d
}

// Stats returns construction-time statistics.
func (d *IssueDiagnoser) Stats() DiagnoserStats {
	return d.stats
}

// RunDiagnostics executes one diagnosis pass over the supplied monitor data.
//
// Only targets present in monitorResults are considered; a target with
// missing or empty diagnostic bindings contributes nothing. Each bound
// plugin receives all of the target's HealthRecords for the current cycle.
// A failing or panicking plugin contributes exactly one synthesized
// DIAGNOSTIC_ERROR issue whose details carry the plugin name and original
// message.
//
// Output preserves target and binding iteration order. Targets may be
// diagnosed concurrently; bindings within a target always run in declared
// order against the complete record set.
func (d *IssueDiagnoser) RunDiagnostics(ctx context.Context, monitorResults map[string][]HealthRecord) []Issue {
	// Work list in registry order, restricted to targets that were monitored.
	var targets []string
	for _, targetID := range d.order {
		if _, ok := monitorResults[targetID]; !ok {
			continue
		}
		if len(d.bindings[targetID]) == 0 {
			continue
		}
		targets = append(targets, targetID)
	}
	if len(targets) == 0 {
		return nil
	}

	slots := make([]struct {
		issues []Issue
		done   bool
	}, len(targets))

	sem := make(chan struct{}, d.opts.MaxConcurrency)
	var wg sync.WaitGroup

launch:
	for i := range targets {
		select {
		case <-ctx.Done():
			d.logger.Warn("Diagnosis pass cancelled",
				"completed_targets", i,
				"total_targets", len(targets))
			break launch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			slots[i].issues = d.diagnoseTarget(ctx, targets[i], monitorResults[targets[i]])
			slots[i].done = true
		}(i)
	}
	wg.Wait()

	var issues []Issue
	for i := range targets {
		if slots[i].done {
			issues = append(issues, slots[i].issues...)
		}
	}
	return issues
}

// diagnoseTarget runs every loaded binding for one target, in declared order,
// each inside the isolation boundary.
func (d *IssueDiagnoser) diagnoseTarget(ctx context.Context, targetID string, records []HealthRecord) []Issue {
	var issues []Issue

	for _, binding := range d.bindings[targetID] {
		callCtx, cancel := d.opts.callContext(ctx)

		reports, err := safeCall(d.logger, binding.pluginName, func() ([]IssueReport, error) {
			return binding.plugin.Diagnose(callCtx, records, binding.config)
		})
		cancel()

		timestamp := timecache.CachedTime()

		if err != nil {
			d.logger.Warn("Diagnosis failed",
				"target", targetID,
				"plugin", binding.pluginName,
				"error", NewPluginExecutionFailedError(binding.pluginName, err))

			issues = append(issues, Issue{
				TargetID:    targetID,
				Type:        IssueTypeDiagnosticError,
				Severity:    SeverityError,
				Details:     fmt.Sprintf("Exception in plugin %s: %v", binding.pluginName, err),
				DiagnosedBy: binding.pluginName,
				Timestamp:   timestamp,
			})
			continue
		}

		for _, report := range reports {
			issues = append(issues, Issue{
				TargetID:    targetID,
				Type:        report.Type,
				Severity:    report.Severity,
				Details:     report.Details,
				DiagnosedBy: binding.pluginName,
				Timestamp:   timestamp,
				Fields:      report.Fields,
			})
		}
	}

	return issues
}
