// monitor.go: Monitor stage - executes health checks across configured targets
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"
	"sync"

	"github.com/agilira/go-timecache"
)

// ServiceMonitor loads monitoring plugins for every enabled target and
// executes their health checks inside an isolating boundary.
//
// Construction resolves and instantiates the bound monitor plugin for every
// enabled target, caching one instance per unique namespace/name pair.
// Disabled targets and unresolvable plugins are skipped and logged; they
// never block other targets. The plugin cache is populated once at
// construction and read-only thereafter, safe to share across concurrent
// invocations within a cycle.
type ServiceMonitor struct {
	plugins  map[string]MonitoringPlugin
	bindings []monitorBinding
	opts     ManagerOptions
	logger   Logger
	stats    MonitorStats
}

// monitorBinding is one ready-to-run target/plugin pair. Only targets whose
// plugin loaded successfully get a binding.
type monitorBinding struct {
	targetID   string
	pluginName string
	plugin     MonitoringPlugin
	config     map[string]any
}

// MonitorStats reports construction-time outcomes for operational visibility.
//
// Targets configured with an unresolvable monitor plugin are absent from
// RunAllChecks output; LoadFailures is where that misconfiguration shows up.
type MonitorStats struct {
	ConfiguredTargets int `json:"configured_targets"`
	ActiveTargets     int `json:"active_targets"`
	DisabledTargets   int `json:"disabled_targets"`
	LoadFailures      int `json:"load_failures"`
	PluginsCached     int `json:"plugins_cached"`
}

// NewServiceMonitor builds the Monitor stage from the target registry.
//
// Construction never fails: every load problem is logged and the affected
// target is simply left unmonitored.
func NewServiceMonitor(registry *TargetRegistry, resolver *PluginResolver, opts ManagerOptions) *ServiceMonitor {
	opts = opts.withDefaults()

	sm := &ServiceMonitor{
		plugins: make(map[string]MonitoringPlugin),
		opts:    opts,
		logger:  opts.Logger,
	}

	for _, targetID := range registry.TargetIDs() {
		target, _ := registry.Get(targetID)
		sm.stats.ConfiguredTargets++

		if !target.Enabled {
			sm.stats.DisabledTargets++
			sm.logger.Debug("Skipping disabled target", "target", targetID)
			continue
		}
		if target.Monitor == nil {
			sm.logger.Debug("Target has no monitor binding", "target", targetID)
			continue
		}

		binding := *target.Monitor
		key := bindingCacheKey(binding.ResolveNamespace(), binding.Plugin)

		plugin, ok := sm.plugins[key]
		if !ok {
			var err error
			plugin, err = resolver.ResolveMonitoring(binding.ResolveNamespace(), binding.Plugin)
			if err != nil {
				sm.stats.LoadFailures++
				sm.logger.Warn("Monitor plugin unavailable for target",
					"target", targetID,
					"plugin", binding.Plugin,
					"error", err)
				continue
			}
			sm.plugins[key] = plugin
		}

		sm.bindings = append(sm.bindings, monitorBinding{
			targetID:   targetID,
			pluginName: binding.Plugin,
			plugin:     plugin,
			config:     binding.Config,
		})
		sm.stats.ActiveTargets++
	}
	sm.stats.PluginsCached = len(sm.plugins)

	return sm
}

// Stats returns construction-time statistics.
func (sm *ServiceMonitor) Stats() MonitorStats {
	return sm.stats
}

// RunAllChecks executes one monitoring pass over all active targets.
//
// Each target's CheckHealth call runs inside the isolation boundary with its
// own timeout. A successful call yields one enriched HealthRecord; a failing
// or panicking plugin yields a synthesized record with status "error" and a
// stable generic message, never the raw failure text. Targets with no loaded
// plugin are omitted from the result entirely: absence means "not monitored",
// not "monitored, zero findings".
//
// Cancelling ctx aborts the pass mid-flight; results for targets that already
// completed are still returned.
func (sm *ServiceMonitor) RunAllChecks(ctx context.Context) map[string][]HealthRecord {
	results := make(map[string][]HealthRecord, len(sm.bindings))
	if len(sm.bindings) == 0 {
		return results
	}

	slots := make([]struct {
		records []HealthRecord
		done    bool
	}, len(sm.bindings))

	sem := make(chan struct{}, sm.opts.MaxConcurrency)
	var wg sync.WaitGroup

launch:
	for i := range sm.bindings {
		select {
		case <-ctx.Done():
			sm.logger.Warn("Monitoring pass cancelled",
				"completed_targets", i,
				"total_targets", len(sm.bindings))
			break launch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			slots[i].records = sm.checkTarget(ctx, sm.bindings[i])
			slots[i].done = true
		}(i)
	}
	wg.Wait()

	// Assemble in binding order so output is deterministic.
	for i, binding := range sm.bindings {
		if slots[i].done {
			results[binding.targetID] = slots[i].records
		}
	}

	return results
}

// checkTarget runs one isolated health check and wraps the outcome into the
// enrichment envelope.
func (sm *ServiceMonitor) checkTarget(ctx context.Context, binding monitorBinding) []HealthRecord {
	callCtx, cancel := sm.opts.callContext(ctx)
	defer cancel()

	report, err := safeCall(sm.logger, binding.pluginName, func() (HealthReport, error) {
		return binding.plugin.CheckHealth(callCtx, binding.config)
	})

	record := HealthRecord{
		TargetID:    binding.targetID,
		MonitorName: binding.pluginName,
		Timestamp:   timecache.CachedTime(),
	}

	if err != nil {
		sm.logger.Warn("Health check failed",
			"target", binding.targetID,
			"plugin", binding.pluginName,
			"error", NewPluginExecutionFailedError(binding.pluginName, err))

		record.Status = StatusError
		record.Details = monitorErrDetails
		return []HealthRecord{record}
	}

	record.Status = report.Status
	record.Details = report.Details
	record.Fields = report.Fields
	return []HealthRecord{record}
}
