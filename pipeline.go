// pipeline.go: Cycle orchestrator wiring the three stage managers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"

	"github.com/agilira/go-timecache"
)

// AlertSink receives the report of each completed cycle.
//
// Delivery transport (webhooks, queues, pagers) is outside the pipeline's
// scope; implementations own their own retry and batching behavior. A sink
// error is logged and does not fail the cycle.
type AlertSink interface {
	// Deliver forwards one cycle report downstream
	Deliver(ctx context.Context, report CycleReport) error
}

// PipelineOptions configures a Pipeline and its stage managers.
type PipelineOptions struct {
	// Logger receives pipeline and stage manager events. Accepts a Logger
	// implementation or nil (silent).
	Logger Logger

	// Monitor, Diagnoser tune the first two stage managers. The Logger
	// above is used when a stage's own Logger is nil.
	Monitor   ManagerOptions
	Diagnoser ManagerOptions

	// Recovery tunes the Recover stage, including escalation policy and
	// the optional remediation breaker.
	Recovery RecoveryOptions

	// Sink, when set, receives every cycle's report.
	Sink AlertSink
}

// Pipeline wires the Monitor -> Diagnose -> Recover stages over one shared
// target registry.
//
// A Pipeline is immutable after construction; to follow configuration
// changes, build a new one (see PipelineWatcher) and swap.
type Pipeline struct {
	registry  *TargetRegistry
	monitor   *ServiceMonitor
	diagnoser *IssueDiagnoser
	recovery  *RecoveryManager
	sink      AlertSink
	logger    Logger
}

// NewPipeline validates the configuration, builds the target registry, and
// constructs the three stage managers.
//
// Plugin load failures inside the stages are not construction errors; only
// an invalid configuration fails here.
func NewPipeline(config *PipelineConfig, resolver *PluginResolver, opts PipelineOptions) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := NewLogger(opts.Logger)
	if opts.Monitor.Logger == nil {
		opts.Monitor.Logger = logger
	}
	if opts.Diagnoser.Logger == nil {
		opts.Diagnoser.Logger = logger
	}
	if opts.Recovery.Logger == nil {
		opts.Recovery.Logger = logger
	}

	registry := NewTargetRegistry(config)

	p := &Pipeline{
		registry:  registry,
		monitor:   NewServiceMonitor(registry, resolver, opts.Monitor),
		diagnoser: NewIssueDiagnoser(registry, resolver, opts.Diagnoser),
		recovery:  NewRecoveryManager(registry, resolver, opts.Recovery),
		sink:      opts.Sink,
		logger:    logger,
	}

	p.logger.Info("Pipeline constructed",
		"targets", registry.Len(),
		"active_monitors", p.monitor.Stats().ActiveTargets,
		"diagnostic_bindings", p.diagnoser.Stats().ActiveBindings,
		"recovery_bindings", p.recovery.Stats().ActiveBindings)

	return p, nil
}

// Monitor returns the Monitor stage manager.
func (p *Pipeline) Monitor() *ServiceMonitor { return p.monitor }

// Diagnoser returns the Diagnose stage manager.
func (p *Pipeline) Diagnoser() *IssueDiagnoser { return p.diagnoser }

// Recovery returns the Recover stage manager.
func (p *Pipeline) Recovery() *RecoveryManager { return p.recovery }

// Registry returns the shared read-only target registry.
func (p *Pipeline) Registry() *TargetRegistry { return p.registry }

// RunCycle executes one full Monitor -> Diagnose -> Recover pass.
//
// The stage managers guarantee that no plugin misbehavior propagates; the
// returned error is non-nil only when ctx was cancelled mid-cycle, and even
// then the report carries everything the completed stages produced. For a
// given target, all of its health records are collected before its diagnosis
// runs; that ordering falls out of the stage sequencing.
func (p *Pipeline) RunCycle(ctx context.Context) (CycleReport, error) {
	report := CycleReport{StartedAt: timecache.CachedTime()}

	report.Checks = p.monitor.RunAllChecks(ctx)
	report.Issues = p.diagnoser.RunDiagnostics(ctx, report.Checks)
	report.Outcomes = p.recovery.AttemptAllRecoveries(ctx, report.Issues)
	report.CompletedAt = timecache.CachedTime()

	p.logger.Info("Cycle completed",
		"monitored_targets", len(report.Checks),
		"issues", len(report.Issues),
		"outcomes", len(report.Outcomes),
		"duration", report.CompletedAt.Sub(report.StartedAt))

	if p.sink != nil {
		if err := p.sink.Deliver(ctx, report); err != nil {
			p.logger.Warn("Alert sink delivery failed", "error", NewSinkDeliveryError(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return report, NewPipelineCancelledError("cycle").WithContext("cause", err.Error())
	}
	return report, nil
}
