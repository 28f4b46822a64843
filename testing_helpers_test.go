// testing_helpers_test.go: Shared fake plugins and builders for pipeline tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// fakeMonitor is a scriptable MonitoringPlugin.
type fakeMonitor struct {
	name     string
	report   HealthReport
	err      error
	panicMsg string
	delay    time.Duration
	calls    atomic.Int64

	mu          sync.Mutex
	seenConfigs []map[string]any
}

func (f *fakeMonitor) Name() string { return f.name }

func (f *fakeMonitor) CheckHealth(ctx context.Context, config map[string]any) (HealthReport, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seenConfigs = append(f.seenConfigs, config)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return HealthReport{}, ctx.Err()
		}
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return HealthReport{}, f.err
	}
	return f.report, nil
}

// fakeDiagnoser is a scriptable DiagnosticPlugin.
type fakeDiagnoser struct {
	name     string
	reports  []IssueReport
	err      error
	panicMsg string
	calls    atomic.Int64

	mu          sync.Mutex
	seenRecords [][]HealthRecord
}

func (f *fakeDiagnoser) Name() string { return f.name }

func (f *fakeDiagnoser) Diagnose(ctx context.Context, records []HealthRecord, config map[string]any) ([]IssueReport, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seenRecords = append(f.seenRecords, records)
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.reports, nil
}

// fakeRecoverer is a scriptable RecoveryPlugin.
type fakeRecoverer struct {
	name       string
	applicable bool
	report     RecoveryReport
	err        error
	panicMsg   string
	gatePanic  string
	canCalls   atomic.Int64
	attempts   atomic.Int64

	mu         sync.Mutex
	seenIssues []Issue
}

func (f *fakeRecoverer) Name() string { return f.name }

func (f *fakeRecoverer) CanRecover(issue Issue) bool {
	f.canCalls.Add(1)
	if f.gatePanic != "" {
		panic(f.gatePanic)
	}
	return f.applicable
}

func (f *fakeRecoverer) AttemptRecovery(ctx context.Context, issue Issue, config map[string]any) (RecoveryReport, error) {
	f.attempts.Add(1)
	f.mu.Lock()
	f.seenIssues = append(f.seenIssues, issue)
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return RecoveryReport{}, f.err
	}
	return f.report, nil
}

// captureSink records every delivered cycle report.
type captureSink struct {
	mu      sync.Mutex
	reports []CycleReport
	err     error
}

func (s *captureSink) Deliver(ctx context.Context, report CycleReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.err
}

func (s *captureSink) delivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// newTestResolver registers the given instances under DefaultNamespace,
// keyed by their names. Factories hand back the same instance so tests can
// inspect call counters afterwards.
func newTestResolver(plugins map[string]any) *PluginResolver {
	resolver := NewPluginResolver()
	for name, instance := range plugins {
		instance := instance
		resolver.MustRegister(DefaultNamespace, name, func() (any, error) {
			return instance, nil
		})
	}
	return resolver
}

// monitoredTarget builds an enabled target with a single monitor binding.
func monitoredTarget(plugin string, config map[string]any) TargetConfig {
	return TargetConfig{
		Enabled: true,
		Monitor: &BindingConfig{Plugin: plugin, Config: config},
	}
}

// sequentialOpts makes stage output fully deterministic for assertions.
func sequentialOpts() ManagerOptions {
	return ManagerOptions{
		Logger:         NewTestLogger(),
		MaxConcurrency: 1,
		CallTimeout:    5 * time.Second,
	}
}

var errBoom = errors.New("boom")
