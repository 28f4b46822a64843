// plugin.go: Capability interfaces for the three pipeline stages
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"
)

// MonitoringPlugin observes the health of a target.
//
// CheckHealth is assumed to perform I/O; it must be callable repeatedly and
// concurrently. A single instance may serve multiple targets within the same
// cycle, so implementations are responsible for their own internal
// thread-safety. Context should be honored for timeouts and cancellation.
type MonitoringPlugin interface {
	// Name returns the plugin's registered name
	Name() string

	// CheckHealth performs one health check against a target using the
	// binding's opaque configuration
	CheckHealth(ctx context.Context, config map[string]any) (HealthReport, error)
}

// DiagnosticPlugin classifies problems from observed health data.
//
// Diagnose receives all of a target's HealthRecords for the current cycle,
// not one at a time, to allow cross-monitor correlation. Returning an empty
// slice means "nothing wrong that this plugin can see".
type DiagnosticPlugin interface {
	// Name returns the plugin's registered name
	Name() string

	// Diagnose inspects one target's health records and reports any issues
	Diagnose(ctx context.Context, records []HealthRecord, config map[string]any) ([]IssueReport, error)
}

// RecoveryPlugin attempts automated remediation of a diagnosed issue.
//
// CanRecover must be cheap and side-effect-free; it is the applicability
// gate. AttemptRecovery is never called unless CanRecover just returned true
// for that issue.
type RecoveryPlugin interface {
	// Name returns the plugin's registered name
	Name() string

	// CanRecover reports whether this plugin knows how to handle the issue
	CanRecover(issue Issue) bool

	// AttemptRecovery performs the remediation action
	AttemptRecovery(ctx context.Context, issue Issue, config map[string]any) (RecoveryReport, error)
}
