// types.go: Common data types and structures for the remediation pipeline
//
// This file contains the shared record types that flow through the three
// pipeline stages. Records produced by one stage are consumed by the next;
// every stamped record carries the enrichment envelope (target ID, producing
// plugin name, timestamp) added by its stage manager, plus whatever opaque
// fields the plugin itself reported.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"time"
)

// Fields carries plugin-defined data that the pipeline passes through untouched.
//
// Plugins may attach arbitrary context to their reports (raw measurements,
// process IDs, upstream error codes). The stage managers never interpret
// these values; they only copy them into the enriched record.
type Fields map[string]any

// Well-known status and severity values used across the pipeline.
//
// Plugins are free to report their own status vocabulary; these constants
// cover the values the pipeline itself produces or reacts to. A status or
// severity of "error" on a synthesized record is the sole signal that a
// plugin misbehaved - the record shape is otherwise identical to a success.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSuccess = "success"

	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// IssueTypeDiagnosticError is the issue type synthesized when a diagnostic
// plugin fails during a Diagnose call.
const IssueTypeDiagnosticError = "DIAGNOSTIC_ERROR"

// Stable message contracts for synthesized error records.
//
// These strings are deliberately generic: downstream diagnosis and alerting
// stay deterministic regardless of which error a given plugin produced.
// Changing them is a breaking change for consumers that match on them.
const (
	// monitorErrDetails is stamped on a synthesized HealthRecord when a
	// monitoring plugin fails. The raw plugin error is logged, never recorded.
	monitorErrDetails = "Exception occurred during CheckHealth call."
)

// HealthReport is what a MonitoringPlugin returns from a CheckHealth call.
//
// The ServiceMonitor wraps it into a HealthRecord, stamping the enrichment
// envelope. Plugins report only what they observed.
type HealthReport struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
	Fields  Fields `json:"fields,omitempty"`
}

// HealthRecord is an enriched health observation for a single target,
// produced by the Monitor stage and consumed by the Diagnose stage.
//
// Records are immutable once emitted. Timestamp reflects the manager's call
// time, not any plugin-reported time.
type HealthRecord struct {
	TargetID    string    `json:"target_id"`
	MonitorName string    `json:"monitor_name"`
	Status      string    `json:"status"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Fields      Fields    `json:"fields,omitempty"`
}

// IssueReport is what a DiagnosticPlugin returns from a Diagnose call,
// before enrichment.
type IssueReport struct {
	Type     string `json:"issue_type"`
	Severity string `json:"severity"`
	Details  string `json:"details,omitempty"`
	Fields   Fields `json:"fields,omitempty"`
}

// Issue is an enriched problem classification produced by the Diagnose stage
// and consumed by the Recover stage.
type Issue struct {
	TargetID    string    `json:"target_id"`
	Type        string    `json:"issue_type"`
	Severity    string    `json:"severity"`
	Details     string    `json:"details,omitempty"`
	DiagnosedBy string    `json:"diagnosed_by"`
	Timestamp   time.Time `json:"timestamp"`
	Fields      Fields    `json:"fields,omitempty"`
}

// RecoveryReport is what a RecoveryPlugin returns from an AttemptRecovery
// call, before enrichment.
type RecoveryReport struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
	Fields  Fields `json:"fields,omitempty"`
}

// RecoveryOutcome is the terminal record of a remediation attempt.
//
// ErrorMessage is populated only on synthesized error outcomes; success
// outcomes and plugin-reported failures leave it empty and use Details.
type RecoveryOutcome struct {
	TargetID     string    `json:"target_id"`
	RecoveredBy  string    `json:"recovered_by"`
	Status       string    `json:"status"`
	Details      string    `json:"details,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Fields       Fields    `json:"fields,omitempty"`
}

// CycleReport aggregates everything one Monitor -> Diagnose -> Recover pass
// produced, suitable for logging or forwarding to an external alert sink.
type CycleReport struct {
	Checks      map[string][]HealthRecord `json:"checks"`
	Issues      []Issue                   `json:"issues"`
	Outcomes    []RecoveryOutcome         `json:"outcomes"`
	StartedAt   time.Time                 `json:"started_at"`
	CompletedAt time.Time                 `json:"completed_at"`
}
