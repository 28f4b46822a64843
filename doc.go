// Package goremedy provides a configuration-driven Monitor -> Diagnose -> Recover
// pipeline for watching named targets (services, hosts, processes), classifying
// problems from observed data, and attempting automated remediation.
//
// The pipeline is built from three independent stage managers, each driven by
// per-target plugin bindings declared in configuration:
//   - ServiceMonitor executes monitoring plugins and emits enriched HealthRecords
//   - IssueDiagnoser feeds each target's records to diagnostic plugins and emits Issues
//   - RecoveryManager offers Issues to recovery plugins and emits RecoveryOutcomes
//
// Key Features:
//   - Explicit plugin registry with namespace support (unknown name = non-fatal skip)
//   - Per-plugin fault isolation: neither errors nor panics escape a stage manager
//   - Enrichment envelope stamped on every record (target, plugin name, timestamp)
//   - Synthesized error records share the exact shape of success records
//   - Bounded per-target concurrency with per-call timeouts and cancellation
//   - Configurable recovery escalation with optional circuit breaking
//   - Hot-reloading of pipeline configuration
//
// Basic Usage:
//
//	resolver := goremedy.NewPluginResolver()
//	resolver.MustRegister(goremedy.DefaultNamespace, "http-check", func() (any, error) {
//	    return &HTTPCheckMonitor{}, nil
//	})
//
//	cfg, err := goremedy.LoadPipelineConfig("targets.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline, err := goremedy.NewPipeline(cfg, resolver, goremedy.PipelineOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := pipeline.RunCycle(ctx)
//
// Fault Containment:
// A misbehaving plugin can never abort a cycle. Load failures mark the binding
// as absent; execution failures (including panics) are converted into error-shaped
// records carrying a stable message, so downstream alerting needs no special cases.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package goremedy
