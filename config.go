// config.go: Pipeline configuration contract, loading, and validation
//
// The configuration maps target IDs to their per-stage plugin bindings.
// Binding config payloads are opaque to the pipeline: they are decoded into
// plain maps and handed to plugins untouched.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"encoding/json"
	"os"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// BindingConfig attaches one plugin to a target for one pipeline stage.
//
// Namespace is optional and defaults to DefaultNamespace, so existing
// configurations keep working if additional namespaces are introduced later.
type BindingConfig struct {
	Plugin    string         `json:"plugin" yaml:"plugin"`
	Namespace string         `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Config    map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ResolveNamespace returns the binding's namespace, falling back to
// DefaultNamespace when unset.
func (b BindingConfig) ResolveNamespace() string {
	if b.Namespace == "" {
		return DefaultNamespace
	}
	return b.Namespace
}

// TargetConfig declares how one target is monitored, diagnosed, and recovered.
//
// Diagnostics and Recovery are ordered lists; the order is the iteration
// order the stage managers honor, and for recovery it is the escalation
// ladder (cheap fixes first).
type TargetConfig struct {
	Enabled     bool            `json:"enabled" yaml:"enabled"`
	Monitor     *BindingConfig  `json:"monitor,omitempty" yaml:"monitor,omitempty"`
	Diagnostics []BindingConfig `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Recovery    []BindingConfig `json:"recovery,omitempty" yaml:"recovery,omitempty"`
}

// PipelineConfig is the root configuration consumed by NewPipeline.
type PipelineConfig struct {
	Targets map[string]TargetConfig `json:"targets" yaml:"targets"`
}

// Validate checks structural consistency of the configuration.
//
// Only genuinely broken declarations fail validation. A target without
// diagnostics or recovery bindings is legal ("nothing to do" for those
// stages), and plugin names are not checked against the resolver here:
// an unresolvable plugin is a non-fatal load-time skip, not a config error.
func (c *PipelineConfig) Validate() error {
	if len(c.Targets) == 0 {
		return NewNoTargetsConfiguredError()
	}

	for targetID, target := range c.Targets {
		if targetID == "" {
			return NewConfigValidationError("target ID cannot be empty", nil)
		}
		if target.Monitor != nil && target.Monitor.Plugin == "" {
			return NewConfigValidationError("monitor binding for target "+targetID+" has no plugin name", nil)
		}
		for i, binding := range target.Diagnostics {
			if binding.Plugin == "" {
				return NewConfigValidationError("diagnostic binding for target "+targetID+" has no plugin name", nil).
					WithContext("binding_index", i)
			}
		}
		for i, binding := range target.Recovery {
			if binding.Plugin == "" {
				return NewConfigValidationError("recovery binding for target "+targetID+" has no plugin name", nil).
					WithContext("binding_index", i)
			}
		}
	}

	return nil
}

// LoadPipelineConfig reads and validates a pipeline configuration file.
//
// The format is auto-detected from the file extension: JSON via
// encoding/json, YAML via gopkg.in/yaml.v3 (full YAML spec support).
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigNotFoundError(path, err)
	}

	config, err := ParsePipelineConfig(path, data)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// ParsePipelineConfig parses configuration bytes using the format detected
// from the path, then validates the result.
func ParsePipelineConfig(path string, data []byte) (*PipelineConfig, error) {
	var config PipelineConfig

	switch argus.DetectFormat(path) {
	case argus.FormatJSON:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, NewConfigParseError(path, err)
		}
	case argus.FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, NewConfigParseError(path, err)
		}
	default:
		return nil, NewUnsupportedFormatError(path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
