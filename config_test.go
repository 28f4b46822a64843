// config_test.go: Tests for configuration loading and validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAMLConfig = `
targets:
  web_frontend:
    enabled: true
    monitor:
      plugin: http-check
      config:
        url: "https://example.com/healthz"
        timeout_seconds: 5
    diagnostics:
      - plugin: status-classifier
        config:
          error_threshold: 3
      - plugin: latency-classifier
    recovery:
      - plugin: restart-service
        config:
          unit: "frontend.service"
      - plugin: failover
  batch_worker:
    enabled: false
    monitor:
      plugin: process-check
`

const sampleJSONConfig = `{
  "targets": {
    "web_frontend": {
      "enabled": true,
      "monitor": {"plugin": "http-check", "config": {"url": "https://example.com"}},
      "diagnostics": [{"plugin": "status-classifier"}],
      "recovery": [{"plugin": "restart-service"}]
    }
  }
}`

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPipelineConfig_YAML(t *testing.T) {
	path := writeConfigFile(t, "targets.yaml", sampleYAMLConfig)

	config, err := LoadPipelineConfig(path)
	require.NoError(t, err)
	require.Len(t, config.Targets, 2)

	web := config.Targets["web_frontend"]
	assert.True(t, web.Enabled)
	require.NotNil(t, web.Monitor)
	assert.Equal(t, "http-check", web.Monitor.Plugin)
	assert.Equal(t, "https://example.com/healthz", web.Monitor.Config["url"])

	require.Len(t, web.Diagnostics, 2)
	assert.Equal(t, "status-classifier", web.Diagnostics[0].Plugin)
	assert.Equal(t, "latency-classifier", web.Diagnostics[1].Plugin)

	require.Len(t, web.Recovery, 2)
	assert.Equal(t, "restart-service", web.Recovery[0].Plugin)
	assert.Equal(t, "frontend.service", web.Recovery[0].Config["unit"])

	worker := config.Targets["batch_worker"]
	assert.False(t, worker.Enabled)
}

func TestLoadPipelineConfig_JSON(t *testing.T) {
	path := writeConfigFile(t, "targets.json", sampleJSONConfig)

	config, err := LoadPipelineConfig(path)
	require.NoError(t, err)
	require.Contains(t, config.Targets, "web_frontend")
	assert.Equal(t, "http-check", config.Targets["web_frontend"].Monitor.Plugin)
}

func TestLoadPipelineConfig_MissingFile(t *testing.T) {
	_, err := LoadPipelineConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPipelineConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "broken.yaml", "targets: [not: a: map")
	_, err := LoadPipelineConfig(path)
	assert.Error(t, err)
}

func TestPipelineConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PipelineConfig
		wantErr bool
	}{
		{
			name:    "no targets",
			config:  PipelineConfig{},
			wantErr: true,
		},
		{
			name: "valid minimal target",
			config: PipelineConfig{Targets: map[string]TargetConfig{
				"t": {Enabled: true},
			}},
			wantErr: false,
		},
		{
			name: "empty target id",
			config: PipelineConfig{Targets: map[string]TargetConfig{
				"": {Enabled: true},
			}},
			wantErr: true,
		},
		{
			name: "monitor binding without plugin",
			config: PipelineConfig{Targets: map[string]TargetConfig{
				"t": {Enabled: true, Monitor: &BindingConfig{}},
			}},
			wantErr: true,
		},
		{
			name: "diagnostic binding without plugin",
			config: PipelineConfig{Targets: map[string]TargetConfig{
				"t": {Enabled: true, Diagnostics: []BindingConfig{{}}},
			}},
			wantErr: true,
		},
		{
			name: "recovery binding without plugin",
			config: PipelineConfig{Targets: map[string]TargetConfig{
				"t": {Enabled: true, Recovery: []BindingConfig{{}}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBindingConfig_NamespaceDefaulting(t *testing.T) {
	assert.Equal(t, DefaultNamespace, BindingConfig{Plugin: "x"}.ResolveNamespace())
	assert.Equal(t, "custom.ns", BindingConfig{Plugin: "x", Namespace: "custom.ns"}.ResolveNamespace())
}
