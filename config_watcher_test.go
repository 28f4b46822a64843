// config_watcher_test.go: Tests for configuration hot reload
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agilira/argus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watcherConfigV1 = `
targets:
  app_server:
    enabled: true
    monitor:
      plugin: cpu-check
`

const watcherConfigV2 = `
targets:
  app_server:
    enabled: true
    monitor:
      plugin: cpu-check
  db_server:
    enabled: true
    monitor:
      plugin: cpu-check
`

func newWatcherFixture(t *testing.T) (*PipelineWatcher, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watcherConfigV1), 0o600))

	resolver := newTestResolver(map[string]any{
		"cpu-check": &fakeMonitor{name: "cpu-check", report: HealthReport{Status: StatusOK}},
	})

	pw := NewPipelineWatcher(path, resolver, PipelineWatcherOptions{
		PollInterval: 10 * time.Millisecond,
		Pipeline:     PipelineOptions{Logger: NewTestLogger()},
	})
	return pw, path
}

func TestPipelineWatcher_StartLoadsInitialPipeline(t *testing.T) {
	pw, _ := newWatcherFixture(t)

	require.Nil(t, pw.Current(), "no pipeline before Start")
	require.NoError(t, pw.Start())
	defer func() { _ = pw.Stop() }()

	pipeline := pw.Current()
	require.NotNil(t, pipeline)
	assert.Equal(t, 1, pipeline.Registry().Len())
	assert.Equal(t, []string{"app_server"}, pipeline.Registry().TargetIDs())
}

func TestPipelineWatcher_DoubleStartRejected(t *testing.T) {
	pw, _ := newWatcherFixture(t)

	require.NoError(t, pw.Start())
	defer func() { _ = pw.Stop() }()

	assert.Error(t, pw.Start())
}

func TestPipelineWatcher_StartFailsOnMissingConfig(t *testing.T) {
	resolver := NewPluginResolver()
	pw := NewPipelineWatcher(filepath.Join(t.TempDir(), "absent.yaml"), resolver, PipelineWatcherOptions{})

	assert.Error(t, pw.Start())
	assert.Nil(t, pw.Current())
}

func TestPipelineWatcher_ReloadSwapsPipeline(t *testing.T) {
	pw, path := newWatcherFixture(t)

	require.NoError(t, pw.Start())
	defer func() { _ = pw.Stop() }()

	before := pw.Current()
	require.NoError(t, os.WriteFile(path, []byte(watcherConfigV2), 0o600))

	// Drive the change handler directly instead of waiting on poll timing.
	pw.handleChange(argus.ChangeEvent{Path: path, IsModify: true})

	after := pw.Current()
	require.NotNil(t, after)
	assert.NotSame(t, before, after)
	assert.Equal(t, []string{"app_server", "db_server"}, after.Registry().TargetIDs())
}

func TestPipelineWatcher_InvalidReloadKeepsCurrentPipeline(t *testing.T) {
	pw, path := newWatcherFixture(t)

	require.NoError(t, pw.Start())
	defer func() { _ = pw.Stop() }()

	before := pw.Current()
	require.NoError(t, os.WriteFile(path, []byte("targets: {}"), 0o600))

	pw.handleChange(argus.ChangeEvent{Path: path, IsModify: true})

	assert.Same(t, before, pw.Current(), "invalid configuration must not replace the pipeline")
}

func TestPipelineWatcher_DeleteEventKeepsCurrentPipeline(t *testing.T) {
	pw, path := newWatcherFixture(t)

	require.NoError(t, pw.Start())
	defer func() { _ = pw.Stop() }()

	before := pw.Current()
	pw.handleChange(argus.ChangeEvent{Path: path, IsDelete: true})

	assert.Same(t, before, pw.Current())
}

func TestPipelineWatcher_StopIsIdempotent(t *testing.T) {
	pw, _ := newWatcherFixture(t)

	require.NoError(t, pw.Start())
	require.NoError(t, pw.Stop())
	require.NoError(t, pw.Stop())

	// The last good pipeline stays available after Stop.
	assert.NotNil(t, pw.Current())
}
