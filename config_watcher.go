// config_watcher.go: Hot reload of pipeline configuration via Argus
//
// The watcher observes the pipeline configuration file and, on every valid
// change, builds a fresh Pipeline and swaps it in atomically. Cycles already
// running against the previous pipeline finish undisturbed; the next
// Current() call sees the new one. An invalid new configuration is logged
// and the previous pipeline stays active.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// PipelineWatcherOptions configures the configuration watcher.
type PipelineWatcherOptions struct {
	// PollInterval is how often Argus checks the file for changes.
	// Zero selects one second.
	PollInterval time.Duration

	// CacheTTL is the Argus stat-cache TTL. Zero lets Argus choose.
	CacheTTL time.Duration

	// Pipeline carries the options every rebuilt pipeline is constructed
	// with.
	Pipeline PipelineOptions
}

// PipelineWatcher keeps a Pipeline in sync with its configuration file.
type PipelineWatcher struct {
	configPath string
	resolver   *PluginResolver
	options    PipelineWatcherOptions
	logger     Logger

	watcher *argus.Watcher
	current atomic.Pointer[Pipeline]

	mu      sync.Mutex
	running bool
}

// NewPipelineWatcher creates a watcher for the given configuration file.
//
// Nothing is loaded until Start is called.
func NewPipelineWatcher(configPath string, resolver *PluginResolver, options PipelineWatcherOptions) *PipelineWatcher {
	if options.PollInterval <= 0 {
		options.PollInterval = time.Second
	}

	return &PipelineWatcher{
		configPath: configPath,
		resolver:   resolver,
		options:    options,
		logger:     NewLogger(options.Pipeline.Logger),
	}
}

// Start loads the initial configuration, builds the first pipeline, and
// begins watching the file for changes.
//
// Returns an error when the initial configuration cannot be loaded or the
// file watcher cannot be started; later reload failures only log.
func (pw *PipelineWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return NewConfigWatcherError("pipeline watcher is already running", nil)
	}

	pipeline, err := pw.buildPipeline()
	if err != nil {
		return err
	}
	pw.current.Store(pipeline)

	watcher := argus.New(argus.Config{
		PollInterval:         pw.options.PollInterval,
		CacheTTL:             pw.options.CacheTTL,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filepath string) {
			pw.logger.Error("Configuration file watching error", "error", err, "file", filepath)
		},
	})

	if err := watcher.Watch(pw.configPath, pw.handleChange); err != nil {
		return NewConfigWatcherError("failed to watch configuration file", err)
	}
	if err := watcher.Start(); err != nil {
		return NewConfigWatcherError("failed to start configuration watcher", err)
	}

	pw.watcher = watcher
	pw.running = true
	pw.logger.Info("Pipeline watcher started", "config_path", pw.configPath)
	return nil
}

// Stop halts configuration watching. The current pipeline stays available.
func (pw *PipelineWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	if err := pw.watcher.Stop(); err != nil {
		return NewConfigWatcherError("failed to stop configuration watcher", err)
	}

	pw.running = false
	pw.logger.Info("Pipeline watcher stopped", "config_path", pw.configPath)
	return nil
}

// Current returns the pipeline built from the most recent valid
// configuration. Returns nil before a successful Start.
func (pw *PipelineWatcher) Current() *Pipeline {
	return pw.current.Load()
}

// handleChange processes configuration file change events from Argus.
func (pw *PipelineWatcher) handleChange(event argus.ChangeEvent) {
	pw.logger.Info("Configuration file change detected",
		"path", event.Path,
		"is_create", event.IsCreate,
		"is_delete", event.IsDelete,
		"is_modify", event.IsModify)

	// Cannot reload from a deleted file; keep the running pipeline.
	if event.IsDelete {
		pw.logger.Warn("Configuration file was deleted, keeping current pipeline", "path", event.Path)
		return
	}

	pipeline, err := pw.buildPipeline()
	if err != nil {
		pw.logger.Error("Configuration reload failed, keeping current pipeline",
			"path", event.Path,
			"error", err)
		return
	}

	pw.current.Store(pipeline)
	pw.logger.Info("Pipeline reloaded",
		"path", event.Path,
		"targets", pipeline.Registry().Len())
}

// buildPipeline loads the configuration file and constructs a pipeline from it.
func (pw *PipelineWatcher) buildPipeline() (*Pipeline, error) {
	config, err := LoadPipelineConfig(pw.configPath)
	if err != nil {
		return nil, err
	}
	return NewPipeline(config, pw.resolver, pw.options.Pipeline)
}
