// errors.go: structured error definitions for the go-remedy pipeline
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for the go-remedy pipeline
const (
	// Plugin resolution errors (1000-1099)
	// These are the PluginLoadError family: a failing code here means the
	// binding is treated as absent, never that the pipeline crashes.
	ErrCodePluginNotRegistered  = "RESOLVER_1001"
	ErrCodeNamespaceNotFound    = "RESOLVER_1002"
	ErrCodePluginInstantiation  = "RESOLVER_1003"
	ErrCodeCapabilityMismatch   = "RESOLVER_1004"
	ErrCodeDuplicateFactory     = "RESOLVER_1005"
	ErrCodeInvalidFactory       = "RESOLVER_1006"
	ErrCodeDuplicateNamespace   = "RESOLVER_1007"
	ErrCodeInvalidPluginName    = "RESOLVER_1008"

	// Configuration errors (1100-1199)
	ErrCodeConfigNotFound       = "CONFIG_1101"
	ErrCodeConfigParseError     = "CONFIG_1102"
	ErrCodeConfigValidation     = "CONFIG_1103"
	ErrCodeConfigWatcherError   = "CONFIG_1104"
	ErrCodeNoTargetsConfigured  = "CONFIG_1105"
	ErrCodeUnsupportedFormat    = "CONFIG_1106"

	// Plugin execution errors (1200-1299)
	// Execution errors never escape a stage manager; these codes exist so
	// the isolation boundary can log and classify what it swallowed.
	ErrCodePluginExecutionFailed = "PLUGIN_1201"
	ErrCodePluginPanic           = "PLUGIN_1202"
	ErrCodePluginTimeout         = "PLUGIN_1203"

	// Pipeline errors (1300-1399)
	ErrCodePipelineCancelled = "PIPELINE_1301"
	ErrCodeSinkDelivery      = "PIPELINE_1302"
)

// Plugin resolution error constructors

func NewPluginNotRegisteredError(namespace, name string) *errors.Error {
	return errors.New(ErrCodePluginNotRegistered, "Plugin not registered").
		WithUserMessage("No factory is registered for the requested plugin name").
		WithContext("namespace", namespace).
		WithContext("plugin_name", name).
		WithSeverity("warning")
}

func NewNamespaceNotFoundError(namespace string) *errors.Error {
	return errors.New(ErrCodeNamespaceNotFound, "Plugin namespace not found").
		WithUserMessage("The requested plugin namespace does not exist").
		WithContext("namespace", namespace).
		WithSeverity("warning")
}

func NewPluginInstantiationError(namespace, name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodePluginInstantiation, "Plugin instantiation failed").
		WithUserMessage("The plugin factory returned an error").
		WithContext("namespace", namespace).
		WithContext("plugin_name", name).
		WithSeverity("warning")
}

func NewCapabilityMismatchError(name string, expected string) *errors.Error {
	return errors.New(ErrCodeCapabilityMismatch, "Plugin capability mismatch").
		WithUserMessage("The resolved plugin does not implement the required capability interface").
		WithContext("plugin_name", name).
		WithContext("expected_capability", expected).
		WithSeverity("warning")
}

func NewDuplicateFactoryError(namespace, name string) *errors.Error {
	return errors.New(ErrCodeDuplicateFactory, "Duplicate plugin factory").
		WithUserMessage("A factory is already registered under this name").
		WithContext("namespace", namespace).
		WithContext("plugin_name", name).
		WithSeverity("error")
}

func NewInvalidFactoryError(namespace, name string) *errors.Error {
	return errors.New(ErrCodeInvalidFactory, "Invalid plugin factory").
		WithUserMessage("Plugin factory must not be nil").
		WithContext("namespace", namespace).
		WithContext("plugin_name", name).
		WithSeverity("error")
}

func NewInvalidPluginNameError(name string) *errors.Error {
	return errors.New(ErrCodeInvalidPluginName, "Invalid plugin name").
		WithUserMessage("Plugin name is required and cannot be empty").
		WithContext("provided_name", name).
		WithSeverity("error")
}

// Configuration error constructors

func NewConfigNotFoundError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigNotFound, "Configuration file not found").
		WithUserMessage("The pipeline configuration file could not be read").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParseError, "Configuration parse error").
		WithUserMessage("Failed to parse pipeline configuration").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigValidationError(message string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeConfigValidation, "Configuration validation error: "+message).
			WithUserMessage("Pipeline configuration validation failed").
			WithSeverity("error")
	}
	return errors.New(ErrCodeConfigValidation, "Configuration validation error: "+message).
		WithUserMessage("Pipeline configuration validation failed").
		WithSeverity("error")
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigWatcherError, "Configuration watcher error: "+message).
		WithUserMessage("Pipeline configuration monitoring failed").
		WithSeverity("error")
}

func NewNoTargetsConfiguredError() *errors.Error {
	return errors.New(ErrCodeNoTargetsConfigured, "No targets configured").
		WithUserMessage("At least one target must be configured").
		WithSeverity("error")
}

func NewUnsupportedFormatError(path string) *errors.Error {
	return errors.New(ErrCodeUnsupportedFormat, "Unsupported configuration format").
		WithUserMessage("Configuration file must be JSON or YAML").
		WithContext("config_path", path).
		WithSeverity("error")
}

// Plugin execution error constructors

func NewPluginExecutionFailedError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodePluginExecutionFailed, "Plugin execution failed").
		WithUserMessage("The plugin failed during a capability call").
		WithContext("plugin_name", name).
		WithSeverity("warning")
}

// NewPluginPanicError keeps the panic value in the message so synthesized
// records built from it carry the original failure text.
func NewPluginPanicError(name string, recovered any) *errors.Error {
	return errors.New(ErrCodePluginPanic, fmt.Sprintf("panic: %v", recovered)).
		WithUserMessage("The plugin panicked during a capability call").
		WithContext("plugin_name", name).
		WithSeverity("error")
}

func NewPluginTimeoutError(name string, timeout any) *errors.Error {
	return errors.New(ErrCodePluginTimeout, "Plugin timeout").
		WithUserMessage("The plugin call exceeded the configured timeout").
		WithContext("plugin_name", name).
		WithContext("timeout", timeout).
		WithSeverity("warning").
		AsRetryable()
}

// Pipeline error constructors

func NewPipelineCancelledError(stage string) *errors.Error {
	return errors.New(ErrCodePipelineCancelled, "Pipeline cycle cancelled").
		WithUserMessage("The cycle was aborted before all targets completed").
		WithContext("stage", stage).
		WithSeverity("warning")
}

func NewSinkDeliveryError(cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSinkDelivery, "Alert sink delivery failed").
		WithUserMessage("Failed to forward the cycle report to the alert sink").
		WithSeverity("warning").
		AsRetryable()
}
