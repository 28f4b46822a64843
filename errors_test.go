// errors_test.go: Tests for structured error definitions
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewPluginPanicError_CarriesPanicValue(t *testing.T) {
	err := NewPluginPanicError("restart-service", "Recovery Exploded")

	if err.Code != ErrCodePluginPanic {
		t.Errorf("Expected code %s, got %s", ErrCodePluginPanic, err.Code)
	}
	if !strings.Contains(err.Error(), "Recovery Exploded") {
		t.Errorf("Panic value missing from message: %v", err)
	}
}

func TestNewPluginInstantiationError_WrapsCause(t *testing.T) {
	cause := stderrors.New("backend unavailable")
	err := NewPluginInstantiationError(DefaultNamespace, "flaky", cause)

	if err.Cause == nil {
		t.Error("Expected the factory error to be preserved as the cause")
	}
	if err.Code != ErrCodePluginInstantiation {
		t.Errorf("Unexpected code: %s", err.Code)
	}
}

func TestErrorCodes_Distinct(t *testing.T) {
	codes := []string{
		ErrCodePluginNotRegistered,
		ErrCodeNamespaceNotFound,
		ErrCodePluginInstantiation,
		ErrCodeCapabilityMismatch,
		ErrCodeDuplicateFactory,
		ErrCodeInvalidFactory,
		ErrCodeInvalidPluginName,
		ErrCodeConfigNotFound,
		ErrCodeConfigParseError,
		ErrCodeConfigValidation,
		ErrCodeConfigWatcherError,
		ErrCodeNoTargetsConfigured,
		ErrCodeUnsupportedFormat,
		ErrCodePluginExecutionFailed,
		ErrCodePluginPanic,
		ErrCodePluginTimeout,
		ErrCodePipelineCancelled,
		ErrCodeSinkDelivery,
	}

	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code %s", code)
		}
		seen[code] = true
	}
}

func TestRetryableClassification(t *testing.T) {
	if !NewSinkDeliveryError(stderrors.New("timeout")).IsRetryable() {
		t.Error("Sink delivery failures should be retryable")
	}
	if !NewPluginTimeoutError("slow", "30s").IsRetryable() {
		t.Error("Plugin timeouts should be retryable")
	}
	if NewDuplicateFactoryError(DefaultNamespace, "dup").IsRetryable() {
		t.Error("Registration conflicts are not retryable")
	}
}
