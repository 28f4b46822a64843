// logging_test.go: Tests for the pluggable logging system
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"context"
	"testing"
)

func TestNewLogger_AcceptedTypes(t *testing.T) {
	tl := NewTestLogger()
	if NewLogger(tl) != Logger(tl) {
		t.Error("A Logger implementation must be used directly")
	}

	if _, ok := NewLogger(nil).(*NoOpLogger); !ok {
		t.Error("nil must yield a NoOpLogger")
	}
}

func TestNewLogger_PanicsOnUnsupportedType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an unsupported logger type")
		}
	}()
	NewLogger("not a logger")
}

func TestTestLogger_CapturesMessages(t *testing.T) {
	tl := NewTestLogger()

	tl.Debug("debug msg", "k", 1)
	tl.Info("info msg")
	tl.Warn("warn msg")
	tl.Error("error msg")

	if len(tl.Messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(tl.Messages))
	}
	if !tl.HasMessage("INFO", "info msg") {
		t.Error("Expected captured INFO message")
	}
	if tl.HasMessage("INFO", "warn msg") {
		t.Error("Level must be part of the match")
	}

	tl.Clear()
	if len(tl.Messages) != 0 {
		t.Error("Clear must remove all captured messages")
	}
}

func TestLoggerFromContext(t *testing.T) {
	if _, ok := LoggerFromContext(context.Background()).(*NoOpLogger); !ok {
		t.Error("Expected default logger for a bare context")
	}

	tl := NewTestLogger()
	ctx := ContextWithLogger(context.Background(), tl)
	if LoggerFromContext(ctx) != Logger(tl) {
		t.Error("Expected the logger stored in the context")
	}
}
