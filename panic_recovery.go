// panic_recovery.go: Plugin-call isolation boundary with stack trace support
//
// Every capability call (CheckHealth, Diagnose, AttemptRecovery) runs inside
// safeCall. A plugin that returns an error or panics yields an error to the
// calling stage manager, which converts it into a synthesized record; nothing
// a plugin does can propagate past its manager.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"runtime"
)

// safeCall invokes fn and converts any panic into a PluginPanic error.
//
// The full stack trace is logged but never surfaced in the returned error;
// synthesized records downstream carry stable generic messages, not raw
// failure text.
func safeCall[T any](logger Logger, pluginName string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)

			logger.Error("Panic recovered in plugin call",
				"plugin", pluginName,
				"panic", r,
				"stack", string(buf[:n]))

			err = NewPluginPanicError(pluginName, r)
		}
	}()

	return fn()
}

// withStackRecover returns a panic recovery function that logs panic details
// including full stack trace. The returned function should be called with
// defer to ensure proper recovery.
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)

			logger.Error("Panic recovered in goroutine",
				"panic", r,
				"stack", string(buf[:n]))
		}
	}
}

// SafeGo executes a function in a new goroutine with automatic panic recovery.
//
// If the function panics, the panic is logged and the goroutine terminates
// gracefully without crashing the application.
func SafeGo(logger Logger, fn func()) {
	go func() {
		defer withStackRecover(logger)()
		fn()
	}()
}
