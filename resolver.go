// resolver.go: Name-to-factory plugin resolution with namespace support
//
// Dynamic-by-name plugin loading is modeled as an explicit registry populated
// at process start: every known plugin registers a factory under the same
// string name used in configuration. Resolution is a map lookup, preserving
// the "unknown name means non-fatal skip" contract of the stage managers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goremedy

import (
	"sort"
	"sync"
)

// DefaultNamespace is the conventional namespace all pipeline plugins resolve
// from unless a binding says otherwise. Additional namespaces can be added
// without changing any stage manager's public API.
const DefaultNamespace = "remedy.plugins"

// PluginFactory creates a new plugin instance.
//
// The returned value must implement the capability interface expected by the
// stage that resolves it (MonitoringPlugin, DiagnosticPlugin, or
// RecoveryPlugin); the resolver's typed helpers enforce this at resolution
// time and report a mismatch as a load error.
type PluginFactory func() (any, error)

// PluginResolver resolves plugin instances by namespace and name.
//
// Factories are registered once at process start; resolution afterwards is
// read-mostly and safe for concurrent use. Resolution failures are the
// PluginLoadError family: callers treat them as "unavailable for this
// binding", never as a crash.
type PluginResolver struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]PluginFactory
}

// NewPluginResolver creates an empty resolver with the default namespace
// pre-created.
func NewPluginResolver() *PluginResolver {
	return &PluginResolver{
		namespaces: map[string]map[string]PluginFactory{
			DefaultNamespace: {},
		},
	}
}

// Register adds a plugin factory under the given namespace and name.
//
// The namespace is created on first use. Registering a duplicate name within
// a namespace is an error: silent replacement would make config-to-behavior
// binding ambiguous.
func (r *PluginResolver) Register(namespace, name string, factory PluginFactory) error {
	if name == "" {
		return NewInvalidPluginNameError(name)
	}
	if factory == nil {
		return NewInvalidFactoryError(namespace, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		ns = make(map[string]PluginFactory)
		r.namespaces[namespace] = ns
	}

	if _, exists := ns[name]; exists {
		return NewDuplicateFactoryError(namespace, name)
	}

	ns[name] = factory
	return nil
}

// MustRegister is like Register but panics on error.
//
// Intended for process-start registration blocks where a registration failure
// is a programming error.
func (r *PluginResolver) MustRegister(namespace, name string, factory PluginFactory) {
	if err := r.Register(namespace, name, factory); err != nil {
		panic(err)
	}
}

// Resolve looks up the factory registered under namespace/name and
// instantiates it.
//
// Returns a PluginLoadError-family error when the namespace or name is
// unknown, or when the factory itself fails.
func (r *PluginResolver) Resolve(namespace, name string) (any, error) {
	r.mu.RLock()
	ns, ok := r.namespaces[namespace]
	if !ok {
		r.mu.RUnlock()
		return nil, NewNamespaceNotFoundError(namespace)
	}
	factory, ok := ns[name]
	r.mu.RUnlock()

	if !ok {
		return nil, NewPluginNotRegisteredError(namespace, name)
	}

	instance, err := factory()
	if err != nil {
		return nil, NewPluginInstantiationError(namespace, name, err)
	}

	return instance, nil
}

// ResolveMonitoring resolves a plugin and asserts the MonitoringPlugin capability.
func (r *PluginResolver) ResolveMonitoring(namespace, name string) (MonitoringPlugin, error) {
	instance, err := r.Resolve(namespace, name)
	if err != nil {
		return nil, err
	}
	plugin, ok := instance.(MonitoringPlugin)
	if !ok {
		return nil, NewCapabilityMismatchError(name, "MonitoringPlugin")
	}
	return plugin, nil
}

// ResolveDiagnostic resolves a plugin and asserts the DiagnosticPlugin capability.
func (r *PluginResolver) ResolveDiagnostic(namespace, name string) (DiagnosticPlugin, error) {
	instance, err := r.Resolve(namespace, name)
	if err != nil {
		return nil, err
	}
	plugin, ok := instance.(DiagnosticPlugin)
	if !ok {
		return nil, NewCapabilityMismatchError(name, "DiagnosticPlugin")
	}
	return plugin, nil
}

// ResolveRecovery resolves a plugin and asserts the RecoveryPlugin capability.
func (r *PluginResolver) ResolveRecovery(namespace, name string) (RecoveryPlugin, error) {
	instance, err := r.Resolve(namespace, name)
	if err != nil {
		return nil, err
	}
	plugin, ok := instance.(RecoveryPlugin)
	if !ok {
		return nil, NewCapabilityMismatchError(name, "RecoveryPlugin")
	}
	return plugin, nil
}

// Registered returns the sorted plugin names registered under a namespace.
//
// Useful for startup logging and operational visibility; returns nil for an
// unknown namespace.
func (r *PluginResolver) Registered(namespace string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(ns))
	for name := range ns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
