// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/rhi"
)

// Well-known platform names.
const (
	// NameVulkan opens the Vulkan HAL backend.
	NameVulkan = "vulkan"

	// NameNoop opens the headless noop HAL backend.
	NameNoop = "noop"
)

// Factory opens a new platform instance.
type Factory func(cfg Config) (Platform, error)

// registry holds registered platforms.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for platform selection (first that opens wins).
	// Real GPUs first, the headless noop backend is the fallback.
	priority = []string{NameVulkan, NameNoop}
)

// Register registers a platform factory with the given name.
// This is typically called from init() functions in backend packages.
// If a platform with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a platform from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered platform names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a platform with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get returns the factory registered under name, or nil.
func Get(name string) Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return factories[name]
}

// Open opens the platform registered under name.
func Open(name string, cfg Config) (Platform, error) {
	factory := Get(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	rhi.Logger().Info("backend: opened", "name", name)
	return p, nil
}

// Default opens the best available platform based on priority, falling
// back to any other registered platform. The errors of every failed attempt
// are joined.
func Default(cfg Config) (Platform, error) {
	registryMu.RLock()
	order := make([]string, 0, len(factories))
	for _, name := range priority {
		if _, ok := factories[name]; ok {
			order = append(order, name)
		}
	}
	rest := make([]string, 0, len(factories))
	for name := range factories {
		if !slices.Contains(priority, name) {
			rest = append(rest, name)
		}
	}
	registryMu.RUnlock()
	slices.Sort(rest)
	order = append(order, rest...)

	if len(order) == 0 {
		return nil, ErrBackendNotAvailable
	}
	var errs []error
	for _, name := range order {
		p, err := Open(name, cfg)
		if err == nil {
			return p, nil
		}
		rhi.Logger().Debug("backend: skipped", "name", name, "error", err)
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}
