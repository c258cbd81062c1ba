// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package platform

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/trishade/render"
)

// Factory creates a platform instance.
type Factory func() (render.Platform, error)

// Priorities of the built-in platforms. Higher is preferred.
const (
	PriorityHardware = 100
	PriorityHeadless = 10
)

type entry struct {
	name      string
	priority  int
	factory   Factory
	available func() bool
}

// Registry maps platform names to factories. The zero value is empty and
// ready to use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var defaultRegistry Registry

// Register adds a platform to the default registry. A nil available means
// the platform always runs. Registering a name again replaces it.
func Register(name string, priority int, factory Factory, available func() bool) {
	defaultRegistry.Register(name, priority, factory, available)
}

// List returns every registered platform name, preferred first.
func List() []string { return defaultRegistry.List() }

// Available returns the names of platforms that can run here, preferred
// first.
func Available() []string { return defaultRegistry.Available() }

// New creates the named platform from the default registry and returns
// the name it was registered under. An empty name picks the best
// available platform, falling back past ones whose factory fails.
func New(name string) (render.Platform, string, error) {
	if name == "" {
		return defaultRegistry.NewBest()
	}
	p, err := defaultRegistry.NewByName(name)
	return p, name, err
}

// Register adds a platform to r.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]entry)
	}
	r.entries[name] = entry{name: name, priority: priority, factory: factory, available: available}
}

// List returns every registered name, preferred first.
func (r *Registry) List() []string { return names(r.ranked(false)) }

// Available returns the names that can run here, preferred first.
func (r *Registry) Available() []string { return names(r.ranked(true)) }

// NewBest creates the preferred available platform. When a factory fails
// the next one is tried; if all fail the joined errors are returned.
func (r *Registry) NewBest() (render.Platform, string, error) {
	candidates := r.ranked(true)
	if len(candidates) == 0 {
		return nil, "", ErrNoPlatformAvailable
	}
	var errs []error
	for _, e := range candidates {
		p, err := e.factory()
		if err == nil {
			return p, e.name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
	}
	return nil, "", errors.Join(errs...)
}

// NewByName creates the named platform.
func (r *Registry) NewByName(name string) (render.Platform, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	switch {
	case !ok:
		return nil, &NotFoundError{Name: name, Known: r.List()}
	case !e.available():
		return nil, &UnavailableError{Name: name}
	}
	return e.factory()
}

// ranked snapshots the entries by descending priority, then name.
func (r *Registry) ranked(onlyAvailable bool) []entry {
	r.mu.RLock()
	out := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	if onlyAvailable {
		out = slices.DeleteFunc(out, func(e entry) bool { return !e.available() })
	}
	slices.SortFunc(out, func(a, b entry) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return out
}

func names(entries []entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// ErrNoPlatformAvailable is returned when nothing registered can run.
var ErrNoPlatformAvailable = errors.New("platform: no platform available")

// NotFoundError reports an unregistered platform name.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("platform: unknown %q (have %s)", e.Name, strings.Join(e.Known, ", "))
}

// UnavailableError reports a registered platform that cannot run here.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "platform: unavailable: " + e.Name
}

func init() {
	Register(HeadlessName, PriorityHeadless, func() (render.Platform, error) {
		return NewHeadless(), nil
	}, nil)
	Register(VulkanName, PriorityHardware, func() (render.Platform, error) {
		return NewVulkan(), nil
	}, vulkanAvailable)
}
