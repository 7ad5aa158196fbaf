// Package plugin defines the cloud provider plugin interface for sshcld.
package plugin

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sshcld/sshcld/pkg/instance"
)

// DefaultNativeLabel is the column label used when a provider has no
// native client of its own.
const DefaultNativeLabel = "Native Cloud Connection"

// Plugin is the interface all cloud provider plugins must implement.
type Plugin interface {
	// Name returns the plugin identifier (e.g., "aws", "azure")
	Name() string

	// Instances returns the instances matching filters in every region the
	// selector names. The selector is a region, a comma separated list, or "all".
	Instances(ctx context.Context, regions, filters string) ([]instance.Instance, error)
}

// NativeClient describes a provider specific connection method.
type NativeClient struct {
	// Label is the table header for the native connection column.
	Label string
	// ConfigKey is the configuration key holding the connection template.
	ConfigKey string
}

// Recorder receives one observation per region query.
type Recorder interface {
	RecordQuery(ctx context.Context, provider, region string, count int, duration time.Duration, err error)
}

// Options holds settings passed to a plugin factory.
type Options struct {
	Profile  string
	Recorder Recorder
}

// Factory creates a plugin instance.
type Factory func(ctx context.Context, opts Options) (Plugin, error)

// Descriptor is what a provider registers: its name, native client
// capability and constructor.
type Descriptor struct {
	Name   string
	Native NativeClient
	New    Factory
}

// Registry holds registered providers.
var (
	registry = make(map[string]Descriptor)
	mu       sync.RWMutex
)

// Register adds a provider to the registry.
func Register(d Descriptor) {
	mu.Lock()
	defer mu.Unlock()
	registry[d.Name] = d
}

// Get returns a provider descriptor by name.
func Get(name string) (Descriptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := registry[name]
	return d, ok
}

// NativeClientFor returns the native client of the named provider, or a
// generic one without a template when the provider is unknown.
func NativeClientFor(name string) NativeClient {
	d, ok := Get(name)
	if !ok || d.Native.Label == "" {
		return NativeClient{Label: DefaultNativeLabel, ConfigKey: d.Native.ConfigKey}
	}
	return d.Native
}

// Names returns all registered provider names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all providers from the registry. Used for testing.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Descriptor)
}
