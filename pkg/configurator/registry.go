package configurator

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry maps configurator keys to configurators.
// Registrations are expected at startup; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Configurator
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		entries: make(map[string]Configurator),
		logger:  logger,
	}
}

// Register adds c. It fails if c's key is empty or already registered.
func (r *Registry) Register(c Configurator) error {
	if c.key == "" || c.newCell == nil || c.bind == nil {
		return fmt.Errorf("%w: %q", ErrIncomplete, c.key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[c.key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, c.key)
	}
	r.entries[c.key] = c
	r.logger.Debug("registered configurator", "key", c.key, "fixed_height", c.HasFixedHeight())
	return nil
}

// RegisterAll registers each configurator, stopping at the first error.
func (r *Registry) RegisterAll(cs ...Configurator) error {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the configurator registered under key.
func (r *Registry) Lookup(key string) (Configurator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[key]
	return c, ok
}

// Resolve returns the configurator for item.
func (r *Registry) Resolve(item Keyed) (Configurator, error) {
	if item == nil {
		return Configurator{}, fmt.Errorf("%w: nil item", ErrNotRegistered)
	}
	key := item.ConfiguratorKey()
	c, ok := r.Lookup(key)
	if !ok {
		return Configurator{}, fmt.Errorf("%w: %s (%T)", ErrNotRegistered, key, item)
	}
	return c, nil
}

// Height returns the fixed height of item. ok is false when the item's
// configurator has no height function and the caller must measure.
func (r *Registry) Height(item Keyed) (height int, ok bool, err error) {
	c, err := r.Resolve(item)
	if err != nil {
		return 0, false, err
	}
	return c.Height(item)
}

// Validate checks that every item has a configurator and reports all
// missing keys at once.
func (r *Registry) Validate(items []Keyed) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missing := make(map[string]struct{})
	for _, item := range items {
		if item == nil {
			missing["<nil>"] = struct{}{}
			continue
		}
		if _, ok := r.entries[item.ConfiguratorKey()]; !ok {
			missing[item.ConfiguratorKey()] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	keys := make([]string, 0, len(missing))
	for k := range missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%w: %s", ErrNotRegistered, strings.Join(keys, ", "))
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of registered configurators.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
