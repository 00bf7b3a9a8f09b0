// Package configurator maps items to the cells that render them.
//
// Each item type declares its configurator key through Keyed. A Registry
// holds one Configurator per key: a cell factory, an optional fixed height
// and a bind function.
package configurator

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/difftable/pkg/section"
)

var (
	// ErrDuplicateKey is returned when a key is registered twice.
	ErrDuplicateKey = errors.New("configurator already registered")

	// ErrNotRegistered is returned when an item's key has no configurator.
	ErrNotRegistered = errors.New("no configurator registered")

	// ErrIncomplete is returned when a configurator lacks a key, a cell
	// factory or a bind function.
	ErrIncomplete = errors.New("configurator is incomplete")

	// ErrTypeMismatch is returned when a configurator receives a cell or
	// item of the wrong type.
	ErrTypeMismatch = errors.New("configurator type mismatch")
)

// Keyed is implemented by every item that can be displayed.
type Keyed interface {
	ConfiguratorKey() string
}

// Cell is a view produced by a configurator. Its concrete type is owned by
// the list view toolkit.
type Cell any

// Configurator is a type-erased cell configuration.
type Configurator struct {
	key     string
	newCell func() Cell
	height  func(Keyed) (int, error)
	bind    func(Cell, Keyed, section.IndexPath) error
}

// New builds a configurator for items of type T rendered by cells of type
// C. height may be nil, in which case the list view measures the bound cell.
func New[C any, T Keyed](
	key string,
	newCell func() C,
	height func(T) int,
	bind func(C, T, section.IndexPath),
) Configurator {
	c := Configurator{
		key:     key,
		newCell: func() Cell { return newCell() },
		bind: func(cell Cell, item Keyed, at section.IndexPath) error {
			typedCell, ok := cell.(C)
			if !ok {
				return fmt.Errorf("%w: %s cannot bind cell %T", ErrTypeMismatch, key, cell)
			}
			typedItem, ok := item.(T)
			if !ok {
				return fmt.Errorf("%w: %s cannot bind item %T", ErrTypeMismatch, key, item)
			}
			bind(typedCell, typedItem, at)
			return nil
		},
	}
	if height != nil {
		c.height = func(item Keyed) (int, error) {
			typedItem, ok := item.(T)
			if !ok {
				return 0, fmt.Errorf("%w: %s cannot measure item %T", ErrTypeMismatch, key, item)
			}
			return height(typedItem), nil
		}
	}
	return c
}

// Key returns the registration key.
func (c Configurator) Key() string {
	return c.key
}

// NewCell creates a fresh cell. It is used both for display and as the
// offscreen instance for measurement.
func (c Configurator) NewCell() Cell {
	return c.newCell()
}

// HasFixedHeight reports whether the configurator computes heights itself.
func (c Configurator) HasFixedHeight() bool {
	return c.height != nil
}

// Height returns the fixed height for item, if the configurator has one.
func (c Configurator) Height(item Keyed) (int, bool, error) {
	if c.height == nil {
		return 0, false, nil
	}
	h, err := c.height(item)
	if err != nil {
		return 0, false, err
	}
	return h, true, nil
}

// Bind configures cell to display item at the given position.
func (c Configurator) Bind(cell Cell, item Keyed, at section.IndexPath) error {
	return c.bind(cell, item, at)
}
