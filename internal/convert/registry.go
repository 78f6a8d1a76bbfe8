// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package convert maps values between the shapes a binding can declare.
// A Registry holds at most one converter per (source, target) pair and is
// built once at startup; lookups are safe for concurrent use.
package convert

import (
	"fmt"
	"sync"

	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/table"
)

// Shape names a data representation a bound parameter can take.
type Shape string

const (
	// ShapeTable is *table.Table.
	ShapeTable Shape = "table"
	// ShapeText is a JSON array of flat objects held in a string.
	ShapeText Shape = "text"
)

// Func converts a value of the source shape into the target shape.
type Func func(v any) (any, error)

type pair struct {
	from, to Shape
}

// Registry resolves converters by shape pair.
type Registry struct {
	mu    sync.RWMutex
	funcs map[pair]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[pair]Func)}
}

// Default returns a registry holding the Text/Table converters.
func Default() *Registry {
	r := NewRegistry()
	r.Register(ShapeText, ShapeTable, Typed(DecodeText))
	r.Register(ShapeTable, ShapeText, Typed(EncodeTable))
	return r
}

// Register installs fn for the pair. A later registration for the same pair
// replaces the earlier one.
func (r *Registry) Register(from, to Shape, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[pair{from, to}] = fn
}

// Lookup returns the converter for the pair.
func (r *Registry) Lookup(from, to Shape) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[pair{from, to}]
	return fn, ok
}

// Convert runs the converter registered for the pair.
func (r *Registry) Convert(v any, from, to Shape) (any, error) {
	fn, ok := r.Lookup(from, to)
	if !ok {
		return nil, apperrors.New(apperrors.ConversionFailed,
			fmt.Sprintf("no converter registered from %s to %s", from, to))
	}
	return fn(v)
}

// Typed adapts a typed conversion into a Func. Inputs of the wrong Go type
// fail with a conversion error.
func Typed[S, T any](fn func(S) (T, error)) Func {
	return func(v any) (any, error) {
		s, ok := v.(S)
		if !ok {
			var want S
			return nil, apperrors.New(apperrors.ConversionFailed,
				fmt.Sprintf("expected %T, got %T", want, v))
		}
		return fn(s)
	}
}

// As converts v and asserts the result type.
func As[T any](r *Registry, v any, from, to Shape) (T, error) {
	var zero T
	out, err := r.Convert(v, from, to)
	if err != nil {
		return zero, err
	}
	t, ok := out.(T)
	if !ok {
		return zero, apperrors.New(apperrors.ConversionFailed,
			fmt.Sprintf("converter %s->%s returned %T, want %T", from, to, out, zero))
	}
	return t, nil
}

// TextToTable decodes text with the registry's Text->Table converter.
func (r *Registry) TextToTable(text string) (*table.Table, error) {
	return As[*table.Table](r, text, ShapeText, ShapeTable)
}

// TableToText encodes t with the registry's Table->Text converter.
func (r *Registry) TableToText(t *table.Table) (string, error) {
	return As[string](r, t, ShapeTable, ShapeText)
}
