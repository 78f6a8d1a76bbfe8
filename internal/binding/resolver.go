// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package binding maps a declared parameter shape to the code path that
// serves it. The rules are fixed when the Resolver is built:
//
//	input  Table              query, result used directly
//	input  Text               query, then Table->Text
//	output Collector[Table]   table insert collector
//	output Collector[Text]    text insert collector
//
// Dispatch depends only on the declared shape, never on runtime values.
package binding

import (
	"context"
	"fmt"
	"log/slog"

	"sqlbind/internal/collector"
	"sqlbind/internal/convert"
	"sqlbind/internal/dbconn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/logging"
	"sqlbind/internal/sqlexec"
	"sqlbind/internal/table"
)

// Shape is the declared type of a bound parameter.
type Shape = convert.Shape

type inputRule func(ctx context.Context, d Descriptor) (any, error)

type outputRule func(d Descriptor) any

// Resolver serves bindings. It is read-only after construction and safe for
// concurrent use.
type Resolver struct {
	converters *convert.Registry
	executor   *sqlexec.Executor
	inputs     map[Shape]inputRule
	outputs    map[Shape]outputRule
}

// NewResolver builds the rule tables. A nil registry uses convert.Default.
func NewResolver(dialer dbconn.Dialer, converters *convert.Registry, logger *slog.Logger) *Resolver {
	if converters == nil {
		converters = convert.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Resolver{
		converters: converters,
		executor:   sqlexec.New(dialer, logger),
	}

	r.inputs = map[Shape]inputRule{
		convert.ShapeTable: func(ctx context.Context, d Descriptor) (any, error) {
			return r.executor.Execute(ctx, d.Locator(), d.Query)
		},
		convert.ShapeText: func(ctx context.Context, d Descriptor) (any, error) {
			t, err := r.executor.Execute(ctx, d.Locator(), d.Query)
			if err != nil {
				return nil, err
			}
			return r.converters.TableToText(t)
		},
	}
	r.outputs = map[Shape]outputRule{
		convert.ShapeTable: func(d Descriptor) any {
			return collector.NewTable(dialer, d.Locator(), d.Table, logger)
		},
		convert.ShapeText: func(d Descriptor) any {
			return collector.NewText(dialer, r.converters, d.Locator(), d.Table, logger)
		},
	}
	return r
}

// Input serves an input binding of the declared shape.
func (r *Resolver) Input(ctx context.Context, d Descriptor, shape Shape) (any, error) {
	rule, ok := r.inputs[shape]
	if !ok {
		return nil, apperrors.New(apperrors.BindingInvalid, fmt.Sprintf("no input binding for shape %q", shape))
	}
	return rule(ctx, d)
}

// Output returns the collector for an output binding of the declared
// element shape. Building a collector performs no I/O.
func (r *Resolver) Output(d Descriptor, shape Shape) (any, error) {
	rule, ok := r.outputs[shape]
	if !ok {
		return nil, apperrors.New(apperrors.BindingInvalid, fmt.Sprintf("no output binding for shape %q", shape))
	}
	if err := d.validateOutput(); err != nil {
		return nil, err
	}
	return rule(d), nil
}

// Table runs d.Query and returns the materialized result.
func (r *Resolver) Table(ctx context.Context, d Descriptor) (*table.Table, error) {
	v, err := r.Input(ctx, d, convert.ShapeTable)
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// Text runs d.Query and returns the result as a JSON row array.
func (r *Resolver) Text(ctx context.Context, d Descriptor) (string, error) {
	v, err := r.Input(ctx, d, convert.ShapeText)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// TableCollector returns a collector of tables bound to d.Table.
func (r *Resolver) TableCollector(d Descriptor) (*collector.Table, error) {
	v, err := r.Output(d, convert.ShapeTable)
	if err != nil {
		return nil, err
	}
	return v.(*collector.Table), nil
}

// TextCollector returns a collector of JSON row arrays bound to d.Table.
func (r *Resolver) TextCollector(d Descriptor) (*collector.Text, error) {
	v, err := r.Output(d, convert.ShapeText)
	if err != nil {
		return nil, err
	}
	return v.(*collector.Text), nil
}

// Converters returns the registry the resolver converts with.
func (r *Resolver) Converters() *convert.Registry { return r.converters }
