// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines the typed error taxonomy of the binding layer.
// Every failure surfaced to a bound function carries a machine-readable Kind
// and keeps the underlying driver diagnostic reachable through Unwrap, so the
// original message text is never rewritten.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectionFailed indicates the connection locator could not be resolved
	// or the database refused the connection.
	ConnectionFailed Kind = "connection_error"
	// QueryFailed indicates the query was rejected or failed during execution.
	QueryFailed Kind = "query_error"
	// ConversionFailed indicates no converter exists for a shape pair.
	ConversionFailed Kind = "conversion_error"
	// DecodeFailed indicates Text is not a well-formed array of flat objects.
	DecodeFailed Kind = "decode_error"
	// BulkInsertFailed indicates the database rejected a bulk copy.
	BulkInsertFailed Kind = "bulk_insert_error"
	// BindingInvalid indicates a descriptor or declared shape that no rule serves.
	BindingInvalid Kind = "binding_error"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped driver or parser error.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Ensure wraps err with kind unless it already carries a Kind.
// It returns nil for a nil err.
func Ensure(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	var e *E
	if stderrors.As(err, &e) {
		return err
	}
	return Wrap(kind, msg, err)
}

// KindOf reports the Kind of the first *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
