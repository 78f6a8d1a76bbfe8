// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package binding

import (
	"strings"

	apperrors "sqlbind/internal/errors"
)

// DefaultConnection is the setting consulted when a descriptor names none.
const DefaultConnection = "ConnectionString"

// Descriptor is the declaration attached to a bound parameter.
type Descriptor struct {
	// Connection names the setting that holds the connection string. It is
	// never the connection string itself.
	Connection string
	// Table is the destination of output bindings.
	Table string
	// Query is the resolved query text of input bindings. It is passed to
	// the database unchanged, so a literal percent sign must already be
	// written as a character-code call such as CHAR(37).
	Query string
}

// Locator returns the connection setting name, defaulting to
// DefaultConnection.
func (d Descriptor) Locator() string {
	if strings.TrimSpace(d.Connection) == "" {
		return DefaultConnection
	}
	return d.Connection
}

func (d Descriptor) validateOutput() error {
	if strings.TrimSpace(d.Table) == "" {
		return apperrors.New(apperrors.BindingInvalid, "output binding requires a table name")
	}
	return nil
}
