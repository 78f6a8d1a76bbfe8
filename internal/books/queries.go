// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package books

import (
	"fmt"

	"sqlbind/internal/dsn"
)

// Templates hold the lookup queries before placeholder expansion. {name} and
// {title} are request values; a literal percent sign is written as a
// character-code call so it survives expansion.
type Templates struct {
	Author string
	Title  string
}

// DefaultTemplates returns substring-match lookups against table for the
// given database type. Unknown types get the Postgres dialect.
func DefaultTemplates(t dsn.DBType, table string) Templates {
	const cols = "Title, Author, Yr, Genre"
	var match func(col, param string) string
	switch t {
	case dsn.DBTypeSQLite:
		match = func(col, param string) string {
			return fmt.Sprintf("%s LIKE char(37) || '{%s}' || char(37)", col, param)
		}
	case dsn.DBTypeMySQL:
		match = func(col, param string) string {
			return fmt.Sprintf("%s LIKE CONCAT(CHAR(37 USING utf8mb4), '{%s}', CHAR(37 USING utf8mb4))", col, param)
		}
	default:
		match = func(col, param string) string {
			return fmt.Sprintf("%s ILIKE chr(37) || '{%s}' || chr(37)", col, param)
		}
	}
	return Templates{
		Author: fmt.Sprintf("SELECT %s FROM %s WHERE %s", cols, table, match("Author", "name")),
		Title:  fmt.Sprintf("SELECT %s FROM %s WHERE %s", cols, table, match("Title", "title")),
	}
}
