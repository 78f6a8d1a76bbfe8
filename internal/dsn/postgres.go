// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

// NewPostgreSQLResolver creates a resolver for postgres:// and postgresql://
// DSNs. Normalized output uses postgresql://.
func NewPostgreSQLResolver() Resolver {
	return &networkResolver{
		typ:         DBTypePostgreSQL,
		schemes:     []string{"postgresql", "postgres"},
		canonical:   "postgresql",
		defaultPort: "5432",
	}
}
