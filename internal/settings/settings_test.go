// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Lookup(string) (string, bool, error) {
	return "", false, errors.New("keyring locked")
}

func env(vars map[string]string) Env {
	return Env{LookupEnv: func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}}
}

func TestChainOrder(t *testing.T) {
	chain := Chain{
		env(map[string]string{"ConnectionString": " postgres://env@db/x "}),
		Map{"ConnectionString": "postgres://file@db/x", "Reporting": "mysql://file@db/r"},
	}

	v, src, err := chain.ResolveFrom("ConnectionString")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@db/x", v)
	assert.IsType(t, Env{}, src)

	v, err = chain.Resolve("Reporting")
	require.NoError(t, err)
	assert.Equal(t, "mysql://file@db/r", v)
}

func TestChainSkipsBlankValues(t *testing.T) {
	chain := Chain{env(map[string]string{"ConnectionString": "  "}), Map{"ConnectionString": "sqlite://b.db"}}
	v, err := chain.Resolve("ConnectionString")
	require.NoError(t, err)
	assert.Equal(t, "sqlite://b.db", v)
}

func TestChainNotFound(t *testing.T) {
	_, err := Chain{Map{}}.Resolve("ConnectionString")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = Chain{Map{}}.Resolve("")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestChainSourceError(t *testing.T) {
	_, err := Chain{Map{}, failingSource{}}.Resolve("ConnectionString")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "keyring locked")
}
