// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package settings resolves connection locators. A locator is the name of a
// setting whose value is the connection string; the value is looked up in
// the process environment, the config file and the OS keychain, in that order.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when no source holds the setting.
var ErrNotFound = errors.New("setting not found")

// Source is one place a setting value may live.
type Source interface {
	Lookup(name string) (value string, ok bool, err error)
}

// Resolver turns a setting name into its value.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Env reads settings from environment variables named after the setting.
type Env struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

func (e Env) Lookup(name string) (string, bool, error) {
	lookup := e.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false, nil
	}
	return strings.TrimSpace(v), true, nil
}

func (Env) String() string { return "environment" }

// Map serves settings from the config file.
type Map map[string]string

func (m Map) Lookup(name string) (string, bool, error) {
	v, ok := m[name]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (Map) String() string { return "config file" }

// Chain consults its sources in order; the first hit wins.
type Chain []Source

// Resolve returns the first value found for name.
func (c Chain) Resolve(name string) (string, error) {
	v, _, err := c.ResolveFrom(name)
	return v, err
}

// ResolveFrom also reports which source served the value.
func (c Chain) ResolveFrom(name string) (string, Source, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil, fmt.Errorf("resolve setting: %w: empty name", ErrNotFound)
	}
	for _, src := range c {
		v, ok, err := src.Lookup(name)
		if err != nil {
			return "", nil, fmt.Errorf("resolve %q from %v: %w", name, src, err)
		}
		if ok {
			return v, src, nil
		}
	}
	return "", nil, fmt.Errorf("resolve %q: %w", name, ErrNotFound)
}
