// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores named connection settings in the OS credential
// store (macOS Keychain, Windows Credential Manager, Secret Service, pass).
// Values are whole connection strings; they never touch the config file.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlbind"

// keyPrefix namespaces connection settings inside the service.
const keyPrefix = "setting:"

// ErrNotFound is returned when no value is stored under a name.
var ErrNotFound = errors.New("keychain: setting not found")

// Store provides thread-safe access to named settings in a keyring.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// New wraps ring. Tests pass keyring.NewArrayKeyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open opens the OS keyring using native platform backends only.
func Open() (*Store, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return New(ring), nil
}

func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, fmt.Errorf("secure storage not supported on %s", runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

// Save stores value under name.
func (s *Store) Save(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("keychain: setting name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Set(keyring.Item{
		Key:         keyPrefix + name,
		Data:        []byte(value),
		Label:       ServiceName + " " + name,
		Description: "database connection string",
	})
}

// Load returns the value stored under name.
func (s *Store) Load(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, err := s.ring.Get(keyPrefix + name)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// Remove deletes name. Removing a missing name is not an error.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ring.Remove(keyPrefix + name)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Names lists stored setting names in sorted order.
func (s *Store) Names() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys {
		if name, ok := strings.CutPrefix(k, keyPrefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Lookup implements settings.Source.
func (s *Store) Lookup(name string) (string, bool, error) {
	v, err := s.Load(name)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// String names the source in diagnostics.
func (s *Store) String() string { return "OS keychain" }
