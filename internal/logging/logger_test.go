// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestNewMasksAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Debug("connect", "dsn", "postgres://app:hunter2@db/library",
		"err", fmt.Errorf("dial mysql://root:toor@db/x: refused"))

	out := buf.String()
	for _, secret := range []string{"hunter2", "toor"} {
		if bytes.Contains([]byte(out), []byte(secret)) {
			t.Errorf("log output leaked %q: %s", secret, out)
		}
	}
}

func TestNewHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConnectionHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Hint
	}{
		{"timeout", errors.New("dial tcp 10.0.0.1:5432: i/o timeout"), HintTimeout},
		{"dns", errors.New("dial tcp: lookup nohost: no such host"), HintDNS},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), HintRefused},
		{"tls", errors.New("tls: failed to verify certificate"), HintTLS},
		{"auth", errors.New(`FATAL: password authentication failed for user "app" (SQLSTATE 28P01)`), HintAuth},
		{"missing", errors.New(`resolve "ConnectionString": setting not found`), HintMissingSetting},
		{"other", errors.New("boom"), HintUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConnectionHint(tt.err); got != tt.want {
				t.Errorf("ConnectionHint() = %v, want %v", got, tt.want)
			}
		})
	}
}
