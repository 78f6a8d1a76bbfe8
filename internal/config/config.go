// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads sqlbind settings. Layers, lowest first: built-in
// defaults, the YAML config file, SQLBIND_* environment variables and
// explicitly set command-line flags.
//
// Connection strings may live under settings: in the file, but the keychain
// or the environment are the better home for anything with a password.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"sqlbind/internal/xdg"
)

// EnvPrefix prefixes environment overrides. SQLBIND_BOOKS__TABLE sets
// books.table.
const EnvPrefix = "SQLBIND_"

// Config holds non-secret settings.
type Config struct {
	LogLevel string `koanf:"log_level"`
	HTTPAddr string `koanf:"http_addr"`
	GRPCAddr string `koanf:"grpc_addr"`
	// Settings maps setting names to connection strings.
	Settings map[string]string `koanf:"settings"`
	Books    Books             `koanf:"books"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Books configures the sample book service.
type Books struct {
	Connection  string `koanf:"connection"`
	Table       string `koanf:"table"`
	AuthorQuery string `koanf:"author_query"`
	TitleQuery  string `koanf:"title_query"`
}

func defaults() map[string]any {
	return map[string]any{
		"log_level":        "info",
		"http_addr":        ":8080",
		"grpc_addr":        ":9090",
		"books.connection": "ConnectionString",
		"books.table":      "Book",
	}
}

// Load reads configuration. An empty path means the XDG default, which may
// be absent; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	used, err := configFile(path)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]string{}
	}
	cfg.File = used
	return &cfg, nil
}

func configFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	def, err := xdg.ConfigFile()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(def); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("config file: %w", err)
	}
	return def, nil
}
