// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package main

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the settings shared across cedarparse subcommands. Values
// are layered, lowest precedence first: built-in defaults, an optional
// YAML file (--config), then the command's own flags.
type Config struct {
	Tolerant  bool   `koanf:"tolerant"`
	KeepSpans bool   `koanf:"keep-spans"`
	MaxErrors int    `koanf:"max-errors"`
	LogFormat string `koanf:"log-format"`
}

func defaultConfig() Config {
	return Config{
		Tolerant:  true,
		KeepSpans: true,
		MaxErrors: 0,
		LogFormat: "json",
	}
}

// loadConfig builds a Config from defaults, an optional config file, and
// the flags already registered on flags.
func loadConfig(configFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	def := defaultConfig()
	if err := k.Load(structProvider{cfg: def}, nil); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").With("operation", "load defaults").Wrap(err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("operation", "load config file").With("path", configFile).Wrap(err)
		}
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").With("operation", "load flag overrides").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").With("operation", "unmarshal config").Wrap(err)
	}
	return cfg, nil
}

// structProvider adapts a Config value to koanf.Provider so defaultConfig
// can seed the koanf tree before the file and flag layers are applied.
type structProvider struct {
	cfg Config
}

func (s structProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("structProvider does not support ReadBytes")
}

func (s structProvider) Read() (map[string]interface{}, error) {
	return map[string]interface{}{
		"tolerant":   s.cfg.Tolerant,
		"keep-spans": s.cfg.KeepSpans,
		"max-errors": s.cfg.MaxErrors,
		"log-format": s.cfg.LogFormat,
	}, nil
}
