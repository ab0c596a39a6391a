// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

// Package main is the entry point for the cedarparse CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/holomush/cedarcst/internal/obslog"
	"github.com/holomush/cedarcst/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	obslog.SetDefault("cedarparse", version, "json")
	slog.Info("cedarparse starting", "version", version, "commit", commit, "date", date)

	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		errutil.LogError(slog.Default(), "cedarparse failed", err)
		os.Exit(1)
	}
}
