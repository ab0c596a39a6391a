// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/cedarcst/internal/obslog"
)

// Global flags available to all subcommands.
var (
	configFile string
	tolerant   bool
	keepSpans  bool
	maxErrors  int
	logFormat  string
)

// NewRootCmd creates the root command for the cedarparse CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cedarparse",
		Short: "cedarparse - a tolerant parser for the Cedar policy language",
		Long: `cedarparse reads Cedar policy source and produces a source-span
annotated concrete syntax tree, recovering from syntax errors so a single
pass can report every mistake in a policy set rather than stopping at the
first one.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			obslog.SetDefault("cedarparse", version, cfg.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	cmd.PersistentFlags().BoolVar(&tolerant, "tolerant", true, "recover from syntax errors instead of stopping at the first one")
	cmd.PersistentFlags().BoolVar(&keepSpans, "keep-spans", true, "retain source spans on CST nodes")
	cmd.PersistentFlags().IntVar(&maxErrors, "max-errors", 0, "report at most this many errors per file; parsing still recovers past the rest (0 = unlimited)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log output format: json or text")

	cmd.AddCommand(NewParseCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewDSLCheckCmd())

	return cmd
}
