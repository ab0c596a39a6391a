// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/cedarcst/internal/obslog"
	"github.com/holomush/cedarcst/parser"
	"github.com/holomush/cedarcst/pkg/errutil"
	"github.com/holomush/cedarcst/reporter"
	"github.com/holomush/cedarcst/source"
)

// parseResult is the machine-readable shape printed by `cedarparse parse
// --json`: the CST alongside every recovery record the sink collected.
type parseResult struct {
	Policies any                       `json:"policies"`
	Errors   []reporter.RecoveryRecord `json:"errors"`
}

type parseConfig struct {
	jsonOutput bool
}

// NewParseCmd creates the `parse` subcommand: parse one or more Cedar
// policy files and report the resulting CST and any recovered errors.
func NewParseCmd() *cobra.Command {
	pc := &parseConfig{}

	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Parse Cedar policy source into a concrete syntax tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runParse(cmd, args, cfg, pc)
		},
	}

	cmd.Flags().BoolVar(&pc.jsonOutput, "json", false, "emit the CST and errors as JSON instead of a summary")

	return cmd
}

func runParse(cmd *cobra.Command, files []string, cfg Config, pc *parseConfig) error {
	var failed []string

	for _, path := range files {
		ctx := obslog.WithSource(context.Background(), path)

		text, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's own argv
		if err != nil {
			return oops.Code("FILE_READ_FAILED").With("path", path).Wrap(err)
		}

		src := source.New(path, string(text), cfg.KeepSpans)
		sink := reporter.NewHandler()
		capped := newCappedSink(sink, cfg.MaxErrors)

		tree := parser.New(string(text), src, capped, cfg.Tolerant).Parse()

		if pc.jsonOutput {
			result := parseResult{Policies: tree, Errors: sink.Records()}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return oops.Code("RESULT_ENCODE_FAILED").With("path", path).Wrap(err)
			}
		} else if sink.Empty() {
			cmd.Printf("%s: ok, %d polic(y/ies)\n", path, len(tree.Value.Items))
			slog.Default().InfoContext(ctx, "parsed policy file", "outcome", "clean", "policies", len(tree.Value.Items))
		} else {
			cmd.Printf("%s: %d error(s)\n", path, len(sink.Records()))
			for _, rec := range sink.Records() {
				cmd.Printf("  %s\n", rec.Error())
			}
		}

		if !sink.Empty() && !cfg.Tolerant {
			for _, rec := range sink.Records() {
				errutil.LogRecoveryRecord(slog.Default(), "policy file failed strict parsing", rec)
			}
			failed = append(failed, path)
		}
	}

	if len(failed) > 0 {
		return oops.Code("PARSE_FAILED").
			With("failed_files", failed).
			Errorf("%d of %d file(s) failed strict parsing", len(failed), len(files))
	}
	return nil
}

// cappedSink wraps a reporter.Sink and stops forwarding new records once
// a limit is reached. The underlying parser has no notion of a record
// budget (it always keeps recovering); capping only trims how many
// records reach the caller and, when a logger-backed sink is wrapped,
// how many get logged.
type cappedSink struct {
	reporter.Sink
	max     int
	dropped int
}

func newCappedSink(sink reporter.Sink, maxRecords int) reporter.Sink {
	if maxRecords <= 0 {
		return sink
	}
	return &cappedSink{Sink: sink, max: maxRecords}
}

func (c *cappedSink) Report(rec reporter.RecoveryRecord) {
	if len(c.Sink.Records()) >= c.max {
		c.dropped++
		return
	}
	c.Sink.Report(rec)
}
