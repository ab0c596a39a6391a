// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/cedarcst/internal/policydsl"
)

// NewDSLCheckCmd creates the `dsl-check` subcommand: parse a file
// through the narrower, retained policydsl grammar rather than the
// Cedar CST parser. Useful for validating the legacy ABAC policy
// format independently of Cedar policy source.
func NewDSLCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dsl-check [files...]",
		Short: "Validate policy source against the legacy policydsl grammar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDSLCheck(cmd, args)
		},
	}
	return cmd
}

func runDSLCheck(cmd *cobra.Command, files []string) error {
	var failed []string
	for _, path := range files {
		text, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's own argv
		if err != nil {
			return oops.Code("FILE_READ_FAILED").With("path", path).Wrap(err)
		}

		if _, err := policydsl.Parse(string(text)); err != nil {
			cmd.Printf("%s: %v\n", path, err)
			failed = append(failed, path)
			continue
		}
		cmd.Printf("%s: ok\n", path)
	}
	if len(failed) > 0 {
		return oops.Code("DSL_VALIDATION_FAILED").With("failed_files", failed).Errorf("%d of %d file(s) failed policydsl validation", len(failed), len(files))
	}
	return nil
}
