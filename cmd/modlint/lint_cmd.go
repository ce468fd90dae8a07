package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gts-modlint/pkg/model"
)

func newLintCmd() *cobra.Command {
	var flags lintFlags
	var jsonOutput bool
	var failOnViolations bool

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check module imports and exports in JavaScript and TypeScript files",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}

			s, err := newSession(flags, paths)
			if err != nil {
				return err
			}
			report, err := s.linter.LintPaths(cmd.Context(), paths)
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := emitJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				newPrinter(cmd.OutOrStdout()).report(report)
			}
			return reportExit(report, failOnViolations)
		},
	}

	addLintFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.fix, "fix", false, "apply automatic fixes in place")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&failOnViolations, "fail-on-violations", true, "exit with code 3 when problems remain")
	return cmd
}

func addLintFlags(cmd *cobra.Command, flags *lintFlags) {
	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to modlint.toml (default: nearest above the first path)")
	cmd.Flags().StringArrayVar(&flags.rules, "rule", nil, "run only the named rule (repeatable)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "skip the results cache")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "parallel workers (default $MODLINT_WORKERS or GOMAXPROCS)")
}

func reportExit(report *model.Report, failOnViolations bool) error {
	if errs := report.ErrorCount(); errs > 0 {
		return exitCodeError{code: exitFileErrors, err: fmt.Errorf("%d files failed to lint", errs)}
	}
	if failOnViolations && report.Count > 0 {
		return exitCodeError{code: exitViolations, err: fmt.Errorf("%d problems found", report.Count)}
	}
	return nil
}
