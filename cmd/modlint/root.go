package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gts-modlint/internal/logging"
)

const version = "0.1.0"

func newRootCmd() *cobra.Command {
	var logLevel string
	var logJSON bool

	cmd := &cobra.Command{
		Use:           "modlint",
		Short:         "Lint JavaScript module imports and exports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				logLevel = os.Getenv(logging.LevelEnv)
			}
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.Setup(cmd.ErrOrStderr(), level, logJSON)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default $"+logging.LevelEnv+" or warn)")
	cmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON lines")

	cmd.AddCommand(newLintCmd())
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newWatchCmd())
	return cmd
}
