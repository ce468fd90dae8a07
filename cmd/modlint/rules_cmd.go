package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gts-modlint/pkg/model"
	"github.com/odvcencio/gts-modlint/pkg/rules"
)

func newRulesCmd() *cobra.Command {
	var jsonOutput bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := rules.NewRegistry(nil).All()
			infos := make([]model.RuleInfo, 0, len(all))
			for _, rule := range all {
				infos = append(infos, rule.Meta().Info())
			}

			if jsonOutput {
				return emitJSON(cmd.OutOrStdout(), infos)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RULE\tTYPE\tRECOMMENDED\tFIXABLE\tDESCRIPTION")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n", info.Name, info.Type, info.Recommended, info.Fixable, info.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if verbose {
				for _, info := range infos {
					ids := make([]string, 0, len(info.Messages))
					for id := range info.Messages {
						ids = append(ids, id)
					}
					sort.Strings(ids)
					for _, id := range ids {
						fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %s\n", info.Name, id, info.Messages[id])
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "also list message templates")
	return cmd
}
