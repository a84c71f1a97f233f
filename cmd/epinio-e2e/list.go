package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/epinio/epinio-e2e/internal/scenario"
)

var listConstantsFlag bool

var listCmd = &cobra.Command{
	Use:   "list [suite]",
	Short: "List suites and their case labels",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := scenario.NewRegistry(scenario.Params{SystemDomain: "<system_domain>"})
		names := reg.Suites()
		if len(args) == 1 {
			names = args
		}
		out := cmd.OutOrStdout()
		for _, name := range names {
			s, err := reg.Suite(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", s.Name)
			for _, label := range s.Labels() {
				fmt.Fprintf(out, "  %s\n", label)
			}
			if s.Cleanup != nil {
				fmt.Fprintf(out, "  (cleanup: %s)\n", s.Cleanup.Name)
			}
			if listConstantsFlag && len(s.Constants) > 0 {
				keys := make([]string, 0, len(s.Constants))
				for k := range s.Constants {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s = %q\n", k, s.Constants[k])
				}
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listConstantsFlag, "constants", false, "Also print the constants each suite uses")
}
