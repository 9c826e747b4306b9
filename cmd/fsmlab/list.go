package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enetx/fsmlab/internal/demo"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range demo.Scenarios() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-16s %s\n", s.Machine, s.Name, s.Description)
			}
		},
	}
}
