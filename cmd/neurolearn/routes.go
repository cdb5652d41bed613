package main

import (
	"fmt"

	"github.com/neurolearn/shell/view"
	"github.com/spf13/cobra"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the page table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, e := range view.DefaultTable(nil) {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", e.Path, e.Name); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
