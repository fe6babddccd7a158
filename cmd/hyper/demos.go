package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hyper/internal/demo"
)

func demosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demos",
		Short: "List the demo apps",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range demo.Names() {
				d, _ := demo.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", d.Name, d.Description)
			}
		},
	}
}
