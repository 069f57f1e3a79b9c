package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ternarybob/banner"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			b := banner.New()
			b.PrintTopLine()
			b.PrintText("pdfchapters " + version)
			b.PrintBottomLine()

			fmt.Fprintf(cmd.OutOrStdout(), "pdfchapters version %s\n", version)
		},
	}
}
