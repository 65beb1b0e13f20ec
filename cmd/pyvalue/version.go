package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emretezel/pyvalue-sub000/internal/common"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			common.LoadVersionFromFile()
			fmt.Fprintln(cmd.OutOrStdout(), common.GetFullVersion())
		},
	}
}
