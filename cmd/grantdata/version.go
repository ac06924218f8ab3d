package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grantdata/pkg/types"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grantdata version and the PDF text backends it supports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "grantdata %s\n", version)
	fmt.Fprintf(w, "PDF backends: %s (built in), %s (poppler-utils)\n", types.BackendNative, types.BackendPoppler)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
