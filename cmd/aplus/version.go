package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/aplus"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of aplus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aplus version %s\n", strings.TrimSpace(aplus.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
