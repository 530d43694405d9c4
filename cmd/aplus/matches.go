package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/aplus/internal/cli"
)

var matchesCmd = &cobra.Command{
	Use:   "matches [id]",
	Short: "List finished matches, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("redis")
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		return cli.ShowMatches(cmd.Context(), addr, id, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)

	matchesCmd.Flags().String("redis", "localhost:6379", "Address of the Redis server holding match records")
}
