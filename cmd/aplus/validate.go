package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/aplus/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <match-file>",
	Short: "Check a match file for consistency",
	Long:  `Reports unknown keys, shared key bindings, invalid thresholds and scripts naming unknown players.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.Validate(args[0], cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Match file is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
