package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aplus",
	Short: "A Plus Or Fail: a party game of traps, goals and bragging rights",
	Long: `aplus plays "A Plus Or Fail" matches described by a YAML or JSON match file.
Players pick and place objects each round, race through the arena, and the first to pass
the map's score threshold (or the best after the last round) wins.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Log lifecycle steps and transitions to stderr")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
