package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/aplus/internal/cli"
)

var playCmd = &cobra.Command{
	Use:   "play <match-file>",
	Short: "Play a match",
	Long: `Plays the match described by the file. By default the match is driven by the file's
script section; --interactive reads player keys from the terminal instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.MatchOptions{Path: args[0], Out: cmd.OutOrStdout()}
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.LogFormat, _ = cmd.Flags().GetString("log-format")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Interactive, _ = cmd.Flags().GetBool("interactive")
		opts.Strict, _ = cmd.Flags().GetBool("strict")
		opts.Queued, _ = cmd.Flags().GetBool("queued")
		opts.Tick, _ = cmd.Flags().GetDuration("tick")
		opts.Serve, _ = cmd.Flags().GetString("serve")
		opts.Hold, _ = cmd.Flags().GetBool("hold")
		opts.Mermaid, _ = cmd.Flags().GetString("mermaid")
		opts.Redis, _ = cmd.Flags().GetString("redis")
		return cli.RunMatch(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolP("interactive", "i", false, "Read player keys from the terminal")
	playCmd.Flags().BoolP("quiet", "q", false, "Print nothing but errors")
	playCmd.Flags().Bool("strict", false, "Fail on out-of-order lifecycle steps")
	playCmd.Flags().Bool("queued", false, "Apply every stack request in order instead of only the last")
	playCmd.Flags().Duration("tick", 0, "Frame interval (default 16ms)")
	playCmd.Flags().String("serve", "", "Serve the scene stack, matches and metrics on this address, e.g. :8080")
	playCmd.Flags().Bool("hold", false, "Keep serving after the match until interrupted")
	playCmd.Flags().String("mermaid", "", "Write a Mermaid chart of the transitions to this file")
	playCmd.Flags().String("redis", "", "Save the match record to the Redis server at this address")
}
