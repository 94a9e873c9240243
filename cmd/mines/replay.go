package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay a recorded game and print its final state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		script, err := replay.LoadScript(in)
		if err != nil {
			return err
		}
		result, err := replay.Run(script)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		out, err := result.Serialize()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
