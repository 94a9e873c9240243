package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "mines",
	Short: "Minesweeper board engine",
	Long: `mines hosts Minesweeper games over HTTP and websockets and replays
recorded games.

Serve games
	mines serve --config mines.yaml

Replay a recorded game
	mines replay game.yaml
`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
