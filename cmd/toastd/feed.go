package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/source"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Send toasts from stdin to a running daemon",
	Long: `feed reads toast entries from standard input and delivers each as a
freedesktop Notify call on the session bus, where a running daemon's
notification monitor picks them up.

Each line is either a plain summary or a JSON object:

  {"summary": "Deploy failed", "body": "exit status 1", "category": "error"}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		feeder := source.NewFeeder(os.Stdin, logger)
		sent, err := feeder.Run()
		if err != nil {
			return err
		}
		logger.Info("feed complete", "sent", sent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
}
