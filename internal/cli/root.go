// Package cli implements pintellctl, the offline companion to the API
// server. It runs the drying estimator and the notification engine against
// recorded YAML input.
package cli

import (
	"fmt"
	"os"

	"PintellAPI/internal/logger"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pintellctl",
	Short: "pintellctl - offline tools for Pintell moisture devices",
	Long: `pintellctl runs the Pintell drying estimator and notification
engine against recorded readings, without a database or broker.

Use it to check how a session would be estimated or which alerts a
sequence of readings would fire for a given set of notification settings.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine decisions to stderr")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(replayCmd)
}

func newLogger() *logger.Logger {
	if !verbose {
		return logger.Discard()
	}
	log, err := logger.New(logger.Config{
		Level:     logger.DEBUG,
		Mode:      logger.MINIMAL,
		UseColors: false,
		Output:    os.Stderr,
	})
	if err != nil {
		return logger.Discard()
	}
	return log
}
