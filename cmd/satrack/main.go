package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "satrack",
	Short: "Satellite ground-track computation service and CLI",
	Long: `satrack resolves satellite identifiers (names, aliases, NORAD catalog
numbers) against the CelesTrak catalog, fetches and validates two-line element
sets, and computes time-stepped ground tracks with optional visibility
footprints.

Run "satrack serve" for the HTTP service or "satrack track" for a one-shot
computation printed to stdout.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, trackCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger: JSON to stdout, level from
// SATRACK_LOG_LEVEL (debug/info/warn/error, default info).
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("SATRACK_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
