package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "skoll",
	Short:         "Batch limit-order matching engine for spot pairs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "pretty",
		"log format: json or pretty")
	rootCmd.AddCommand(runCmd, genCmd)
}

// newLogger builds the process logger from the persistent flags. Logging
// configuration never affects engine semantics.
func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("unknown log level %q", logLevel)
	}

	var out io.Writer
	switch logFormat {
	case "json":
		out = os.Stderr
	case "pretty":
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", logFormat)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
