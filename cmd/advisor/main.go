// Command advisor is the chart analysis CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"chart-advisor/internal/cli"
	"chart-advisor/internal/config"
	apperrors "chart-advisor/internal/errors"
	"chart-advisor/internal/logging"
)

func main() {
	configDir := ""
	for i, arg := range os.Args {
		switch {
		case arg == "--config" && i+1 < len(os.Args):
			configDir = os.Args[i+1]
		case strings.HasPrefix(arg, "--config="):
			configDir = strings.TrimPrefix(arg, "--config=")
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		// User-input errors already printed a friendly message.
		if msg := apperrors.UserMessage(err); msg != "" {
			logger.Debug().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}
