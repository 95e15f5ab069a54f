package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/scdig/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger, Input: os.Stdin})

	app := &cli.Command{
		Name:     "scdig",
		Usage:    "Dig store and download links out of SoundCloud playlists",
		Version:  "0.3.0",
		Flags:    globalFlags(),
		Before:   runner.Before,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted")
			os.Exit(130)
		}
		logger.Fatalf("application error: %v", err)
	}
}
