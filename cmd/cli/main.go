package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/polysched/polysched/internal/app"
	"github.com/polysched/polysched/internal/cli"
	"github.com/polysched/polysched/internal/hcl"
)

// main is the entrypoint for the polysched driver.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loader := hcl.NewLoader()
	driver := app.NewApp(outW, cfg, loader)

	return driver.Run(context.Background())
}
