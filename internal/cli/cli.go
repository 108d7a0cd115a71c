// Package cli parses command-line arguments into the application config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/polysched/polysched/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("polysched", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
polysched - schedule polyhedral compute kernels and insert memory barriers.

Usage:
  polysched [options] [KERNEL_PATH]

Arguments:
  KERNEL_PATH
    Path to a single .hcl kernel description or a directory of them.

Options:
`)
		flagSet.PrintDefaults()
	}

	kernelFlag := flagSet.String("kernel", "", "Path to the kernel description file or directory.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	explainFlag := flagSet.Bool("explain", false, "On scheduling failure, replay the longest dead-end branch step by step.")
	noCacheFlag := flagSet.Bool("no-cache", false, "Disable the schedule cache.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *kernelFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg, err := app.NewConfig(app.Config{
		KernelPath: path,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Explain:    *explainFlag,
		NoCache:    *noCacheFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return cfg, false, nil
}
