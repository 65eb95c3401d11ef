// Package cli parses command-line arguments into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/grist-build/grist/internal/app"
)

// ExitError carries a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a validated app
// config, a boolean indicating a clean early exit, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("grist", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
grist - build-description resolution engine.

Usage:
  grist [options] [PROJECT_ROOT]

Arguments:
  PROJECT_ROOT
    Path to the project tree to resolve. Defaults to the current directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	rootFlag := flagSet.String("root", "", "Path to the project root.")
	contextFlag := flagSet.String("context", "", "Path to the build-context HCL file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	root := *rootFlag
	if root == "" && flagSet.NArg() > 0 {
		root = flagSet.Arg(0)
	}
	if root == "" {
		root = "."
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		ProjectRoot: root,
		ContextFile: *contextFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}
