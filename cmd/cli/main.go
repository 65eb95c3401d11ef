package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/hcl/v2"

	"github.com/grist-build/grist/internal/app"
	"github.com/grist-build/grist/internal/cli"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		if diags, ok := err.(hcl.Diagnostics); ok {
			wr := hcl.NewDiagnosticTextWriter(os.Stderr, nil, 100, !color.NoColor)
			_ = wr.WriteDiagnostics(diags)
			os.Exit(1)
		}
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	gristApp := app.NewApp(outW, appConfig, os.Stderr)
	return gristApp.Run(context.Background())
}
