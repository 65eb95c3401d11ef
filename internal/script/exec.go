package script

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/grist-build/grist/internal/buildctx"
	"github.com/grist-build/grist/internal/ctxlog"
	"github.com/grist-build/grist/internal/pkgs"
	"github.com/grist-build/grist/internal/statement"
)

// DriverKey is the toolchain entry holding the compile-and-run driver
// command for build scripts.
const DriverKey = "driver"

// ExecError reports a script driver subprocess exiting non-zero.
type ExecError struct {
	Script string
	Output string
	Err    error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("build script %s failed: %v", e.Script, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

// MissingOutputError reports a script that ran to completion without ever
// calling the send entry point.
type MissingOutputError struct {
	Script string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("build script %s produced no output: the script must call send() with its build description", e.Script)
}

// Executor turns one script build file into parsed statements. It is the
// only place that touches the toolchain subprocess; swapping the scripting
// mechanism means swapping this type.
type Executor struct {
	Ctx      *buildctx.Context
	Resolver pkgs.Resolver

	// Root is the project root scripts are addressed relative to.
	Root string
}

// Run executes the full script pipeline: requirement extraction, wrapper
// generation, dependency resolution, driver invocation, output validation
// and result parsing. Any failure is fatal to the load.
func (e *Executor) Run(ctx context.Context, scriptPath string) ([]statement.Statement, error) {
	logger := ctxlog.FromContext(ctx).With("script", scriptPath)

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("read build script: %w", err)
	}

	requests, err := ExtractRequires(scriptPath, src)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(e.Root, scriptPath)
	if err != nil {
		return nil, fmt.Errorf("build script %s is outside the project root %s: %w", scriptPath, e.Root, err)
	}
	outputPath := e.Ctx.OutputPath(rel)
	wrapperPath := e.Ctx.WrapperPath(rel)

	if err := os.MkdirAll(filepath.Dir(wrapperPath), 0o755); err != nil {
		return nil, fmt.Errorf("create generated dir: %w", err)
	}
	wrapper := GenerateWrapper(scriptPath, src, outputPath, e.Ctx)
	if err := os.WriteFile(wrapperPath, wrapper, 0o644); err != nil {
		return nil, fmt.Errorf("write wrapper: %w", err)
	}

	scriptDir := filepath.Dir(scriptPath)
	var resolved []pkgs.Resolved
	if len(requests) > 0 {
		resolved, err = e.Resolver.Closure(ctx, requests, scriptDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("Script library closure resolved.", "requests", requests, "packages", len(resolved))
	}

	argv, err := e.assembleArgv(resolved, scriptDir, wrapperPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("Invoking script driver.", "argv", argv, "dir", scriptDir)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = scriptDir
	cmd.Env = e.Ctx.Environ()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &ExecError{Script: scriptPath, Output: string(out), Err: err}
	}

	if _, err := os.Stat(outputPath); err != nil {
		return nil, &MissingOutputError{Script: scriptPath}
	}

	generated, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read script output: %w", err)
	}
	return statement.Parse(outputPath, generated)
}

// assembleArgv builds the driver invocation: driver command, internal
// include dir, one include flag per resolved package dir (deduplicated),
// archives relative to the script dir in resolution order, then the wrapper
// source relative to the script dir.
func (e *Executor) assembleArgv(resolved []pkgs.Resolved, scriptDir, wrapperPath string) ([]string, error) {
	driver, ok := e.Ctx.ToolchainValue(DriverKey)
	if !ok {
		return nil, fmt.Errorf("build context %s has no %q toolchain entry", e.Ctx.Name, DriverKey)
	}
	argv, err := shellwords.Parse(driver)
	if err != nil {
		return nil, fmt.Errorf("parse %q toolchain entry: %w", DriverKey, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%q toolchain entry is empty", DriverKey)
	}

	if e.Ctx.RuntimeInclude != "" {
		argv = append(argv, "-I", e.Ctx.RuntimeInclude)
	}

	seen := make(map[string]bool)
	for _, r := range resolved {
		if seen[r.IncludeDir] {
			continue
		}
		seen[r.IncludeDir] = true
		argv = append(argv, "-I", r.IncludeDir)
	}
	for _, r := range resolved {
		for _, archive := range r.Archives {
			argv = append(argv, relativeTo(scriptDir, archive))
		}
	}
	return append(argv, relativeTo(scriptDir, wrapperPath)), nil
}

func relativeTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return rel
}
