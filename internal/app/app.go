// Package app wires the scanner, package resolver, loader and script
// executor into one resolution run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/grist-build/grist/internal/buildctx"
	"github.com/grist-build/grist/internal/ctxlog"
	"github.com/grist-build/grist/internal/loader"
	"github.com/grist-build/grist/internal/pkgs"
	"github.com/grist-build/grist/internal/scan"
	"github.com/grist-build/grist/internal/script"
)

// App encapsulates one resolution run's dependencies and configuration.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp constructs an App with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, logW io.Writer) *App {
	return &App{
		outW:   outW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, logW),
		config: cfg,
	}
}

// Result is a fully resolved project.
type Result struct {
	Context  *buildctx.Context
	Packages map[string]*pkgs.Package
	Units    []loader.Unit
}

// Resolve loads the build context, scans the project tree and resolves
// every build-description unit. A load either fully succeeds or fails with
// the first diagnostic; there is no partial result.
func (a *App) Resolve(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger

	root, err := filepath.Abs(a.config.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	bctx, err := a.loadContext(root)
	if err != nil {
		return nil, err
	}
	logger.Debug("Build context loaded.", "context", bctx.Name, "generated_root", bctx.GeneratedRoot)

	// Generated artifacts must never feed back into discovery.
	ignored := map[string]bool{bctx.GeneratedRoot: true}
	scanned, err := scan.Scan(ctx, root, ignored)
	if err != nil {
		return nil, err
	}
	logger.Info("Project scanned.", "packages", len(scanned.Packages))

	executor := &script.Executor{
		Ctx:      bctx,
		Resolver: pkgs.NewMapResolver(scanned.Packages),
		Root:     root,
	}
	units, err := (&loader.Loader{Scripts: executor}).Load(ctx, scanned)
	if err != nil {
		return nil, err
	}
	logger.Info("Build descriptions resolved.", "units", len(units))

	return &Result{Context: bctx, Packages: scanned.Packages, Units: units}, nil
}

// Run resolves the project and prints a summary to the output writer.
func (a *App) Run(ctx context.Context) error {
	res, err := a.Resolve(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.outW, "context %s: %d packages, %d build-description units\n",
		res.Context.Name, len(res.Packages), len(res.Units))

	names := make([]string, 0, len(res.Packages))
	for name := range res.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pkg := res.Packages[name]
		if pkg.Version != "" {
			fmt.Fprintf(a.outW, "package %s %s (%s)\n", name, pkg.Version, pkg.Dir)
		} else {
			fmt.Fprintf(a.outW, "package %s (%s)\n", name, pkg.Dir)
		}
	}

	units := append([]loader.Unit(nil), res.Units...)
	sort.Slice(units, func(i, j int) bool { return units[i].Dir < units[j].Dir })
	for _, u := range units {
		fmt.Fprintf(a.outW, "unit %s scope=%s statements=%d\n", u.Dir, u.Scope, len(u.Statements))
	}
	return nil
}

func (a *App) loadContext(root string) (*buildctx.Context, error) {
	var (
		bctx *buildctx.Context
		err  error
	)
	if a.config.ContextFile != "" {
		bctx, err = buildctx.LoadFile(a.config.ContextFile)
		if err != nil {
			return nil, err
		}
	} else {
		bctx = &buildctx.Context{Name: "default"}
	}
	switch {
	case bctx.GeneratedRoot == "":
		bctx.GeneratedRoot = filepath.Join(root, ".grist")
	case !filepath.IsAbs(bctx.GeneratedRoot):
		bctx.GeneratedRoot = filepath.Join(root, bctx.GeneratedRoot)
	}
	return bctx, nil
}
