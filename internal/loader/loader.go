// Package loader resolves every build-description unit of a scanned project
// tree: literal declarations parse in place, script build files run through
// the script executor concurrently.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/grist-build/grist/internal/ctxlog"
	"github.com/grist-build/grist/internal/pkgs"
	"github.com/grist-build/grist/internal/scan"
	"github.com/grist-build/grist/internal/statement"
)

// DeclarativeMarker opens literal build files. A build file without it is a
// script in the toolchain language.
const DeclarativeMarker = "#%grist"

// Unit is one directory's resolved build description.
type Unit struct {
	Dir        string
	Scope      pkgs.Scope
	Statements []statement.Statement
}

// ScriptRunner is the narrow contract for turning a script build file into
// statements; see the script package for the real implementation.
type ScriptRunner interface {
	Run(ctx context.Context, scriptPath string) ([]statement.Statement, error)
}

// Loader combines the scanned tree, scope resolution and the script runner
// into the final unit list.
type Loader struct {
	Scripts ScriptRunner
}

type pendingScript struct {
	index int
	path  string
}

// Load walks the scanned tree top-down, threading each directory's
// inherited scope, and returns one unit per build file. Script units run as
// independent concurrent tasks; Load returns only after every task has
// finished and reports the first failure without cancelling siblings.
func (l *Loader) Load(ctx context.Context, res *scan.Result) ([]Unit, error) {
	logger := ctxlog.FromContext(ctx)

	scopeByDir := make(map[string]pkgs.Scope, len(res.Packages))
	for _, pkg := range res.Packages {
		scopeByDir[pkg.Dir] = pkgs.Scope{Pkg: pkg}
	}

	var (
		units   []Unit
		scripts []pendingScript
	)
	var walk func(d *scan.Dir, scope pkgs.Scope) error
	walk = func(d *scan.Dir, scope pkgs.Scope) error {
		if own, ok := scopeByDir[d.Path]; ok {
			scope = own
		}
		if d.HasBuildFile {
			path := filepath.Join(d.Path, scan.BuildFileName)
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read build file: %w", err)
			}
			if IsDeclarative(src) {
				stmts, err := statement.Parse(path, src)
				if err != nil {
					return err
				}
				units = append(units, Unit{Dir: d.Path, Scope: scope, Statements: stmts})
			} else {
				units = append(units, Unit{Dir: d.Path, Scope: scope})
				scripts = append(scripts, pendingScript{index: len(units) - 1, path: path})
			}
		}
		for _, child := range d.Children {
			if err := walk(child, scope); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(res.Root, pkgs.Global()); err != nil {
		return nil, err
	}
	logger.Debug("Build files classified.", "units", len(units), "scripts", len(scripts))

	// Launch every script task, join all, report the first failure. A
	// failing sibling does not cancel the others; they run to completion.
	var g errgroup.Group
	for _, s := range scripts {
		s := s
		g.Go(func() error {
			stmts, err := l.Scripts.Run(ctx, s.path)
			if err != nil {
				return err
			}
			units[s.index].Statements = stmts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// IsDeclarative classifies a build file by its leading content: the first
// non-blank line must open with the declarative marker.
func IsDeclarative(src []byte) bool {
	for _, line := range bytes.Split(src, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		return bytes.HasPrefix(trimmed, []byte(DeclarativeMarker))
	}
	return false
}
