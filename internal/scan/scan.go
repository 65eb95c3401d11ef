// Package scan walks a project tree once, building the immutable directory
// tree, discovering package manifests and honoring per-directory ignore
// markers.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grist-build/grist/internal/ctxlog"
	"github.com/grist-build/grist/internal/pkgs"
)

const (
	// BuildFileName is the per-directory build description file.
	BuildFileName = "Gristfile"

	// IgnoreMarkerName is the per-directory marker listing child names to
	// exclude from the load, one per line.
	IgnoreMarkerName = ".gristignore"
)

// Dir is one node of the scanned directory tree. The tree is built once per
// load and not mutated afterwards.
type Dir struct {
	Path         string
	Files        []string
	Children     []*Dir
	HasBuildFile bool
}

// Result is the outcome of a project scan.
type Result struct {
	Root     *Dir
	Packages map[string]*pkgs.Package

	// Ignored holds the roots of every pruned subtree, pre-seeded entries
	// included.
	Ignored map[string]bool
}

// DuplicatePackageError reports two or more manifests reducing to the same
// package name.
type DuplicatePackageError struct {
	Name      string
	Manifests []string
}

func (e *DuplicatePackageError) Error() string {
	return fmt.Sprintf("duplicate manifests for package %q: %s", e.Name, strings.Join(e.Manifests, ", "))
}

// Scan traverses the tree rooted at root top-down, depth-first. ignored may
// pre-seed subtree paths to exclude; it may be nil.
func Scan(ctx context.Context, root string, ignored map[string]bool) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	res := &Result{Ignored: make(map[string]bool)}
	for path := range ignored {
		res.Ignored[filepath.Clean(path)] = true
	}

	var candidates []string // manifest paths, traversal order
	node, err := walk(ctx, filepath.Clean(root), res, &candidates)
	if err != nil {
		return nil, err
	}
	res.Root = node
	logger.Debug("Project tree scanned.", "root", root, "manifests", len(candidates))

	byName := make(map[string][]string)
	for _, path := range candidates {
		name := strings.TrimSuffix(filepath.Base(path), pkgs.ManifestExt)
		byName[name] = append(byName[name], path)
	}

	res.Packages = make(map[string]*pkgs.Package, len(byName))
	for name, manifests := range byName {
		if len(manifests) > 1 {
			sort.Strings(manifests)
			return nil, &DuplicatePackageError{Name: name, Manifests: manifests}
		}
		pkg, err := pkgs.ReadManifest(manifests[0])
		if err != nil {
			return nil, err
		}
		res.Packages[name] = pkg
	}
	return res, nil
}

func walk(ctx context.Context, dir string, res *Result, candidates *[]string) (*Dir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	// The ignore marker applies before anything else in the directory is
	// considered, so an ignored child contributes nothing at all.
	excluded, err := readIgnoreMarker(dir, entries)
	if err != nil {
		return nil, err
	}
	for name := range excluded {
		res.Ignored[filepath.Join(dir, name)] = true
	}

	node := &Dir{Path: dir}
	for _, entry := range entries {
		name := entry.Name()
		childPath := filepath.Join(dir, name)
		if excluded[name] || res.Ignored[childPath] {
			res.Ignored[childPath] = true
			continue
		}

		if entry.IsDir() {
			child, err := walk(ctx, childPath, res, candidates)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			continue
		}

		node.Files = append(node.Files, name)
		switch {
		case name == BuildFileName:
			node.HasBuildFile = true
		case strings.HasSuffix(name, pkgs.ManifestExt):
			*candidates = append(*candidates, childPath)
		}
	}
	return node, nil
}

func readIgnoreMarker(dir string, entries []os.DirEntry) (map[string]bool, error) {
	present := false
	for _, entry := range entries {
		if !entry.IsDir() && entry.Name() == IgnoreMarkerName {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, IgnoreMarkerName))
	if err != nil {
		return nil, fmt.Errorf("read ignore marker in %s: %w", dir, err)
	}

	excluded := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		excluded[line] = true
	}
	return excluded, nil
}
