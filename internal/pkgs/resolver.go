package pkgs

import (
	"context"
	"fmt"
	"path/filepath"
)

// Resolved is one package in a resolved closure, with the paths the caller
// needs to compile against it.
type Resolved struct {
	Pkg        *Package
	IncludeDir string
	// Archives are absolute archive paths, in the package's declared order.
	Archives []string
}

// Resolver resolves a set of direct library requests into the ordered
// transitive closure of packages that satisfies them.
type Resolver interface {
	Closure(ctx context.Context, requests []string, requiredBy string) ([]Resolved, error)
}

// MapResolver resolves closures against a fixed package map, following each
// package's manifest "requires" list breadth-first. Output order is
// first-seen order: the requests in request order, then their dependencies.
type MapResolver struct {
	packages map[string]*Package
}

// NewMapResolver builds a resolver over the given package map.
func NewMapResolver(packages map[string]*Package) *MapResolver {
	return &MapResolver{packages: packages}
}

// Closure implements Resolver. requiredBy names the requesting directory and
// appears in diagnostics only.
func (r *MapResolver) Closure(ctx context.Context, requests []string, requiredBy string) ([]Resolved, error) {
	var (
		out  []Resolved
		seen = make(map[string]bool)
	)

	queue := append([]string(nil), requests...)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		pkg, ok := r.packages[name]
		if !ok {
			return nil, fmt.Errorf("package %q required by %s: no such package", name, requiredBy)
		}

		archives := make([]string, 0, len(pkg.Archives))
		for _, a := range pkg.Archives {
			archives = append(archives, filepath.Join(pkg.Dir, a))
		}
		out = append(out, Resolved{Pkg: pkg, IncludeDir: pkg.Dir, Archives: archives})
		queue = append(queue, pkg.Requires...)
	}
	return out, nil
}
