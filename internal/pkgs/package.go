// Package pkgs models the packages discovered from manifest files and the
// scopes they impose on the directory tree.
package pkgs

// ManifestExt is the manifest file extension; a file named <name>.pkg marks
// its directory as the root of package <name>.
const ManifestExt = ".pkg"

// Package is one resolved package record. Names are unique across a project
// tree.
type Package struct {
	Name         string
	Dir          string
	ManifestPath string

	// Version is the manifest's optional version field.
	Version string

	// Requires lists the names of packages this package depends on directly.
	Requires []string

	// Archives lists archive file paths relative to Dir.
	Archives []string
}

// Scope identifies the package a directory belongs to for dependency
// visibility. The zero value is the global default scope.
type Scope struct {
	Pkg *Package
}

// Global returns the default scope for directories outside every package.
func Global() Scope { return Scope{} }

// IsGlobal reports whether s is the default scope.
func (s Scope) IsGlobal() bool { return s.Pkg == nil }

func (s Scope) String() string {
	if s.Pkg == nil {
		return "<global>"
	}
	return s.Pkg.Name
}
