package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// collectPaths flattens a tree into its directory paths.
func collectPaths(d *Dir) []string {
	out := []string{d.Path}
	for _, c := range d.Children {
		out = append(out, collectPaths(c)...)
	}
	return out
}

func TestScanTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Gristfile"), "")
	writeFile(t, filepath.Join(root, "core", "core.pkg"), `version = "1.0"`)
	writeFile(t, filepath.Join(root, "core", "Gristfile"), "")
	writeFile(t, filepath.Join(root, "core", "inner", "notes.txt"), "")

	res, err := Scan(context.Background(), root, nil)
	require.NoError(t, err)

	assert.True(t, res.Root.HasBuildFile)
	require.Len(t, res.Root.Children, 1)
	core := res.Root.Children[0]
	assert.True(t, core.HasBuildFile)
	assert.Contains(t, core.Files, "core.pkg")

	require.Contains(t, res.Packages, "core")
	assert.Equal(t, "1.0", res.Packages["core"].Version)
	assert.Equal(t, filepath.Join(root, "core"), res.Packages["core"].Dir)
}

func TestIgnoreMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, IgnoreMarkerName), "vendor\n# a comment\n\nstale\n")
	writeFile(t, filepath.Join(root, "vendor", "dep.pkg"), "")
	writeFile(t, filepath.Join(root, "vendor", "Gristfile"), "")
	writeFile(t, filepath.Join(root, "vendor", IgnoreMarkerName), "src\n")
	writeFile(t, filepath.Join(root, "stale", "old.pkg"), "")
	writeFile(t, filepath.Join(root, "src", "app.pkg"), "")

	res, err := Scan(context.Background(), root, nil)
	require.NoError(t, err)

	// Nothing under an ignored entry appears anywhere in the result.
	for _, path := range collectPaths(res.Root) {
		assert.NotContains(t, path, "vendor")
		assert.NotContains(t, path, "stale")
	}
	assert.NotContains(t, res.Packages, "dep")
	assert.NotContains(t, res.Packages, "old")
	assert.Contains(t, res.Packages, "app")

	// An ignored directory's own marker is opaque too: "src" elsewhere in
	// the tree is unaffected by vendor/.gristignore.
	assert.True(t, res.Ignored[filepath.Join(root, "vendor")])
	assert.True(t, res.Ignored[filepath.Join(root, "stale")])
	assert.False(t, res.Ignored[filepath.Join(root, "src")])
}

func TestPreSeededIgnored(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gen", "gen.pkg"), "")
	writeFile(t, filepath.Join(root, "src", "app.pkg"), "")

	res, err := Scan(context.Background(), root, map[string]bool{filepath.Join(root, "gen"): true})
	require.NoError(t, err)
	assert.NotContains(t, res.Packages, "gen")
	assert.Contains(t, res.Packages, "app")
}

func TestDuplicatePackageManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "core.pkg"), "")
	writeFile(t, filepath.Join(root, "b", "core.pkg"), "")

	_, err := Scan(context.Background(), root, nil)
	var dup *DuplicatePackageError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "core", dup.Name)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "core.pkg"),
		filepath.Join(root, "b", "core.pkg"),
	}, dup.Manifests)
	assert.Contains(t, dup.Error(), filepath.Join(root, "a", "core.pkg"))
	assert.Contains(t, dup.Error(), filepath.Join(root, "b", "core.pkg"))
}
