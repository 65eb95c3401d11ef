package pkgs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, name, src string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name+ManifestExt)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestReadManifest(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		dir := t.TempDir()
		path := writeManifest(t, dir, "netkit", `
version  = "0.3"
requires = ["core", "ioloop"]
archives = ["libnetkit.a"]
`)

		pkg, err := ReadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "netkit", pkg.Name)
		assert.Equal(t, dir, pkg.Dir)
		assert.Equal(t, "0.3", pkg.Version)
		assert.Equal(t, []string{"core", "ioloop"}, pkg.Requires)
		assert.Equal(t, []string{"libnetkit.a"}, pkg.Archives)
	})

	t.Run("empty manifest", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "bare", "")
		pkg, err := ReadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "bare", pkg.Name)
		assert.Empty(t, pkg.Version)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "extra", `
version = "1.0"
author  = "someone"
`)
		pkg, err := ReadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "1.0", pkg.Version)
	})

	t.Run("bad field type", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), "bad", `requires = "core"`)
		_, err := ReadManifest(path)
		assert.ErrorContains(t, err, "expected a list of strings")
	})
}

func TestScope(t *testing.T) {
	assert.True(t, Global().IsGlobal())
	assert.Equal(t, "<global>", Global().String())

	s := Scope{Pkg: &Package{Name: "core"}}
	assert.False(t, s.IsGlobal())
	assert.Equal(t, "core", s.String())
}

func TestClosure(t *testing.T) {
	packages := map[string]*Package{
		"a": {Name: "a", Dir: "/p/a", Requires: []string{"c"}, Archives: []string{"liba.a"}},
		"b": {Name: "b", Dir: "/p/b", Requires: []string{"c"}},
		"c": {Name: "c", Dir: "/p/c", Archives: []string{"libc.a", "libc-extra.a"}},
	}
	r := NewMapResolver(packages)

	t.Run("order and dedup", func(t *testing.T) {
		got, err := r.Closure(context.Background(), []string{"a", "b"}, "src/app")
		require.NoError(t, err)

		names := make([]string, 0, len(got))
		for _, res := range got {
			names = append(names, res.Pkg.Name)
		}
		// Requests first in request order, shared dependency once.
		assert.Equal(t, []string{"a", "b", "c"}, names)
	})

	t.Run("archive paths are absolute to the package dir", func(t *testing.T) {
		got, err := r.Closure(context.Background(), []string{"c"}, "src/app")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "/p/c", got[0].IncludeDir)
		assert.Equal(t, []string{filepath.Join("/p/c", "libc.a"), filepath.Join("/p/c", "libc-extra.a")}, got[0].Archives)
	})

	t.Run("unknown package names the requester", func(t *testing.T) {
		_, err := r.Closure(context.Background(), []string{"missing"}, "src/app")
		require.Error(t, err)
		assert.ErrorContains(t, err, `package "missing" required by src/app`)
	})
}
