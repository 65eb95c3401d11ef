package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grist-build/grist/internal/script"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeDriver installs a stand-in toolchain driver that reads the embedded
// output path out of the wrapper source and emits a declarative description.
func writeDriver(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "driver.sh")
	writeFile(t, path, `#!/bin/sh
for last in "$@"; do :; done
out=$(sed -n 's/^const char \*output_path = "\(.*\)";$/\1/p' "$last")
printf 'kind = "generated"\n' > "$out"
`)
	require.NoError(t, os.Chmod(path, 0o755))
	return path
}

func fixtureProject(t *testing.T) (root, contextFile string) {
	t.Helper()
	root = t.TempDir()

	writeFile(t, filepath.Join(root, "Gristfile"), "#%grist\nkind = \"project\"\n")
	writeFile(t, filepath.Join(root, "core", "core.pkg"), `version = "0.3"`)
	writeFile(t, filepath.Join(root, "core", "Gristfile"), "#%grist\nkind = \"library\"\n")
	writeFile(t, filepath.Join(root, "tools", "Gristfile"), "int main() { send(description); }\n")

	driver := writeDriver(t, root)
	contextFile = filepath.Join(root, "host.hcl")
	writeFile(t, contextFile, fmt.Sprintf(`
name = "host-debug"

toolchain {
  driver = %q
}
`, driver))
	return root, contextFile
}

func newTestApp(t *testing.T, root, contextFile string, outW *bytes.Buffer) *App {
	t.Helper()
	cfg, err := NewConfig(Config{ProjectRoot: root, ContextFile: contextFile, LogLevel: "error"})
	require.NoError(t, err)
	return NewApp(outW, cfg, os.Stderr)
}

func TestResolve(t *testing.T) {
	root, contextFile := fixtureProject(t)
	a := newTestApp(t, root, contextFile, &bytes.Buffer{})

	res, err := a.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "host-debug", res.Context.Name)
	assert.Contains(t, res.Packages, "core")
	require.Len(t, res.Units, 3)

	for _, u := range res.Units {
		assert.NotEmpty(t, u.Statements, u.Dir)
	}

	// The generated root was seeded as ignored, so the script's artifacts
	// never feed back into discovery.
	gen := filepath.Join(root, ".grist", "host-debug")
	_, err = os.Stat(filepath.Join(gen, "tools", "Gristfile"))
	assert.NoError(t, err, "script output should exist under the generated root")
}

func TestResolveSecondLoadSeesGeneratedRootIgnored(t *testing.T) {
	root, contextFile := fixtureProject(t)
	a := newTestApp(t, root, contextFile, &bytes.Buffer{})

	_, err := a.Resolve(context.Background())
	require.NoError(t, err)

	// The first load wrote generated Gristfiles; a second load must not
	// pick them up as new build units.
	res, err := a.Resolve(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Units, 3)
}

func TestRunPrintsSummary(t *testing.T) {
	root, contextFile := fixtureProject(t)
	var out bytes.Buffer
	a := newTestApp(t, root, contextFile, &out)

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "context host-debug: 1 packages, 3 build-description units")
	assert.Contains(t, out.String(), "package core 0.3")
	assert.Contains(t, out.String(), "scope=core")
}

func TestMissingScriptOutputFailsLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Gristfile"), "int main() {}\n")

	driver := filepath.Join(root, "noop.sh")
	writeFile(t, driver, "#!/bin/sh\nexit 0\n")
	require.NoError(t, os.Chmod(driver, 0o755))

	contextFile := filepath.Join(root, "host.hcl")
	writeFile(t, contextFile, fmt.Sprintf("name = \"host\"\n\ntoolchain {\n  driver = %q\n}\n", driver))

	a := newTestApp(t, root, contextFile, &bytes.Buffer{})
	_, err := a.Resolve(context.Background())
	var merr *script.MissingOutputError
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Script, filepath.Join(root, "Gristfile"))
}
