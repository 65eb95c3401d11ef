// Package buildctx defines the active build context: the named toolchain
// configuration a project is resolved against. The context is threaded
// explicitly as a value; nothing in the engine reads it from a global.
package buildctx

import (
	"os"
	"path/filepath"
)

// WrapperExt is the source-file extension appended to a script's generated
// wrapper program.
const WrapperExt = ".gx"

// Pair is one ordered toolchain configuration entry.
type Pair struct {
	Key   string
	Value string
}

// Context describes the active build context. Name selects the per-context
// subdirectory of the generated-files root, so two contexts never collide on
// generated artifact paths.
type Context struct {
	Name        string
	LangVersion string
	Profile     string

	// Toolchain holds the configuration entries in declaration order. Order
	// matters: the wrapper generator embeds them as an ordered list.
	Toolchain []Pair

	// Env is the environment passed to script subprocesses.
	Env []string

	// GeneratedRoot is the process-wide generated-files directory.
	GeneratedRoot string

	// RuntimeInclude is the compiler-internal header directory.
	RuntimeInclude string
	BinDir         string
	StdlibDir      string
}

// ToolchainValue returns the value for key, if configured.
func (c *Context) ToolchainValue(key string) (string, bool) {
	for _, p := range c.Toolchain {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// OutputPath returns the generated declarative-output path for a script,
// given the script's path relative to the project root.
func (c *Context) OutputPath(scriptRel string) string {
	return filepath.Join(c.GeneratedRoot, c.Name, scriptRel)
}

// WrapperPath returns the generated wrapper-source path for a script, given
// the script's path relative to the project root.
func (c *Context) WrapperPath(scriptRel string) string {
	return c.OutputPath(scriptRel) + WrapperExt
}

// Environ returns the subprocess environment, falling back to the parent
// process environment when the context does not carry one.
func (c *Context) Environ() []string {
	if c.Env != nil {
		return c.Env
	}
	return os.Environ()
}
