package macro

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/grist-build/grist/internal/buildctx"
	"github.com/grist-build/grist/internal/version"
)

// StaticFacts carries the structural values bound by the static base map.
type StaticFacts struct {
	// Targets is the aggregate target list of the load.
	Targets string
	// Deps is the aggregate dependency list of the load.
	Deps string
	// Root is the project root path.
	Root string
}

// Static builds the base layer: structural names, the always-available
// zero-argument helper family, and the legacy single-character aliases that
// were renamed or removed at the baseline version.
func Static(f StaticFacts, bctx *buildctx.Context) Map {
	helper := func(name string) Binding {
		return Plain{Value: filepath.Join(bctx.BinDir, "grist-"+name)}
	}
	return Map{
		"targets": IntroducedAt{Value: f.Targets, Min: version.Baseline},
		"deps":    Plain{Value: f.Deps},
		"root":    Plain{Value: f.Root},

		"findexe":        helper("findexe"),
		"findbin":        helper("findbin"),
		"findlib":        helper("findlib"),
		"havelib":        helper("havelib"),
		"readfile":       helper("readfile"),
		"readfile.trim":  helper("readfile-trim"),
		"readfile.lines": helper("readfile-lines"),
		"config":         helper("config"),
		"version":        Plain{Value: bctx.LangVersion},

		"t": RenamedTo{At: version.Baseline, NewName: "targets"},
		"d": RenamedTo{At: version.Baseline, NewName: "deps"},
		"r": RemovedAt{Value: f.Root, At: version.Baseline, Replacement: `use "root" instead`},
		"v": RemovedAt{Value: bctx.LangVersion, At: version.Baseline},
	}
}

// FromToolchain builds the context-derived layer: every toolchain entry
// under its lower-cased key.
func FromToolchain(bctx *buildctx.Context) Map {
	m := make(Map, len(bctx.Toolchain))
	for _, p := range bctx.Toolchain {
		m[strings.ToLower(p.Key)] = Plain{Value: p.Value}
	}
	return m
}

// UpperAliases registers an upper-cased rename alias for every key of the
// given layer, forcing baseline-and-later descriptions onto the lower-cased
// spellings.
func UpperAliases(layer Map) Map {
	m := make(Map, len(layer))
	for name := range layer {
		upper := strings.ToUpper(name)
		if upper == name {
			continue
		}
		m[upper] = RenamedTo{At: version.Baseline, NewName: name}
	}
	return m
}

// Misc builds the miscellaneous context layer: platform suffixes, fixed
// paths and the active profile.
func Misc(bctx *buildctx.Context) Map {
	nullDev := "/dev/null"
	sharedSuffix := ".so"
	exeSuffix := ""
	switch runtime.GOOS {
	case "windows":
		nullDev = "NUL"
		sharedSuffix = ".dll"
		exeSuffix = ".exe"
	case "darwin":
		sharedSuffix = ".dylib"
	}

	cppflags := "-E -nostdinc"
	if cpp, ok := bctx.ToolchainValue("cpp"); ok {
		cppflags = cpp + " -nostdinc"
	}

	return Map{
		"noop":     Plain{},
		"cppflags": Plain{Value: cppflags},
		"bindir":   Plain{Value: bctx.BinDir},
		"version":  Plain{Value: bctx.LangVersion},
		"stdlib":   Plain{Value: bctx.StdlibDir},
		"nulldev":  Plain{Value: nullDev},
		"profile":  Plain{Value: bctx.Profile},

		"suffix.obj":    Plain{Value: ".o"},
		"suffix.asm":    Plain{Value: ".s"},
		"suffix.lib":    Plain{Value: ".a"},
		"suffix.shared": Plain{Value: sharedSuffix},
		"suffix.exe":    Plain{Value: exeSuffix},
	}
}

// ForContext assembles the full layered map for a build context, later
// layers overriding earlier ones.
func ForContext(f StaticFacts, bctx *buildctx.Context) Map {
	toolchain := FromToolchain(bctx)
	return Superpose(Static(f, bctx), toolchain, UpperAliases(toolchain), Misc(bctx))
}

// Locals binds user-declared named values for one evaluation.
func Locals(values map[string]string) Map {
	m := make(Map, len(values))
	for name, v := range values {
		m[name] = Plain{Value: v}
	}
	return m
}

// InputFile binds the per-use input-file macro and its deprecated
// single-character alias.
func InputFile(path string) Map {
	return Map{
		"input": Plain{Value: path},
		"i":     RenamedTo{At: version.Baseline, NewName: "input"},
	}
}
