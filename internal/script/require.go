// Package script compiles and runs script-classified build files in a
// restricted wrapper and reads back the declarative output they emit. The
// whole mechanism sits behind the Executor's Run method, so the loader never
// sees how a script becomes statements.
package script

import (
	"fmt"
	"strings"
)

// ReservedLibrary is the one library name a script may require without
// package resolution; it ships with the toolchain itself.
const ReservedLibrary = "grist"

const requireDirective = "#require"

// UnsupportedLibraryError reports a require directive outside the supported
// forms. The restriction is deliberate; the message says what is allowed.
type UnsupportedLibraryError struct {
	File   string
	Line   int
	Text   string
	Reason string
}

func (e *UnsupportedLibraryError) Error() string {
	return fmt.Sprintf("%s:%d: unsupported library declaration %q: %s", e.File, e.Line, e.Text, e.Reason)
}

// ExtractRequires scans raw script text line by line for require directives
// and returns the library names that need package resolution. A directive
// naming only ReservedLibrary contributes nothing; ReservedLibrary combined
// with any other name is rejected, as only the reserved name is currently
// supported unresolved.
func ExtractRequires(file string, src []byte) ([]string, error) {
	var out []string
	for i, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, requireDirective) {
			continue
		}
		rest := trimmed[len(requireDirective):]
		if rest != "" && !strings.HasPrefix(rest, " ") && !strings.HasPrefix(rest, "\t") {
			continue // some other directive, e.g. #requires_nothing
		}

		names, err := parseRequireList(rest)
		if err != nil {
			return nil, &UnsupportedLibraryError{File: file, Line: i + 1, Text: trimmed, Reason: err.Error()}
		}

		reserved := false
		var resolvable []string
		for _, name := range names {
			if name == ReservedLibrary {
				reserved = true
			} else {
				resolvable = append(resolvable, name)
			}
		}
		if reserved && len(resolvable) > 0 {
			return nil, &UnsupportedLibraryError{
				File: file, Line: i + 1, Text: trimmed,
				Reason: fmt.Sprintf("%q is the only name supported without resolution and cannot be combined with other libraries", ReservedLibrary),
			}
		}
		out = append(out, resolvable...)
	}
	return out, nil
}

func parseRequireList(rest string) ([]string, error) {
	var names []string
	for _, item := range strings.Split(rest, ",") {
		item = strings.TrimSpace(item)
		if len(item) < 2 || item[0] != '"' || item[len(item)-1] != '"' {
			return nil, fmt.Errorf("expected a comma-separated list of quoted library names")
		}
		name := item[1 : len(item)-1]
		if name == "" {
			return nil, fmt.Errorf("library name must not be empty")
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("expected at least one library name")
	}
	return names, nil
}
