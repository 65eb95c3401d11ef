package macro

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/hcl/v2"

	"github.com/grist-build/grist/internal/version"
)

// Map is an immutable mapping of macro names to bindings. Callers build maps
// through Superpose and never mutate them afterwards.
type Map map[string]Binding

// Superpose layers maps left to right: on key collision the later layer's
// binding wins, never a merge of the two.
func Superpose(layers ...Map) Map {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	out := make(Map, size)
	for _, layer := range layers {
		for name, b := range layer {
			out[name] = b
		}
	}
	return out
}

// Lookup resolves name at the requested syntax version. A missing name
// returns an error wrapping ErrNotFound; versioned bindings outside their
// window return a *VersionError.
func (m Map) Lookup(name string, ver version.Version) (string, error) {
	b, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return b.resolve(m, name, ver)
}

var placeholderPattern = regexp.MustCompile(`%\{([A-Za-z0-9_.-]+)\}`)

// ExpandString replaces every %{name} placeholder in s with its resolved
// value at the requested version. Undefined placeholders are an error here:
// this caller has no weaker way to surface them. rng locates the expression
// the string came from and is attached to version diagnostics.
func ExpandString(s string, ver version.Version, m Map, rng hcl.Range) (string, error) {
	var firstErr error
	out := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderPattern.FindStringSubmatch(match)[1]
		val, err := m.Lookup(name, ver)
		if err != nil {
			if verr, ok := err.(*VersionError); ok && verr.Subject == nil {
				verr.Subject = &rng
			}
			firstErr = err
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
