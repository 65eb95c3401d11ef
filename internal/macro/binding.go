// Package macro implements the versioned placeholder expansion engine used
// inside build-description expressions. Bindings gate their value on the
// requested syntax version, so the configuration language can introduce,
// rename and remove names without breaking older descriptions.
package macro

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/grist-build/grist/internal/version"
)

// ErrNotFound signals that a name has no binding. It is not an engine
// failure; the evaluating caller decides how to surface an undefined
// placeholder.
var ErrNotFound = errors.New("no macro binding found")

// VersionError reports a macro used outside its valid version window:
// before its introduction, at or after its removal, or at or after a forced
// rename.
type VersionError struct {
	Name    string
	Detail  string
	Subject *hcl.Range
}

func (e *VersionError) Error() string {
	if e.Subject != nil {
		return fmt.Sprintf("%s: macro %q %s", e.Subject, e.Name, e.Detail)
	}
	return fmt.Sprintf("macro %q %s", e.Name, e.Detail)
}

// Binding is one tagged macro-map entry.
type Binding interface {
	resolve(m Map, name string, ver version.Version) (string, error)
}

// Plain resolves to its value at every syntax version.
type Plain struct {
	Value string
}

func (b Plain) resolve(Map, string, version.Version) (string, error) {
	return b.Value, nil
}

// IntroducedAt resolves to its value from Min onwards and fails below it.
type IntroducedAt struct {
	Value string
	Min   version.Version
}

func (b IntroducedAt) resolve(_ Map, name string, ver version.Version) (string, error) {
	if ver.Before(b.Min) {
		return "", &VersionError{Name: name, Detail: fmt.Sprintf("is not available before syntax version %s", b.Min)}
	}
	return b.Value, nil
}

// RemovedAt resolves to its value strictly below At and fails from At
// onwards. Replacement, when non-empty, is appended to the diagnostic as
// guidance.
type RemovedAt struct {
	Value       string
	At          version.Version
	Replacement string
}

func (b RemovedAt) resolve(_ Map, name string, ver version.Version) (string, error) {
	if ver.Before(b.At) {
		return b.Value, nil
	}
	detail := fmt.Sprintf("was removed at syntax version %s", b.At)
	if b.Replacement != "" {
		detail += "; " + b.Replacement
	}
	return "", &VersionError{Name: name, Detail: detail}
}

// RenamedTo forces callers at or after At to use NewName; below At it
// resolves NewName with the requested version unchanged, so the target's own
// gating still applies. Rename chains are assumed acyclic.
type RenamedTo struct {
	At      version.Version
	NewName string
}

func (b RenamedTo) resolve(m Map, name string, ver version.Version) (string, error) {
	if ver.AtLeast(b.At) {
		return "", &VersionError{Name: name, Detail: fmt.Sprintf("was renamed to %q at syntax version %s", b.NewName, b.At)}
	}
	return m.Lookup(b.NewName, ver)
}
