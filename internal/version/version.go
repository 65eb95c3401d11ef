// Package version implements the (major, minor) syntax version pair that
// gates macro availability, removal and renaming in build descriptions.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an ordered (major, minor) pair. The zero value is the lowest
// possible version.
type Version struct {
	Major int
	Minor int
}

// Baseline is the syntax version at which the current macro vocabulary was
// fixed. Legacy single-character aliases are renamed or removed here.
var Baseline = Version{Major: 1, Minor: 0}

// Parse reads a "major.minor" string into a Version.
func Parse(s string) (Version, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Version{}, fmt.Errorf("invalid syntax version %q: expected \"major.minor\"", s)
	}
	maj, err := strconv.Atoi(major)
	if err != nil {
		return Version{}, fmt.Errorf("invalid syntax version %q: %w", s, err)
	}
	min, err := strconv.Atoi(minor)
	if err != nil {
		return Version{}, fmt.Errorf("invalid syntax version %q: %w", s, err)
	}
	if maj < 0 || min < 0 {
		return Version{}, fmt.Errorf("invalid syntax version %q: components must not be negative", s)
	}
	return Version{Major: maj, Minor: min}, nil
}

func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// Compare returns -1, 0 or +1 ordering v against o.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major && v.Major < o.Major:
		return -1
	case v.Major != o.Major:
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool { return v.Compare(o) >= 0 }

// Before reports whether v < o.
func (v Version) Before(o Version) bool { return v.Compare(o) < 0 }
