package snapshot

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// Version constants written into every snapshot.
const (
	// FormatVersion is the snapshot schema version.
	FormatVersion = "v1.0.0"

	// EngineVersion is the version of the producing runtime.
	EngineVersion = "v0.1.0"
)

// ErrIncompatibleVersion is returned when a snapshot's major version
// differs from the running code.
var ErrIncompatibleVersion = errors.New("incompatible snapshot version")

// CheckVersion compares a version read from a snapshot with the version
// this code writes. Only the major component has to match.
func CheckVersion(what, got, want string) error {
	if !semver.IsValid(got) {
		return fmt.Errorf("%w: %s version %q is not a semantic version", ErrIncompatibleVersion, what, got)
	}
	gm, wm := semver.Major(got), semver.Major(want)
	switch semver.Compare(gm, wm) {
	case 0:
		return nil
	case -1:
		return fmt.Errorf("%w: %s version %s is too old (expected %s.x.x)", ErrIncompatibleVersion, what, got, wm)
	default:
		return fmt.Errorf("%w: %s version %s is too new (expected %s.x.x)", ErrIncompatibleVersion, what, got, wm)
	}
}
