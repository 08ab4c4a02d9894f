package walk

import (
	"os"

	"github.com/fulmenhq/walktree/attr"
)

// populateHostAttrs reads host-specific filesystem metadata according
// to the unix_attributes/dos_attributes toggles of spec.md §6, calling
// into the platform-specific helper that actually knows how to reach
// uid/gid/mode or DOS attribute bits on this GOOS. Modeled on the
// teacher's signals package, which splits a platform-specific concern
// across a _unix.go/_windows.go pair instead of runtime branching.
func (e *Engine) populateHostAttrs(bundle *attr.Bundle, info os.FileInfo) {
	if e.cfg.UnixAttributes {
		populateUnixAttrs(bundle, info)
	}
	if e.cfg.DosAttributes {
		populateDOSAttrs(bundle, info)
	}
}
