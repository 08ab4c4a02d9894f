//go:build !windows

package walk

import (
	"os"
	"syscall"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/ftype"
)

// populateUnixAttrs lifts uid/gid/permissions from info's underlying
// *syscall.Stat_t, the same os.FileInfo.Sys() access pattern the
// teacher's signals package uses for its own platform-specific syscall
// fields (signals/platform_signals_unix.go).
func populateUnixAttrs(bundle *attr.Bundle, info os.FileInfo) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	attr.Put(bundle, attr.UserID, int(stat.Uid))
	attr.Put(bundle, attr.GroupID, int(stat.Gid))
	attr.Put(bundle, attr.UnixPermissions, ftype.Permissions(uint32(stat.Mode)))
}

// populateDOSAttrs is a no-op on non-Windows hosts: there is no DOS
// attribute byte to read from a POSIX inode.
func populateDOSAttrs(*attr.Bundle, os.FileInfo) {}
