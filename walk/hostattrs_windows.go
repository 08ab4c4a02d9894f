//go:build windows

package walk

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/fulmenhq/walktree/attr"
)

// populateDOSAttrs reads the four DOS attribute bits off info's
// underlying *syscall.Win32FileAttributeData, mirroring
// populateUnixAttrs's os.FileInfo.Sys() access pattern on the other
// platform file of this pair.
func populateDOSAttrs(bundle *attr.Bundle, info os.FileInfo) {
	raw := info.Sys()
	winInfo, ok := raw.(*syscall.Win32FileAttributeData)
	if !ok {
		return
	}
	a := winInfo.FileAttributes
	attr.Put(bundle, attr.DOS, attr.DOSFlags{
		ReadOnly: a&windows.FILE_ATTRIBUTE_READONLY != 0,
		Hidden:   a&windows.FILE_ATTRIBUTE_HIDDEN != 0,
		System:   a&windows.FILE_ATTRIBUTE_SYSTEM != 0,
		Archive:  a&windows.FILE_ATTRIBUTE_ARCHIVE != 0,
	})
}

// populateUnixAttrs is a no-op on Windows hosts: there is no POSIX
// uid/gid/mode triad to read off an NTFS file record via os.FileInfo.
func populateUnixAttrs(*attr.Bundle, os.FileInfo) {}
