// Package ftype converts between UNIX mode words, attr.FileType values,
// and the nine-character rwxrwxrwx permission string, per §4.4.
package ftype

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/walktree/attr"
)

// typeNybble maps the top 4 bits of a 16-bit UNIX mode word to a
// FileType, per the §4.4 table. 0xE is deliberately left UNKNOWN/
// EventPort-ambiguous here; FromMode resolves it to EVENT_PORT, and
// callers that know the entry came from a DUMP archive whiteout must
// pass attr.Whiteout directly instead of relying on mode inference
// (spec.md §9's first "open question", resolved as directed there).
const (
	nybbleFIFO             = 0x1
	nybbleCharacterDevice  = 0x2
	nybbleDirectory        = 0x4
	nybbleBlockDevice      = 0x6
	nybbleRegularFile      = 0x8
	nybbleNetwork          = 0x9 // HP-UX
	nybbleSymbolicLink     = 0xA
	nybbleSocket           = 0xC
	nybbleDoor             = 0xD // Solaris
	nybbleEventPortOrWhite = 0xE
)

// FromMode classifies the file-type nybble of a 16-bit UNIX mode word.
// The low 12 bits (permission bits) are ignored here; use Permissions
// to extract them.
func FromMode(mode uint32) attr.FileType {
	switch (mode >> 12) & 0xF {
	case nybbleFIFO:
		return attr.FIFO
	case nybbleCharacterDevice:
		return attr.CharacterDevice
	case nybbleDirectory:
		return attr.Directory
	case nybbleBlockDevice:
		return attr.BlockDevice
	case nybbleRegularFile:
		return attr.RegularFile
	case nybbleNetwork:
		return attr.Network
	case nybbleSymbolicLink:
		return attr.SymbolicLink
	case nybbleSocket:
		return attr.Socket
	case nybbleDoor:
		return attr.Door
	case nybbleEventPortOrWhite:
		return attr.EventPort
	default:
		return attr.UnknownFileType
	}
}

// Permissions extracts the low 12 mode bits (rwx × owner/group/other
// plus set-uid, set-gid, sticky) from a full mode word, discarding the
// file-type nybble as §3's invariant requires.
func Permissions(mode uint32) uint16 {
	return uint16(mode & 0xFFF)
}

// permission bit positions within the low 12 bits.
const (
	bitOtherExec = 1 << iota
	bitOtherWrite
	bitOtherRead
	bitGroupExec
	bitGroupWrite
	bitGroupRead
	bitOwnerExec
	bitOwnerWrite
	bitOwnerRead
	bitSticky
	bitSetgid
	bitSetuid
)

// String renders perm as the classic nine-character permission string,
// e.g. "rwsrwsrwT" for mode 0o7776 (§8 scenario 5: set-uid, set-gid and
// sticky all set, with the owner/group execute bits present and the
// other execute bit absent).
func String(perm uint16) string {
	var sb strings.Builder

	owner := [3]byte{'-', '-', '-'}
	if perm&bitOwnerRead != 0 {
		owner[0] = 'r'
	}
	if perm&bitOwnerWrite != 0 {
		owner[1] = 'w'
	}
	ownerExec := perm&bitOwnerExec != 0
	setuid := perm&bitSetuid != 0
	owner[2] = execChar(ownerExec, setuid, 's', 'S')

	group := [3]byte{'-', '-', '-'}
	if perm&bitGroupRead != 0 {
		group[0] = 'r'
	}
	if perm&bitGroupWrite != 0 {
		group[1] = 'w'
	}
	groupExec := perm&bitGroupExec != 0
	setgid := perm&bitSetgid != 0
	group[2] = execChar(groupExec, setgid, 's', 'S')

	other := [3]byte{'-', '-', '-'}
	if perm&bitOtherRead != 0 {
		other[0] = 'r'
	}
	if perm&bitOtherWrite != 0 {
		other[1] = 'w'
	}
	otherExec := perm&bitOtherExec != 0
	sticky := perm&bitSticky != 0
	other[2] = execChar(otherExec, sticky, 't', 'T')

	sb.Write(owner[:])
	sb.Write(group[:])
	sb.Write(other[:])
	return sb.String()
}

// execChar picks the display character for an exec position that may
// also carry the set-uid/set-gid/sticky special bit: lowercase when the
// execute bit is present, uppercase when it is absent, plain 'x'/'-'
// when the special bit isn't set at all.
func execChar(exec, special bool, lower, upper byte) byte {
	switch {
	case special && exec:
		return lower
	case special && !exec:
		return upper
	case exec:
		return 'x'
	default:
		return '-'
	}
}

// ParsePermissions parses a nine-character rwxrwxrwx string (optionally
// preceded by a single file-type character, which is accepted and
// ignored) back into the low 12 mode bits. Any other length is
// rejected.
func ParsePermissions(s string) (uint16, error) {
	if len(s) == 10 {
		s = s[1:]
	}
	if len(s) != 9 {
		return 0, fmt.Errorf("ftype: permission string must be 9 characters (or 10 with a leading type char), got %q", s)
	}

	var perm uint16
	var err error

	perm, err = applyTriplet(perm, s[0:3], bitOwnerRead, bitOwnerWrite, bitOwnerExec, bitSetuid, 's', 'S')
	if err != nil {
		return 0, err
	}
	perm, err = applyTriplet(perm, s[3:6], bitGroupRead, bitGroupWrite, bitGroupExec, bitSetgid, 's', 'S')
	if err != nil {
		return 0, err
	}
	perm, err = applyTriplet(perm, s[6:9], bitOtherRead, bitOtherWrite, bitOtherExec, bitSticky, 't', 'T')
	if err != nil {
		return 0, err
	}
	return perm, nil
}

func applyTriplet(perm uint16, triplet string, readBit, writeBit, execBit, specialBit uint16, specialLower, specialUpper byte) (uint16, error) {
	if triplet[0] == 'r' {
		perm |= readBit
	} else if triplet[0] != '-' {
		return 0, fmt.Errorf("ftype: invalid read char %q", triplet[0])
	}
	if triplet[1] == 'w' {
		perm |= writeBit
	} else if triplet[1] != '-' {
		return 0, fmt.Errorf("ftype: invalid write char %q", triplet[1])
	}
	switch triplet[2] {
	case 'x':
		perm |= execBit
	case specialLower:
		perm |= execBit | specialBit
	case specialUpper:
		perm |= specialBit
	case '-':
		// nothing set
	default:
		return 0, fmt.Errorf("ftype: invalid exec/special char %q", triplet[2])
	}
	return perm, nil
}
