// Package attr implements the heterogeneous, typed attribute bundle that
// walktree attaches to every entry it discovers.
//
// The bundle is intentionally not a struct with one field per piece of
// metadata: new formats (an ARJ host-OS flag, a GZIP host filesystem code)
// must be addable without touching the bundle's implementation. Instead
// each attribute is a package-level descriptor carrying a phantom type
// parameter, and the bundle stores values behind that descriptor's
// identity. This mirrors the closed string-enum style the teacher uses
// for ArchiveFormat/EntryType, generalized to an open key space since
// the attribute set here is not closed.
package attr

import "time"

// Attr is a typed key into a Bundle. Two Attr values of the same T are
// distinct entries unless they are the same descriptor instance — callers
// always use the package-level vars below (TYPE, SIZE, ...), never build
// their own.
type Attr[T any] struct {
	name string
}

// Name returns the descriptor's identifier, useful for logging/debugging.
func (a Attr[T]) Name() string { return a.name }

// untypedAttr erases T so a Bundle's map can hold mixed descriptor types.
type untypedAttr interface {
	attrName() string
}

func (a Attr[T]) attrName() string { return a.name }

// New declares a new attribute descriptor. Call once per attribute at
// package init time and keep the returned value as a singleton.
func New[T any](name string) Attr[T] {
	return Attr[T]{name: name}
}

// FileType enumerates the classification an entry can carry under TYPE.
type FileType string

const (
	RegularFile     FileType = "REGULAR_FILE"
	CompressedFile  FileType = "COMPRESSED_FILE"
	Archive         FileType = "ARCHIVE"
	Directory       FileType = "DIRECTORY"
	SymbolicLink    FileType = "SYMBOLIC_LINK"
	HardLink        FileType = "HARD_LINK"
	BlockDevice     FileType = "BLOCK_DEVICE"
	CharacterDevice FileType = "CHARACTER_DEVICE"
	FIFO            FileType = "FIFO"
	Socket          FileType = "SOCKET"
	Whiteout        FileType = "WHITEOUT"
	Network         FileType = "NETWORK"
	Door            FileType = "DOOR"
	EventPort       FileType = "EVENT_PORT"
	UnknownFileType FileType = "UNKNOWN"
)

// DOSFlags captures the four DOS/Windows attribute bits relevant here.
type DOSFlags struct {
	ReadOnly bool
	Hidden   bool
	System   bool
	Archive  bool
}

// Recognised descriptors. All optional except TYPE, which is required
// once an entry has been classified (see Bundle.IsType).
var (
	TYPE Attr[FileType] = New[FileType]("TYPE")

	CreationTime     = New[time.Time]("CREATION_TIME")
	LastAccessTime   = New[time.Time]("LAST_ACCESS_TIME")
	LastModifiedTime = New[time.Time]("LAST_MODIFIED_TIME")

	SIZE = New[int64]("SIZE")

	UserName        = New[string]("USER_NAME")
	GroupName       = New[string]("GROUP_NAME")
	UserID          = New[int]("USER_ID")
	GroupID         = New[int]("GROUP_ID")
	UnixPermissions = New[uint16]("UNIX_PERMISSIONS")

	DOS = New[DOSFlags]("DOS")

	// IN_ARCHIVE's presence is the canonical "came from inside a
	// container" signal (§4.3).
	InArchive = New[string]("IN_ARCHIVE")

	ArjHostOS  = New[string]("ARJ_HOST_OS")
	GzipHostFS = New[string]("GZIP_HOST_FS")
	Checksum   = New[string]("CHECKSUM")
	Comment    = New[string]("COMMENT")

	// LinkTarget is not in spec.md's descriptor list by name but is
	// needed to carry symlink/hardlink targets alongside TYPE; modeled
	// on ArchiveEntry.LinkTarget in the teacher's fulpack/types.go.
	LinkTarget = New[string]("LINK_TARGET")
)
