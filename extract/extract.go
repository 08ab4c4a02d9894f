// Package extract defines the extractor interface and registry described
// in spec.md §4.2/§4.5: the extension→extractor mapping, the shared
// shapes extractors communicate through, and the "skip this archive"
// control-flow signal. Concrete extractors (stream-archive, zip, 7z,
// rar, single-file decompressor) live in sibling files of this package;
// the traversal engine (package walk) drives them, supplying the
// callback that lets an extractor re-enter the engine's filter for
// each contained entry.
//
// extract deliberately has no dependency on package walk: an Extractor
// receives the filter re-entry point as a plain function value (Emit),
// not as an interface the engine implements, so the dependency points
// one way (walk -> extract) and extractors stay independently testable.
package extract

import (
	"errors"
	"io"

	"github.com/fulmenhq/walktree/attr"
)

// Supplier is a zero-argument function returning a readable byte
// stream, valid only for the duration of a single consumer/filter
// invocation, per spec.md §3.
type Supplier func() (io.Reader, error)

// ErrSkipArchive is the private "skip this archive" signal: an
// extractor that fails to open or fully enumerate an archive raises
// this (after routing the real error through OnError) and the engine
// treats the entry as a leaf, per spec.md §4.1 "Recursion" and §7.
var ErrSkipArchive = errors.New("extract: skip this archive")

// Op bundles everything an Extractor needs to enumerate one archive or
// compressed file's contents and re-enter the traversal engine for
// each one, per spec.md §4.5's `extract(op, extension, fs_path?,
// display_path, input_supplier, archive_attr)` signature.
type Op struct {
	// Extension is the matched extension as typed in match_path
	// (case preserved — the decompressor treats "taZ" case-sensitively;
	// every other extension is matched case-insensitively).
	Extension string

	// FSPath is the on-disk path of the archive, or "" if it came
	// from a stream nested inside another archive.
	FSPath string

	// DisplayPath is the archive entry's own display path; contained
	// entries' display paths are derived by appending to this.
	DisplayPath string

	// MatchPath is the archive entry's own match path (usually equal
	// to DisplayPath, but can differ after a decompressor rewrite;
	// see spec.md §4.5.5 "Naming").
	MatchPath string

	// Supplier opens the archive's own byte stream. Always non-nil;
	// an extractor reads from this when FSPath is empty, or may
	// ignore it and open FSPath directly when random access is
	// required and FSPath is available.
	Supplier Supplier

	// ArchiveAttr is the archive file's own attribute bundle, the
	// basis for any copy-on-branch derived bundle extractors hand to
	// contained entries (spec.md §3 "Attribute bundles are
	// copy-on-branch").
	ArchiveAttr *attr.Bundle

	// Emit is the traversal engine's filter re-entry point. Called
	// once per contained entry; returning an error aborts the
	// surrounding walk (propagated exactly like a consumer/on_error
	// raise, per spec.md §4.1).
	Emit func(Frame) error

	// OnError routes a recoverable failure (an unreadable entry, a
	// wrapper-level open failure) to the engine's installed error
	// handler, per spec.md §4.1 "Error policy" / §7.
	OnError func(displayPath string, attrs *attr.Bundle, message string, cause error) error
}

// Frame is the re-entry payload an Extractor hands back to Emit for
// each contained entry — the same shape `filter` receives from the
// filesystem sub-walker, generalized to carry an in-archive entry
// instead of an os.DirEntry.
type Frame struct {
	// FSPath is set only when the entry also exists on disk: the
	// filesystem walker's frames and the RAR extractor's frames (whose
	// entries are extracted into a temporary directory) set it; entries
	// read from an archive stream leave it empty.
	FSPath string

	// MatchPath is used for extension/pattern matching.
	MatchPath string

	// DisplayPath is the user-visible path, crossing archive
	// boundaries with "/".
	DisplayPath string

	// Supplier opens the entry's byte stream, or nil for directory
	// entries and placeholders.
	Supplier Supplier

	// Attrs is the entry's attribute bundle, pre-populated by the
	// extractor with whatever format-specific metadata it captured
	// (spec.md §4.5.1-§4.5.5).
	Attrs *attr.Bundle
}

// Extractor is the polymorphic capability set spec.md §9 calls for:
// "extensions, modified-type, extract" — no deep inheritance, no
// format-specific base classes.
type Extractor interface {
	// Extensions lists the lowercase extensions this extractor
	// registers, e.g. {"a", "ar", "arj", "cpio", "dump", "tar"} for the
	// stream-archive extractor.
	Extensions() []string

	// ModifiedType is the TYPE an entry is reclassified to once this
	// extractor is assigned: attr.Archive or attr.CompressedFile.
	ModifiedType() attr.FileType

	// Extract enumerates op's contents, calling op.Emit once per
	// contained entry. Returns ErrSkipArchive (wrapped or bare) after
	// routing the underlying cause through op.OnError when the
	// archive cannot be opened or fully read.
	Extract(op Op) error
}

// RandomAccessExtractor is implemented by extractors that need seek
// access (ZIP, 7Z, RAR) rather than being able to stream sequentially.
// Each of them calls Materialize itself, which spills a stream-only Op
// to a temp file first (spec.md §4.5.6).
type RandomAccessExtractor interface {
	Extractor
	NeedsRandomAccess() bool
}
