package extract

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/ftype"
)

// SevenZipExtractor implements spec.md §4.5.3 over bodgit/sevenzip, the
// real ecosystem random-access 7z reader (the pack's wings examples
// reach 7z through mholt/archives, which itself delegates to this same
// library — we wire the concrete reader directly rather than through
// that indirection).
type SevenZipExtractor struct{}

func (SevenZipExtractor) Extensions() []string       { return []string{"7z"} }
func (SevenZipExtractor) ModifiedType() attr.FileType { return attr.Archive }
func (SevenZipExtractor) NeedsRandomAccess() bool     { return true }

func (e SevenZipExtractor) Extract(op Op) error {
	raf, err := Materialize(op, "walktree-7z-*.7z")
	if err != nil {
		if op.OnError != nil {
			_ = op.OnError(op.DisplayPath, op.ArchiveAttr, "7z materialize failed", err)
		}
		return ErrSkipArchive
	}
	defer raf.Cleanup()

	rdr, err := sevenzip.OpenReader(raf.Path)
	if err != nil {
		return e.fail(op, err)
	}
	defer rdr.Close()

	for _, file := range rdr.File {
		bundle := attr.NewBundle()
		attr.Put(bundle, attr.InArchive, "SEVENZ")

		if file.CRC32 != 0 {
			attr.Put(bundle, attr.Checksum, fmt.Sprintf("crc32:%08x", file.CRC32))
		}
		attr.Put(bundle, attr.SIZE, int64(file.UncompressedSize))
		if !file.Modified.IsZero() {
			attr.Put(bundle, attr.LastModifiedTime, file.Modified)
		}
		if !file.Created.IsZero() {
			attr.Put(bundle, attr.CreationTime, file.Created)
		}
		if !file.Accessed.IsZero() {
			attr.Put(bundle, attr.LastAccessTime, file.Accessed)
		}

		typ := attr.RegularFile
		switch {
		case file.FileInfo().IsDir():
			typ = attr.Directory
		case isAntiItem(file):
			typ = attr.Whiteout
		}

		// Windows attributes' upper 16 bits carry a UNIX mode nybble
		// when the archiver stamped one, per spec.md §4.5.3.
		winAttrs := file.Attributes
		if winAttrs != 0 {
			attr.Put(bundle, attr.DOS, attr.DOSFlags{
				ReadOnly: winAttrs&0x1 != 0,
				Hidden:   winAttrs&0x2 != 0,
				System:   winAttrs&0x4 != 0,
				Archive:  winAttrs&0x20 != 0,
			})
			unixMode := winAttrs >> 16
			if typ == attr.RegularFile && unixMode != 0 {
				attr.Put(bundle, attr.UnixPermissions, ftype.Permissions(unixMode))
				typ = ftype.FromMode(unixMode)
			}
		}
		attr.Put(bundle, attr.TYPE, typ)

		name := strings.Trim(path.Clean("/"+file.Name), "/")
		frame := Frame{
			MatchPath:   path.Join(op.DisplayPath, name),
			DisplayPath: path.Join(op.DisplayPath, name),
			Attrs:       bundle,
		}
		if typ != attr.Directory {
			entry := file
			frame.Supplier = func() (io.Reader, error) {
				rc, err := entry.Open()
				if err != nil {
					return nil, fmt.Errorf("7z: open entry %q: %w", entry.Name, err)
				}
				return rc, nil
			}
		}
		if err := op.Emit(frame); err != nil {
			return err
		}
	}
	return nil
}

// isAntiItem reports whether a 7z entry looks like an anti-item
// (deletion marker), per spec.md §4.5.3 / GLOSSARY "Anti-item /
// whiteout". bodgit/sevenzip does not surface the archive format's
// internal "anti" substream flag through its public File type, so this
// is a best-effort approximation: a zero-size, non-directory entry.
func isAntiItem(file *sevenzip.File) bool {
	return !file.FileInfo().IsDir() && file.UncompressedSize == 0
}

func (SevenZipExtractor) fail(op Op, cause error) error {
	if op.OnError != nil {
		_ = op.OnError(op.DisplayPath, op.ArchiveAttr, "7z open failed", cause)
	}
	return ErrSkipArchive
}
