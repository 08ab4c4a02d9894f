package walk

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
)

// DefaultRegistry builds the five built-in extractors of spec.md §4.2,
// wiring RARExtractor.WalkDir back to this package's own filesystem
// sub-walker so RAR's external-tool extraction step (§4.5.4 step 5)
// can "reuse the engine's filesystem walker" without extract importing
// walk. rarTool overrides the external binary name; empty defaults to
// "unrar" inside extract.RARExtractor.Extract.
func DefaultRegistry(rarTool string) *extract.Registry {
	rar := extract.RARExtractor{
		Tool:    rarTool,
		Timeout: extract.DefaultRARTimeout,
	}
	rar.WalkDir = rarWalkDirFunc()

	return extract.NewRegistry(
		extract.StreamArchiveExtractor{},
		extract.ZipExtractor{},
		extract.SevenZipExtractor{},
		rar,
		extract.DecompressExtractor{},
	)
}

// rarWalkDirFunc returns the closure wired into RARExtractor.WalkDir:
// it walks a spilled tempdir as if it were a subtree rooted at op's
// display_path, re-entering op.Emit (hence filter) for every entry
// found, per spec.md §4.5.4 step 5.
func rarWalkDirFunc() func(dir, displayPath string, op extract.Op) error {
	return func(dir, displayPath string, op extract.Op) error {
		walker := &rarSubWalk{displayPrefix: displayPath, op: op}
		return walker.walk(dir, displayPath)
	}
}

// rarSubWalk adapts the engine's directory-visiting logic to RAR's
// tempdir re-entry, emitting through op.Emit/op.OnError instead of the
// engine's own consumer/onError (the RAR extraction happens entirely
// inside one filter/recurseInto call, so there is no separate Engine
// instance to hand off to here).
type rarSubWalk struct {
	displayPrefix string
	op            extract.Op
}

func (w *rarSubWalk) walk(fsPath, displayPath string) error {
	dirEntries, err := os.ReadDir(fsPath)
	if err != nil {
		if w.op.OnError != nil {
			return w.op.OnError(displayPath, nil, "rar subtree read directory", err)
		}
		return err
	}
	for _, de := range dirEntries {
		childFS := filepath.Join(fsPath, de.Name())
		childDisplay := path.Join(displayPath, de.Name())

		info, lerr := os.Lstat(childFS)
		if lerr != nil {
			if w.op.OnError != nil {
				if herr := w.op.OnError(childDisplay, nil, "rar subtree lstat", lerr); herr != nil {
					return herr
				}
				continue
			}
			return lerr
		}

		if info.IsDir() {
			bundle := attr.NewBundle()
			attr.Put(bundle, attr.TYPE, attr.Directory)
			attr.Put(bundle, attr.InArchive, "RAR")
			if err := w.op.Emit(extract.Frame{
				FSPath:      childFS,
				MatchPath:   childDisplay,
				DisplayPath: childDisplay,
				Attrs:       bundle,
			}); err != nil {
				return err
			}
			if err := w.walk(childFS, childDisplay); err != nil {
				return err
			}
			continue
		}

		bundle, supplier, berr := rarFileBundle(childFS, info)
		if berr != nil {
			if w.op.OnError != nil {
				if herr := w.op.OnError(childDisplay, nil, "rar subtree stat entry", berr); herr != nil {
					return herr
				}
				continue
			}
			return berr
		}
		if err := w.op.Emit(extract.Frame{
			FSPath:      childFS,
			MatchPath:   childDisplay,
			DisplayPath: childDisplay,
			Supplier:    supplier,
			Attrs:       bundle,
		}); err != nil {
			return err
		}
	}
	return nil
}

// rarFileBundle builds the attribute bundle and lazy supplier for one
// spilled RAR entry on disk, stamping IN_ARCHIVE=RAR since these files
// never pass through fsEntryBundle (they are the extractor's own
// temporary output, not a walk root's direct children).
func rarFileBundle(fsPath string, info os.FileInfo) (*attr.Bundle, extract.Supplier, error) {
	bundle := attr.NewBundle()
	attr.Put(bundle, attr.TYPE, attr.RegularFile)
	attr.Put(bundle, attr.InArchive, "RAR")
	attr.Put(bundle, attr.SIZE, info.Size())
	attr.Put(bundle, attr.LastModifiedTime, info.ModTime())
	supplier := func() (io.Reader, error) {
		return os.Open(fsPath)
	}
	return bundle, supplier, nil
}
