package walk

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
)

// walkFS is the filesystem sub-walker of spec.md §4.1 step 2. fsPath is
// a native (host-separator) path; displayPath/matchPath are "/"-joined,
// root-prefix-free display forms — the root call itself receives "".
func (e *Engine) walkFS(fsPath, displayPath, matchPath string) error {
	if e.isExcludedDir(matchPath) {
		return nil
	}

	bundle := attr.NewBundle()
	attr.Put(bundle, attr.TYPE, attr.Directory)

	if err := e.filter(filterInput{
		FSPath:      fsPath,
		MatchPath:   matchPath,
		DisplayPath: displayPath,
		Attrs:       bundle,
	}); err != nil {
		return err
	}

	dirEntries, err := os.ReadDir(fsPath)
	if err != nil {
		return e.onError(displayPath, bundle, "read directory", err)
	}

	for _, de := range dirEntries {
		childFS := filepath.Join(fsPath, de.Name())
		childDisplay := path.Join(displayPath, de.Name())

		info, lerr := os.Lstat(childFS)
		if lerr != nil {
			if herr := e.onError(childDisplay, nil, "lstat entry", lerr); herr != nil {
				return herr
			}
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			resolved, ok, rerr := e.resolveSymlink(childFS, childDisplay, info)
			if rerr != nil {
				if herr := e.onError(childDisplay, nil, "resolve symlink", rerr); herr != nil {
					return herr
				}
				continue
			}
			if !ok {
				// follow_links is false: report the link itself as a leaf.
				linkBundle, lberr := e.symlinkBundle(childFS, info)
				if lberr != nil {
					if herr := e.onError(childDisplay, nil, "read symlink target", lberr); herr != nil {
						return herr
					}
					continue
				}
				if err := e.filter(filterInput{
					FSPath:      childFS,
					MatchPath:   childDisplay,
					DisplayPath: childDisplay,
					Attrs:       linkBundle,
				}); err != nil {
					return err
				}
				continue
			}
			info = resolved
		}

		if info.IsDir() {
			if err := e.walkFS(childFS, childDisplay, childDisplay); err != nil {
				return err
			}
			continue
		}

		entryBundle, supplier, berr := e.fsEntryBundle(childFS, info)
		if berr != nil {
			if herr := e.onError(childDisplay, nil, "stat entry", berr); herr != nil {
				return herr
			}
			continue
		}
		if err := e.filter(filterInput{
			FSPath:      childFS,
			MatchPath:   childDisplay,
			DisplayPath: childDisplay,
			Supplier:    supplier,
			Attrs:       entryBundle,
		}); err != nil {
			return err
		}
	}
	return nil
}

// isExcludedDir implements §4.1 step 2's direct directory-path
// exclusion test, sharing the engine's prefix memoisation sets since a
// directory's own match_path is just a one-element "prefix" check.
func (e *Engine) isExcludedDir(matchPath string) bool {
	if e.cfg.Exclude == nil || e.cfg.Exclude.Empty() {
		return false
	}
	if e.nonExcludedPrefixes[matchPath] {
		return false
	}
	if e.excludedPrefixes[matchPath] {
		return true
	}
	if e.cfg.Exclude.MatchAny(matchPath) {
		e.excludedPrefixes[matchPath] = true
		return true
	}
	e.nonExcludedPrefixes[matchPath] = true
	return false
}

// resolveSymlink reports (target info, true, nil) when follow_links is
// enabled and the link resolves; (nil, false, nil) when follow_links is
// disabled (caller reports the link itself); (nil, false, err) on a
// broken link.
func (e *Engine) resolveSymlink(fsPath, _ string, linkInfo os.FileInfo) (os.FileInfo, bool, error) {
	if !e.cfg.FollowLinks {
		return nil, false, nil
	}
	target, err := os.Stat(fsPath)
	if err != nil {
		return nil, false, err
	}
	_ = linkInfo
	return target, true, nil
}

// symlinkBundle builds the attribute bundle for a symlink that is
// being reported as a leaf (follow_links disabled), capturing its
// target via LinkTarget per spec.md's GLOSSARY entry for symbolic
// links.
func (e *Engine) symlinkBundle(fsPath string, info os.FileInfo) (*attr.Bundle, error) {
	bundle := attr.NewBundle()
	attr.Put(bundle, attr.TYPE, attr.SymbolicLink)
	if target, err := os.Readlink(fsPath); err == nil {
		attr.Put(bundle, attr.LinkTarget, target)
	}
	e.populateHostAttrs(bundle, info)
	return bundle, nil
}

// fsEntryBundle builds the attribute bundle and lazy byte-stream
// supplier for a regular filesystem file, per spec.md §3's entry
// invariants plus §6's unix_attributes/dos_attributes toggles.
func (e *Engine) fsEntryBundle(fsPath string, info os.FileInfo) (*attr.Bundle, extract.Supplier, error) {
	bundle := attr.NewBundle()
	attr.Put(bundle, attr.TYPE, attr.RegularFile)
	attr.Put(bundle, attr.SIZE, info.Size())
	attr.Put(bundle, attr.LastModifiedTime, info.ModTime())
	e.populateHostAttrs(bundle, info)

	supplier := func() (io.Reader, error) {
		return os.Open(fsPath)
	}
	return bundle, supplier, nil
}
