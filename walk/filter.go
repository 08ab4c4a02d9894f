package walk

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
	"github.com/fulmenhq/walktree/pathmatch"
	"github.com/fulmenhq/walktree/walkhash"
)

// filterInput is `filter`'s argument shape, per spec.md §4.1 step 3:
// an optional fs_path, a match_path, a display_path, an optional input
// supplier, and the attribute bundle. It is the engine-internal twin
// of extract.Frame, kept as a separate type because the filesystem
// sub-walker fills FSPath while archive re-entry never does.
type filterInput struct {
	FSPath      string
	MatchPath   string
	DisplayPath string
	Supplier    extract.Supplier
	Attrs       *attr.Bundle
}

// filter is the central classifier of spec.md §4.1 and the re-entry
// point extractors call back into via Op.Emit.
func (e *Engine) filter(in filterInput) error {
	// Depth gate. DisplayPath is root-prefix-free (the root itself is
	// "" at depth 0), so depth is simply its name count.
	depth := nameCount(in.DisplayPath)
	if depth > e.cfg.MaxDepth {
		return nil
	}

	// Prefix exclusion, with symmetric memoisation.
	if e.cfg.Exclude != nil && !e.cfg.Exclude.Empty() {
		for _, prefix := range pathmatch.Prefixes(in.MatchPath) {
			if e.nonExcludedPrefixes[prefix] {
				continue
			}
			if e.excludedPrefixes[prefix] {
				return nil
			}
			if e.cfg.Exclude.MatchAny(prefix) {
				e.excludedPrefixes[prefix] = true
				return nil
			}
			e.nonExcludedPrefixes[prefix] = true
		}
	}

	// Extractor assignment.
	var assigned extract.Extractor
	if in.Attrs.IsType(attr.RegularFile) {
		if ext, ok := extensionOf(in.MatchPath); ok {
			if ex, found := e.cfg.Registry.Lookup(ext); found {
				assigned = ex
				attr.Put(in.Attrs, attr.TYPE, ex.ModifiedType())
			}
		}
	}

	// Opt-in checksum (walktree.WithChecksum): only for genuine leaves —
	// an entry still destined for extractor recursion must keep its
	// stream unconsumed for the extractor to read.
	if assigned == nil && e.cfg.EnableChecksum && in.Supplier != nil && !attr.Has(in.Attrs, attr.Checksum) {
		if err := e.applyChecksum(&in); err != nil {
			if herr := e.onError(in.DisplayPath, in.Attrs, "compute checksum", err); herr != nil {
				return herr
			}
		}
	}

	// Emission.
	if e.cfg.showFileType(mustType(in.Attrs)) {
		emit := true
		if e.cfg.Include != nil && !e.cfg.Include.Empty() {
			emit = e.cfg.Include.MatchAny(in.MatchPath)
		}
		if emit {
			e.entries++
			if in.Supplier != nil {
				e.bytes += sizeOf(in.Attrs)
			}
			supplier, closeLast := trackLastReader(in.Supplier)
			err := e.consumer(in.DisplayPath, supplier, in.Attrs)
			closeLast()
			if err != nil {
				return err
			}
		}
	}

	// Recursion.
	if assigned != nil && e.cfg.RecurseIntoArchives {
		return e.recurseInto(assigned, in)
	}
	return nil
}

// recurseInto invokes assigned's Extract, wiring Op.Emit back to
// filter for every contained entry and Op.OnError to the engine's
// installed handler. An ErrSkipArchive return (bare or wrapped) is
// swallowed: the entry is treated as a leaf, per spec.md §4.1
// "Recursion".
func (e *Engine) recurseInto(assigned extract.Extractor, in filterInput) error {
	ext, _ := extensionOf(in.MatchPath)

	op := extract.Op{
		Extension:   ext,
		FSPath:      in.FSPath,
		DisplayPath: in.DisplayPath,
		MatchPath:   in.MatchPath,
		Supplier:    in.Supplier,
		ArchiveAttr: in.Attrs,
		Emit: func(frame extract.Frame) error {
			return e.filter(filterInput{
				FSPath:      frame.FSPath,
				MatchPath:   frame.MatchPath,
				DisplayPath: frame.DisplayPath,
				Supplier:    frame.Supplier,
				Attrs:       frame.Attrs,
			})
		},
		OnError: func(displayPath string, attrs *attr.Bundle, message string, cause error) error {
			return e.onError(displayPath, attrs, message, cause)
		},
	}

	err := assigned.Extract(op)
	if err == extract.ErrSkipArchive {
		return nil
	}
	return err
}

// applyChecksum buffers in's entire stream to compute its walkhash
// digest, storing it under attr.Checksum and replacing in.Supplier
// with one that replays the buffered bytes. This trades the usual
// lazy-stream contract for a materialized copy, but only for entries
// WithChecksum has explicitly opted into — spec.md's default
// lazy-supplier behavior is unaffected when checksums aren't enabled.
func (e *Engine) applyChecksum(in *filterInput) error {
	r, err := in.Supplier()
	if err != nil {
		return err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	digest, err := walkhash.Hash(data, e.cfg.ChecksumAlgorithm)
	if err != nil {
		return err
	}
	attr.Put(in.Attrs, attr.Checksum, digest.String())
	in.Supplier = func() (io.Reader, error) {
		return bytes.NewReader(data), nil
	}
	return nil
}

// extensionOf returns matchPath's last extension component as typed
// (case preserved), without the leading dot, and whether one exists.
func extensionOf(matchPath string) (string, bool) {
	ext := path.Ext(matchPath)
	if ext == "" || ext == "." {
		return "", false
	}
	return strings.TrimPrefix(ext, "."), true
}

func mustType(b *attr.Bundle) attr.FileType {
	t, _ := attr.Get(b, attr.TYPE)
	return t
}

func sizeOf(b *attr.Bundle) int64 {
	sz, _ := attr.Get(b, attr.SIZE)
	return sz
}

// trackLastReader wraps s so the engine can close whatever stream s
// last produced once the consumer invocation returns, per spec.md §3
// "the caller must not close it" / §9 "do not leak the raw underlying
// stream to the consumer" — the engine, not the consumer, owns the
// close. A nil s wraps to a nil supplier and a no-op closer.
func trackLastReader(s extract.Supplier) (extract.Supplier, func()) {
	if s == nil {
		return nil, func() {}
	}
	var last io.Reader
	wrapped := func() (io.Reader, error) {
		r, err := s()
		if err != nil {
			return nil, err
		}
		last = r
		return r, nil
	}
	closeLast := func() {
		if c, ok := last.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return wrapped, closeLast
}
