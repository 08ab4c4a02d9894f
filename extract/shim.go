package extract

import (
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/walktree/walkerr"
)

// RandomAccessFile is what the spill shim guarantees callers an
// Op resolves to: a path on disk plus a cleanup function that is safe
// to call multiple times and from a defer.
type RandomAccessFile struct {
	// Path is always a real on-disk path: either op.FSPath unchanged
	// (pass-through case) or a freshly spilled temp file.
	Path string

	// Spilled is true when Path is a temp file this shim created and
	// Cleanup must therefore actually remove it.
	Spilled bool

	// Cleanup removes the spilled temp file, or is a no-op in the
	// pass-through case. Always safe to call, always via defer.
	Cleanup func()
}

// Materialize resolves op to a seekable on-disk file, spilling op's
// stream to a uniquely-named temporary file when op.FSPath is empty
// (the nested-archive case), per spec.md §4.5.6. When op.FSPath is
// already set, Materialize is a pass-through and Cleanup is a no-op —
// the caller never owns or deletes the original archive file.
func Materialize(op Op, tmpPattern string) (*RandomAccessFile, error) {
	if op.FSPath != "" {
		return &RandomAccessFile{Path: op.FSPath, Cleanup: func() {}}, nil
	}

	src, err := op.Supplier()
	if err != nil {
		return nil, walkerr.New(walkerr.CodeArchiveOpen, "extract.spill", op.DisplayPath, err)
	}

	tmp, err := os.CreateTemp("", tmpPattern)
	if err != nil {
		return nil, walkerr.New(walkerr.CodeArchiveOpen, "extract.spill", op.DisplayPath, fmt.Errorf("create temp file: %w", err))
	}

	cleanup := func() {
		_ = os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		cleanup()
		return nil, walkerr.New(walkerr.CodeArchiveOpen, "extract.spill", op.DisplayPath, fmt.Errorf("spill to temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return nil, walkerr.New(walkerr.CodeArchiveOpen, "extract.spill", op.DisplayPath, fmt.Errorf("close temp file: %w", err))
	}

	return &RandomAccessFile{Path: tmp.Name(), Spilled: true, Cleanup: cleanup}, nil
}

// MaterializeDir creates a fresh temporary directory and returns it
// plus a recursive-removal cleanup, used by the RAR extractor's
// external-tool extraction step (spec.md §4.5.4, step 2).
func MaterializeDir(pattern string) (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("extract: create temp dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// closeIgnoringReader wraps an io.Reader so Close is a no-op, per
// spec.md §4.5.1's "shared-stream entry handles" requirement: the same
// underlying archive stream is read sequentially across many entries
// and must survive each per-entry consumer call. Read is the only
// method a consumer needs; embedding io.Reader keeps Seek/other
// incidental methods from leaking through even if the underlying value
// happens to implement them.
type closeIgnoringReader struct {
	io.Reader
}

// Close satisfies io.Closer without closing the underlying stream.
func (closeIgnoringReader) Close() error { return nil }

// NoClose wraps r so that, if a caller type-asserts for io.Closer and
// calls Close, the underlying stream is left open. Extractors call this
// when building the Supplier for an entry that shares one enclosing
// sequential stream (spec.md §4.5.1, §9 "Shared-stream entry handles").
func NoClose(r io.Reader) io.ReadCloser {
	return closeIgnoringReader{Reader: r}
}
