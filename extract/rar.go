package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fulmenhq/walktree/attr"
)

// DefaultRARTimeout is the "wait up to a configured timeout (default
// 30s)" from spec.md §4.5.4 step 4.
const DefaultRARTimeout = 30 * time.Second

// RARExtractor implements spec.md §4.5.4: RAR is treated as opaque and
// delegated to an external unrar-compatible binary, since no pure-Go
// RAR decoder exists in this pack or the wider ecosystem that the
// teacher or its siblings import.
type RARExtractor struct {
	// Tool is the external binary name or path, e.g. "unrar". Empty
	// defaults to "unrar" at Extract time.
	Tool string

	// Timeout bounds step 4's wait. Zero defaults to DefaultRARTimeout.
	Timeout time.Duration

	// WalkDir recursively traverses a spilled tempdir under
	// display-path prefix displayPath, re-entering op.Emit for every
	// file found, reusing the engine's own filesystem walker (spec.md
	// §4.5.4 step 5). Supplied by package walk at registration time to
	// avoid extract depending on walk.
	WalkDir func(dir, displayPath string, op Op) error
}

func (r RARExtractor) Extensions() []string        { return []string{"rar"} }
func (RARExtractor) ModifiedType() attr.FileType    { return attr.Archive }
func (RARExtractor) NeedsRandomAccess() bool        { return true }

func (r RARExtractor) Extract(op Op) error {
	raf, err := Materialize(op, "walktree-rar-*.rar")
	if err != nil {
		if op.OnError != nil {
			_ = op.OnError(op.DisplayPath, op.ArchiveAttr, "rar materialize failed", err)
		}
		return ErrSkipArchive
	}
	defer raf.Cleanup()

	destDir, cleanupDir, err := MaterializeDir("walktree-rar-extract-*")
	if err != nil {
		if op.OnError != nil {
			_ = op.OnError(op.DisplayPath, op.ArchiveAttr, "rar tempdir failed", err)
		}
		return ErrSkipArchive
	}
	defer cleanupDir()

	tool := r.Tool
	if tool == "" {
		tool = "unrar"
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRARTimeout
	}

	if _, err := exec.LookPath(tool); err != nil {
		if op.OnError != nil {
			_ = op.OnError(op.DisplayPath, op.ArchiveAttr, "rar external tool not found", err)
		}
		return ErrSkipArchive
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// "extract with paths" semantics: unrar's "x" subcommand.
	cmd := exec.CommandContext(ctx, tool, "x", "-y", "-idq", filepath.Base(raf.Path), destDir)
	cmd.Dir = filepath.Dir(raf.Path)
	var log bytes.Buffer
	cmd.Stdout = &log
	cmd.Stderr = &log

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		if op.OnError != nil {
			_ = op.OnError(op.DisplayPath, op.ArchiveAttr, "rar extraction timed out", ctx.Err())
		}
		return ErrSkipArchive
	}
	if runErr != nil {
		if op.OnError != nil {
			_ = op.OnError(op.DisplayPath, op.ArchiveAttr, fmt.Sprintf("rar extraction failed: %s", log.String()), runErr)
		}
		return ErrSkipArchive
	}

	if r.WalkDir == nil {
		if op.OnError != nil {
			_ = op.OnError(op.DisplayPath, op.ArchiveAttr, "rar extractor not wired to a directory walker", fmt.Errorf("WalkDir is nil"))
		}
		return ErrSkipArchive
	}
	return r.WalkDir(destDir, op.DisplayPath, op)
}
