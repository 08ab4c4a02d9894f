// Package walkerr defines the structured error type the traversal engine
// and extractors raise, modeled on the teacher's fulpack.FulpackError
// (fulpack/errors.go): a Code/Op/Path/Cause bundle with an ExitCode
// mapping, rather than bare fmt.Errorf strings.
package walkerr

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/walktree/foundry"
)

// Code classifies a WalkError the way fulpack.ErrorCode classifies
// extraction failures, narrowed to what the traversal engine and its
// extractors can actually raise (§7).
type Code string

const (
	// CodeArchiveOpen means the archive/container could not be opened
	// at all (bad header, unsupported format signature).
	CodeArchiveOpen Code = "ARCHIVE_OPEN"

	// CodeArchiveEntry means a specific entry inside an otherwise
	// openable archive could not be read or decompressed.
	CodeArchiveEntry Code = "ARCHIVE_ENTRY"

	// CodeExternalTool means a required external binary (the RAR
	// extractor's unrar-compatible tool, §4.5.4) was missing or
	// exited non-zero.
	CodeExternalTool Code = "EXTERNAL_TOOL"

	// CodeConfig means the walker was configured inconsistently, e.g.
	// both file_types and file_types_except supplied (§6).
	CodeConfig Code = "CONFIG"

	// CodeTreeReentry means the tree builder was handed a path that
	// already holds a real entry; MakeTree fails fatally on it (§4.6).
	CodeTreeReentry Code = "TREE_REENTRY"

	// CodeIO covers ordinary filesystem I/O failures (permission
	// denied, path vanished mid-walk) that on_error can still choose
	// to swallow (§4.1, §7).
	CodeIO Code = "IO"
)

// exitCodes maps each Code to the process exit status cmd/walktree
// should use when a WalkError of that code escapes to main, mirroring
// fulpack's code-to-exit-status table but against foundry's trimmed
// catalog instead of crucible's.
var exitCodes = map[Code]foundry.ExitCode{
	CodeArchiveOpen:  foundry.ExitDataCorrupt,
	CodeArchiveEntry: foundry.ExitDataCorrupt,
	CodeExternalTool: foundry.ExitExternalToolMissing,
	CodeConfig:       foundry.ExitInvalidArgument,
	CodeTreeReentry:  foundry.ExitInternalError,
	CodeIO:           foundry.ExitFailure,
}

// WalkError is the error type returned by walk, tree and extract
// operations. Op names the operation that failed (e.g. "extract.zip",
// "walk.stat"); Path is the entry's display_path when known.
type WalkError struct {
	Code  Code
	Op    string
	Path  string
	Cause error
}

func (e *WalkError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("walktree: %s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("walktree: %s: %v", e.Op, e.Cause)
}

func (e *WalkError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit status associated with e's Code.
func (e *WalkError) ExitCode() foundry.ExitCode {
	if code, ok := exitCodes[e.Code]; ok {
		return code
	}
	return foundry.ExitFailure
}

// New builds a WalkError. cause may be nil only for config errors
// raised without an underlying wrapped error.
func New(code Code, op, path string, cause error) *WalkError {
	return &WalkError{Code: code, Op: op, Path: path, Cause: cause}
}

// Newf builds a WalkError whose Cause is fmt.Errorf(format, args...),
// mirroring fulpack's newErrorf convenience constructor.
func Newf(code Code, op, path, format string, args ...any) *WalkError {
	return &WalkError{Code: code, Op: op, Path: path, Cause: fmt.Errorf(format, args...)}
}

// As is a thin re-export of errors.As for callers that only import
// walkerr, matching the teacher's habit of giving each error package a
// local As/Is pair instead of requiring two imports at call sites.
func As(err error, target **WalkError) bool {
	return errors.As(err, target)
}

// CodeOf extracts the Code from err if it is (or wraps) a *WalkError.
func CodeOf(err error) (Code, bool) {
	var we *WalkError
	if errors.As(err, &we) {
		return we.Code, true
	}
	return "", false
}
