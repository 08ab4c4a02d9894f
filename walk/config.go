// Package walk implements the recursive traversal engine of spec.md
// §4.1: the central `filter` classifier, the filesystem sub-walker,
// and the glue that lets extractors (package extract) re-enter filter
// for every contained entry. This is the component the public facade
// (package walktree, at the module root) configures and drives.
package walk

import (
	"go.uber.org/zap"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
	"github.com/fulmenhq/walktree/pathmatch"
	"github.com/fulmenhq/walktree/walkhash"
	"github.com/fulmenhq/walktree/wttel"
)

// FileTypeMode selects how Config.FileTypes is interpreted, per
// spec.md §6's "file_types(types…) / file_types_except(types…) /
// all_file_types() — mutually exclusive modes".
type FileTypeMode int

const (
	// FileTypesAll shows every classified type (the default).
	FileTypesAll FileTypeMode = iota
	// FileTypesInclude shows only the listed types.
	FileTypesInclude
	// FileTypesExclude shows every type except the listed ones.
	FileTypesExclude
)

// Config is the traversal engine's fully-resolved configuration. The
// public facade builds this from its fluent configurators; Config
// itself has no defaults-filling logic, mirroring the teacher's
// pattern of a plain options struct separate from its builder
// (fulpack.ExtractOptions vs. the call sites that fill it in).
type Config struct {
	MaxDepth             int
	RecurseIntoArchives  bool
	FollowLinks          bool
	UnixAttributes       bool
	DosAttributes        bool
	Include              *pathmatch.Set
	Exclude              *pathmatch.Set
	FileTypeMode         FileTypeMode
	FileTypes            []attr.FileType
	Registry             *extract.Registry
	Logger               *zap.Logger
	Telemetry            *wttel.System
	ChecksumAlgorithm    walkhash.Algorithm
	EnableChecksum       bool
	RARTool              string
}

// showFileType implements spec.md §4.1's `show_file_type(TYPE)`
// predicate against the configured FileTypeMode.
func (c Config) showFileType(t attr.FileType) bool {
	switch c.FileTypeMode {
	case FileTypesInclude:
		for _, want := range c.FileTypes {
			if want == t {
				return true
			}
		}
		return false
	case FileTypesExclude:
		for _, excluded := range c.FileTypes {
			if excluded == t {
				return false
			}
		}
		return true
	default:
		return true
	}
}
