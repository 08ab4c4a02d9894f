// Package walktree recursively traverses a filesystem, treating
// archive and compression containers as though they were directories,
// and yields a flat stream of (display_path, input_supplier,
// attributes) entries (spec.md §1/§3). It also offers an in-memory
// tree materialization (MakeTree) for callers that want a navigable
// node graph instead of a flat stream.
//
// walktree is the library surface described in spec.md §6: a fluent,
// chainable configuration builder (New, the *Walker configurators)
// over the traversal engine in package walk, in the same idiom as the
// teacher's fulpack.CreateOptions/ExtractOptions (exported struct +
// functional configurators) rather than a schema-driven config loader.
package walktree

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
	"github.com/fulmenhq/walktree/pathmatch"
	"github.com/fulmenhq/walktree/tree"
	"github.com/fulmenhq/walktree/walk"
	"github.com/fulmenhq/walktree/walkerr"
	"github.com/fulmenhq/walktree/walkhash"
	"github.com/fulmenhq/walktree/wtlog"
	"github.com/fulmenhq/walktree/wttel"
)

// Re-exported so callers need not import the lower packages directly
// for everyday use.
type (
	FileType    = attr.FileType
	Bundle      = attr.Bundle
	Supplier    = extract.Supplier
	Extractor   = extract.Extractor
	WalkError   = walkerr.WalkError
	Consumer    = walk.Consumer
	ErrorHandler = walk.ErrorHandler
)

// Consumer/ErrorHandler signatures, named here for doc visibility.
// Consumer: func(displayPath string, supplier Supplier, attrs *Bundle) error
// ErrorHandler: func(displayPath string, attrs *Bundle, message string, cause error) error

// Walker is the configuration builder of spec.md §6's `walker()`.
// Configurators mutate and return the same *Walker so calls chain; the
// zero value returned by New is ready to use with every default
// applied.
type Walker struct {
	cfg walk.Config

	fileTypeModeSet bool
	err             error
}

// New constructs a Walker with spec.md's defaults: unbounded depth,
// archive recursion enabled, symlinks not followed, no host-attribute
// reading, no include/exclude patterns, the five built-in extractors,
// no logger/telemetry/checksum wiring.
func New() *Walker {
	return &Walker{
		cfg: walk.Config{
			MaxDepth:            int(^uint(0) >> 1),
			RecurseIntoArchives: true,
			Include:             pathmatch.NewSet(),
			Exclude:             pathmatch.NewSet(),
			Logger:              wtlog.Nop(),
			Telemetry:           wttel.Global,
		},
	}
}

// MaxDepth sets max_depth(n): 0 means root only; archives count as
// directories, per spec.md §6.
func (w *Walker) MaxDepth(n int) *Walker {
	w.cfg.MaxDepth = n
	return w
}

// RecurseIntoArchives toggles recurse_into_archives(bool). When false,
// archives are emitted as regular-file-like leaves (spec.md §6).
func (w *Walker) RecurseIntoArchives(enabled bool) *Walker {
	w.cfg.RecurseIntoArchives = enabled
	return w
}

// FollowLinks toggles follow_links(bool); applies to filesystem
// symlinks only — symlinks inside archives are never followed
// (spec.md §6).
func (w *Walker) FollowLinks(enabled bool) *Walker {
	w.cfg.FollowLinks = enabled
	return w
}

// UnixAttributes toggles unix_attributes(bool): read host uid/gid/mode
// metadata for filesystem entries (spec.md §6).
func (w *Walker) UnixAttributes(enabled bool) *Walker {
	w.cfg.UnixAttributes = enabled
	return w
}

// DosAttributes toggles dos_attributes(bool): read host DOS attribute
// bits for filesystem entries (spec.md §6).
func (w *Walker) DosAttributes(enabled bool) *Walker {
	w.cfg.DosAttributes = enabled
	return w
}

// Include accumulates an include(glob) pattern.
func (w *Walker) Include(globs ...string) *Walker {
	for _, g := range globs {
		w.cfg.Include = appendPattern(w.cfg.Include, g)
	}
	return w
}

// Exclude accumulates an exclude(glob) pattern.
func (w *Walker) Exclude(globs ...string) *Walker {
	for _, g := range globs {
		w.cfg.Exclude = appendPattern(w.cfg.Exclude, g)
	}
	return w
}

func appendPattern(set *pathmatch.Set, pattern string) *pathmatch.Set {
	if set == nil {
		return pathmatch.NewSet(pattern)
	}
	return set.With(pattern)
}

// FileTypes selects file_types(types…): show only the listed types.
// Calling FileTypes, FileTypesExcept or AllFileTypes more than once, or
// mixing FileTypes/FileTypesExcept, is a configuration error surfaced
// by Walk/MakeTree (spec.md §6 "mixing inverted and non-inverted modes
// is an error").
func (w *Walker) FileTypes(types ...FileType) *Walker {
	return w.setFileTypeMode(walk.FileTypesInclude, types)
}

// FileTypesExcept selects file_types_except(types…): show every type
// except the listed ones.
func (w *Walker) FileTypesExcept(types ...FileType) *Walker {
	return w.setFileTypeMode(walk.FileTypesExclude, types)
}

// AllFileTypes selects all_file_types(): the default, show everything.
func (w *Walker) AllFileTypes() *Walker {
	return w.setFileTypeMode(walk.FileTypesAll, nil)
}

func (w *Walker) setFileTypeMode(mode walk.FileTypeMode, types []FileType) *Walker {
	if w.fileTypeModeSet && w.cfg.FileTypeMode != mode {
		w.err = walkerr.New(walkerr.CodeConfig, "walktree.New", "", fmt.Errorf("file-type mode already set to a different, incompatible mode"))
		return w
	}
	w.fileTypeModeSet = true
	w.cfg.FileTypeMode = mode
	w.cfg.FileTypes = append(w.cfg.FileTypes, types...)
	return w
}

// ExtractWith replaces the default extractor set (spec.md §6
// `extract_with(extractors…)`).
func (w *Walker) ExtractWith(extractors ...Extractor) *Walker {
	w.cfg.Registry = extract.NewRegistry(extractors...)
	return w
}

// RARTool overrides the external unrar-compatible binary name used by
// the default registry's RAR extractor (spec.md §4.5.4/§6). Has no
// effect once ExtractWith has installed a custom registry.
func (w *Walker) RARTool(tool string) *Walker {
	w.cfg.RARTool = tool
	return w
}

// WithLogger injects a structured logger, defaulting to a no-op logger
// so the library stays silent unless a caller opts in.
func (w *Walker) WithLogger(logger *zap.Logger) *Walker {
	w.cfg.Logger = logger
	return w
}

// WithTelemetry injects a telemetry system (see package wttel),
// defaulting to wttel.Global, itself a no-op until Configure installs
// a Recorder.
func (w *Walker) WithTelemetry(system *wttel.System) *Walker {
	w.cfg.Telemetry = system
	return w
}

// WithChecksum opts into populating CHECKSUM via walkhash for formats
// that don't supply one natively (spec.md SPEC_FULL §6). algorithm is
// "xxh3-128" or "sha256"; any other value is a configuration error
// surfaced by Walk/MakeTree.
func (w *Walker) WithChecksum(algorithm string) *Walker {
	alg := walkhash.Algorithm(algorithm)
	if alg != walkhash.XXH3_128 && alg != walkhash.SHA256 {
		w.err = walkerr.Newf(walkerr.CodeConfig, "walktree.New", "", "unsupported checksum algorithm %q", algorithm)
		return w
	}
	w.cfg.EnableChecksum = true
	w.cfg.ChecksumAlgorithm = alg
	return w
}

// Walk implements spec.md §6's `walk(path, consumer)` /
// `walk(path, consumer, error_handler)`. A nil errorHandler installs
// walk.DefaultErrorHandler.
func (w *Walker) Walk(rootPath string, consumer Consumer, errorHandler ...ErrorHandler) error {
	if w.err != nil {
		return w.err
	}
	var onError ErrorHandler
	if len(errorHandler) > 0 {
		onError = errorHandler[0]
	}
	engine := walk.New(w.cfg)
	return engine.Walk(rootPath, consumer, onError)
}

// MakeTree implements spec.md §6's `make_tree(path)`: installs a
// tree.Builder as both consumer and error handler and returns the
// materialized root plus the accumulated error list.
func (w *Walker) MakeTree(rootPath string) (*tree.Node, []tree.ErrorRecord, error) {
	if w.err != nil {
		return nil, nil, w.err
	}
	// The engine's display paths have no root component, so the builder
	// strips none while the walk runs; the root is named afterwards.
	builder := tree.NewBuilder("")
	engine := walk.New(w.cfg)
	err := engine.Walk(rootPath, builder.Consume, builder.OnError)
	builder.Root().Name = rootName(rootPath)
	if err != nil {
		return builder.Root(), builder.Errors(), err
	}
	return builder.Root(), builder.Errors(), nil
}

// rootName derives the root's basename, the same derivation
// walk.Engine.Walk uses internally for a root's match_path and for
// naming the tree root node — the root's display_path itself is always
// "" (spec.md §3/§8), never this name.
func rootName(rootPath string) string {
	return filepath.Base(filepath.Clean(rootPath))
}
