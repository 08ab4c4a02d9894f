package walk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
	"github.com/fulmenhq/walktree/walkerr"
	"github.com/fulmenhq/walktree/wtlog"
	"github.com/fulmenhq/walktree/wttel"
)

// Consumer is invoked exactly once per kept entry, per spec.md §4.1/§6.
type Consumer func(displayPath string, supplier extract.Supplier, attrs *attr.Bundle) error

// ErrorHandler is invoked once per recoverable failure; returning a
// non-nil error aborts the walk exactly like a raise from Consumer,
// per spec.md §4.1 "Error policy".
type ErrorHandler func(displayPath string, attrs *attr.Bundle, message string, cause error) error

// DefaultErrorHandler re-raises cause wrapped as a *walkerr.WalkError,
// matching spec.md §6's "default handler raises a library error type
// that wraps cause".
func DefaultErrorHandler(displayPath string, _ *attr.Bundle, message string, cause error) error {
	return walkerr.New(walkerr.CodeIO, "walk.filter", displayPath, fmt.Errorf("%s: %w", message, cause))
}

// Engine is the traversal engine of spec.md §4.1, built from a
// resolved Config. The zero value is not usable; use New.
type Engine struct {
	cfg Config

	// excludedPrefixes/nonExcludedPrefixes are the memoisation sets of
	// §4.1's "Prefix exclusion" paragraph and §5's "Shared resources",
	// owned by one Walk call and never reused across calls.
	excludedPrefixes    map[string]bool
	nonExcludedPrefixes map[string]bool

	consumer Consumer
	onError  ErrorHandler

	// correlationID identifies one Walk invocation across its log lines
	// and emitted telemetry, the way the teacher's foundry.NewCorrelationID
	// ties a request's logs together.
	correlationID string

	entries int
	bytes   int64
}

// New builds an Engine from cfg. cfg.Registry defaults to the five
// built-in extractors (DefaultRegistry) when nil.
func New(cfg Config) *Engine {
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry(cfg.RARTool)
	}
	return &Engine{cfg: cfg}
}

// Walk implements the public `walk(root, consume, on_error)` operation.
// A nil onError installs DefaultErrorHandler.
func (e *Engine) Walk(root string, consumer Consumer, onError ErrorHandler) error {
	if onError == nil {
		onError = DefaultErrorHandler
	}
	logger := e.cfg.Logger
	if logger == nil {
		logger = wtlog.Nop()
	}
	e.correlationID = uuid.New().String()
	logger = logger.With(zap.String("correlation_id", e.correlationID))
	e.consumer = consumer
	e.onError = func(displayPath string, attrs *attr.Bundle, message string, cause error) error {
		logger.Debug("walk: recovered error",
			zap.String("path", displayPath),
			zap.String("message", message),
			zap.Error(cause))
		return onError(displayPath, attrs, message, cause)
	}
	e.excludedPrefixes = make(map[string]bool)
	e.nonExcludedPrefixes = make(map[string]bool)

	start := time.Now()
	// rootName feeds extension/glob matching for a root that is itself a
	// file or archive; the display path of the root is always "" per
	// spec.md §3/§8 so descendants never carry a root-name prefix.
	rootName := filepath.Base(filepath.Clean(root))

	info, err := os.Lstat(root)
	if err != nil {
		walkErr := walkerr.New(walkerr.CodeIO, "walk.root", root, err)
		e.emitTelemetry(start, walkErr)
		return onError(root, nil, "stat root", err)
	}

	var walkErr error
	if info.IsDir() {
		walkErr = e.walkFS(root, "", "")
	} else {
		bundle, supplier, ferr := e.fsEntryBundle(root, info)
		if ferr != nil {
			walkErr = onError("", nil, "stat root entry", ferr)
		} else {
			walkErr = e.filter(filterInput{
				FSPath:      root,
				MatchPath:   rootName,
				DisplayPath: "",
				Supplier:    supplier,
				Attrs:       bundle,
			})
		}
	}

	e.emitTelemetry(start, walkErr)
	return walkErr
}

func (e *Engine) emitTelemetry(start time.Time, err error) {
	tel := e.cfg.Telemetry
	if tel == nil {
		tel = wttel.Global
	}
	code, _ := walkerr.CodeOf(err)
	tel.EmitOperation("walk", "fs", time.Since(start), e.entries, e.bytes, err, string(code), e.correlationID)
}

// nameCount counts the "/"-separated components of a display path,
// the unit spec.md §4.1's depth gate is defined in.
func nameCount(displayPath string) int {
	trimmed := strings.Trim(displayPath, "/")
	if trimmed == "" {
		return 0
	}
	return len(strings.Split(trimmed, "/"))
}
