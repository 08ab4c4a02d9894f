// Package wttel records walk/extract operation metrics, modeled on
// fulpack.emitOperationMetrics (fulpack/telemetry.go) and the teacher's
// telemetry.System it calls into. The teacher's telemetry package
// (telemetry/telemetry.go) is a multi-exporter system with buffering,
// flush policies and HTTP histogram middleware sized for a service
// mesh; walktree is a synchronous library call, so wttel keeps only
// the shape fulpack actually exercises — Counter/Histogram with tags —
// backed by a minimal in-process Recorder interface instead of an
// exporter framework. A caller wanting Prometheus/OTel output supplies
// their own Recorder.
package wttel

import (
	"sync"
	"time"
)

// Recorder is the sink operation metrics are emitted to. Implementations
// wrap whatever real metrics backend a caller has already wired (the
// teacher's telemetry.System, Prometheus, OTel, etc). Errors are
// intentionally not returned: per fulpack's convention, metrics
// emission never fails the operation it is observing.
type Recorder interface {
	Counter(name string, value float64, tags map[string]string)
	Histogram(name string, d time.Duration, tags map[string]string)
}

const (
	// MetricWalksTotal counts completed Walk/MakeTree invocations.
	MetricWalksTotal = "walktree_walks_total"
	// MetricEntriesTotal counts entries yielded to the consumer.
	MetricEntriesTotal = "walktree_entries_total"
	// MetricBytesTotal counts the byte total the caller reports; the
	// walk engine reports the summed SIZE of emitted entries that have
	// a stream.
	MetricBytesTotal = "walktree_bytes_total"
	// MetricErrorsTotal counts Walk/MakeTree invocations that ended in
	// an error.
	MetricErrorsTotal = "walktree_errors_total"
	// MetricWalkMs observes a Walk/MakeTree's wall-clock duration.
	MetricWalkMs = "walktree_walk_duration_ms"

	// TagOperation/TagStatus/TagErrorType/TagFormat name the standard
	// tag keys, mirroring the teacher's metrics.TagOperation family.
	TagOperation = "operation"
	TagStatus    = "status"
	TagErrorType = "error_type"
	TagFormat    = "format"

	// TagCorrelationID carries the per-call correlation ID the engine
	// generates for each Walk/MakeTree invocation, mirroring the
	// teacher's foundry.NewCorrelationID usage for cross-log
	// aggregation of a single operation's emitted metrics and errors.
	TagCorrelationID = "correlation_id"

	StatusSuccess = "success"
	StatusError   = "error"
)

// System is the package's recorder holder. The zero value (as obtained
// via &System{}) degrades gracefully: EmitOperation is a no-op until
// Configure installs a Recorder, the same
// "operate without telemetry" fallback fulpack.initTelemetry uses.
type System struct {
	mu       sync.RWMutex
	recorder Recorder
}

// Configure installs r as the active recorder. Passing nil disables
// emission again.
func (s *System) Configure(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

func (s *System) active() Recorder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recorder
}

// EmitOperation records one walk/extract operation's outcome, mirroring
// fulpack.emitOperationMetrics's tag shape (operation, format, status)
// plus duration/entry/byte/error counters. errCode is the walkerr.Code
// string when opErr is a *walkerr.WalkError, or "" otherwise; callers
// pass it explicitly (via walkerr.CodeOf) rather than wttel importing
// walkerr itself, keeping this package usable without pulling in the
// traversal engine's error types. correlationID, when non-empty, is
// attached to every emitted tag set so a Recorder backend can group one
// call's counters/histograms together the way its log lines already
// are (see the correlation_id field walk.Engine adds to its logger).
func (s *System) EmitOperation(operation, format string, duration time.Duration, entries int, bytesProcessed int64, opErr error, errCode, correlationID string) {
	r := s.active()
	if r == nil {
		return
	}

	status := StatusSuccess
	if opErr != nil {
		status = StatusError
	}
	tags := map[string]string{
		TagOperation: operation,
		TagFormat:    format,
		TagStatus:    status,
	}
	if correlationID != "" {
		tags[TagCorrelationID] = correlationID
	}

	r.Counter(MetricWalksTotal, 1, tags)
	r.Histogram(MetricWalkMs, duration, tags)
	if bytesProcessed > 0 {
		r.Counter(MetricBytesTotal, float64(bytesProcessed), tags)
	}
	if entries > 0 {
		r.Counter(MetricEntriesTotal, float64(entries), tags)
	}
	if opErr != nil {
		errTags := map[string]string{TagOperation: operation, TagFormat: format}
		if correlationID != "" {
			errTags[TagCorrelationID] = correlationID
		}
		if errCode != "" {
			errTags[TagErrorType] = errCode
		} else {
			errTags[TagErrorType] = "unknown"
		}
		r.Counter(MetricErrorsTotal, 1, errTags)
	}
}

// Global is the package-level default System, mirroring the teacher's
// package-level globalTelemetrySystem singleton (fulpack/telemetry.go).
var Global = &System{}
