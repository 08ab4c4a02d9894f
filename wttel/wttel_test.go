package wttel_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fulmenhq/walktree/wttel"
)

type fakeRecorder struct {
	counters   []counterCall
	histograms []histogramCall
}

type counterCall struct {
	name  string
	value float64
	tags  map[string]string
}

type histogramCall struct {
	name string
	d    time.Duration
	tags map[string]string
}

func (f *fakeRecorder) Counter(name string, value float64, tags map[string]string) {
	f.counters = append(f.counters, counterCall{name, value, tags})
}

func (f *fakeRecorder) Histogram(name string, d time.Duration, tags map[string]string) {
	f.histograms = append(f.histograms, histogramCall{name, d, tags})
}

func TestEmitOperationNoRecorderIsNoop(t *testing.T) {
	sys := &wttel.System{}
	// Must not panic with no recorder installed.
	sys.EmitOperation("walk", "fs", time.Millisecond, 1, 100, nil, "", "")
}

func TestEmitOperationSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	sys := &wttel.System{}
	sys.Configure(rec)

	sys.EmitOperation("walk", "fs", 5*time.Millisecond, 3, 1024, nil, "", "")

	if len(rec.counters) != 3 {
		t.Fatalf("expected walks/bytes/entries counters, got %d: %+v", len(rec.counters), rec.counters)
	}
	if len(rec.histograms) != 1 {
		t.Fatalf("expected one histogram emission, got %d", len(rec.histograms))
	}
	for _, c := range rec.counters {
		if c.tags[wttel.TagStatus] != wttel.StatusSuccess {
			t.Errorf("expected success status tag on %s, got %q", c.name, c.tags[wttel.TagStatus])
		}
	}
}

func TestEmitOperationError(t *testing.T) {
	rec := &fakeRecorder{}
	sys := &wttel.System{}
	sys.Configure(rec)

	sys.EmitOperation("walk", "fs", time.Millisecond, 0, 0, errors.New("boom"), "IO", "")

	var sawErrorCounter bool
	for _, c := range rec.counters {
		if c.name == wttel.MetricErrorsTotal {
			sawErrorCounter = true
			if c.tags[wttel.TagErrorType] != "IO" {
				t.Errorf("expected error_type=IO, got %q", c.tags[wttel.TagErrorType])
			}
		}
		if c.name == wttel.MetricBytesTotal || c.name == wttel.MetricEntriesTotal {
			t.Errorf("did not expect %s counter when entries/bytes are zero", c.name)
		}
	}
	if !sawErrorCounter {
		t.Fatalf("expected an errors_total counter emission")
	}
}

func TestEmitOperationCorrelationIDTagged(t *testing.T) {
	rec := &fakeRecorder{}
	sys := &wttel.System{}
	sys.Configure(rec)

	sys.EmitOperation("walk", "fs", time.Millisecond, 1, 0, nil, "", "corr-123")

	for _, c := range rec.counters {
		if c.tags[wttel.TagCorrelationID] != "corr-123" {
			t.Errorf("expected correlation_id=corr-123 on %s, got %q", c.name, c.tags[wttel.TagCorrelationID])
		}
	}
}

func TestConfigureNilDisables(t *testing.T) {
	rec := &fakeRecorder{}
	sys := &wttel.System{}
	sys.Configure(rec)
	sys.Configure(nil)

	sys.EmitOperation("walk", "fs", time.Millisecond, 1, 1, nil, "", "")
	if len(rec.counters) != 0 {
		t.Fatalf("expected no emissions after Configure(nil), got %d", len(rec.counters))
	}
}
