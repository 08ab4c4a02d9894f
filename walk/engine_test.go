package walk

import (
	"io"
	"testing"

	"github.com/fulmenhq/walktree/extract"
)

type closeTrackingReader struct {
	io.Reader
	closed *bool
}

func (c closeTrackingReader) Close() error {
	*c.closed = true
	return nil
}

func TestTrackLastReaderClosesAfterConsumerReturns(t *testing.T) {
	closed := false
	supplier := extract.Supplier(func() (io.Reader, error) {
		return closeTrackingReader{Reader: nil, closed: &closed}, nil
	})

	wrapped, closeLast := trackLastReader(supplier)
	if _, err := wrapped(); err != nil {
		t.Fatalf("wrapped supplier: %v", err)
	}
	if closed {
		t.Fatalf("reader should not be closed before closeLast is called")
	}
	closeLast()
	if !closed {
		t.Fatalf("expected closeLast to close the last-produced reader")
	}
}

func TestTrackLastReaderNilSupplier(t *testing.T) {
	wrapped, closeLast := trackLastReader(nil)
	if wrapped != nil {
		t.Fatalf("expected a nil supplier to stay nil")
	}
	closeLast() // must not panic
}
