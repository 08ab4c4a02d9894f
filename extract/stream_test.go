package extract_test

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/extract"
)

func buildTarBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, body := range entries {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body))}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatalf("write body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	return buf.Bytes()
}

func TestStreamArchiveExtractorTar(t *testing.T) {
	data := buildTarBytes(t, map[string]string{"one.txt": "111", "dir/two.txt": "22"})

	var ex extract.StreamArchiveExtractor
	archiveAttrs := attr.NewBundle()
	attr.Put(archiveAttrs, attr.TYPE, attr.Archive)

	type frameRecord struct {
		displayPath string
		body        string
	}
	var got []frameRecord

	op := extract.Op{
		Extension:   "tar",
		DisplayPath: "archive.tar",
		MatchPath:   "archive.tar",
		ArchiveAttr: archiveAttrs,
		Supplier: func() (io.Reader, error) {
			return bytes.NewReader(data), nil
		},
		Emit: func(f extract.Frame) error {
			var body string
			if f.Supplier != nil {
				r, err := f.Supplier()
				if err != nil {
					return err
				}
				raw, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				body = string(raw)
			}
			got = append(got, frameRecord{displayPath: f.DisplayPath, body: body})
			return nil
		},
		OnError: func(displayPath string, _ *attr.Bundle, message string, cause error) error {
			t.Fatalf("unexpected OnError for %s: %s: %v", displayPath, message, cause)
			return nil
		},
	}

	if err := ex.Extract(op); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := map[string]string{
		"archive.tar/one.txt":     "111",
		"archive.tar/dir/two.txt": "22",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d: %+v", len(got), len(want), got)
	}
	for _, g := range got {
		if want[g.displayPath] != g.body {
			t.Errorf("frame %s: body = %q, want %q", g.displayPath, g.body, want[g.displayPath])
		}
	}
}

func TestStreamArchiveExtractorUnsupportedExtensionSkips(t *testing.T) {
	var ex extract.StreamArchiveExtractor
	op := extract.Op{
		Extension: "bogus",
		Supplier: func() (io.Reader, error) {
			return bytes.NewReader(nil), nil
		},
		OnError: func(displayPath string, _ *attr.Bundle, message string, cause error) error {
			return nil
		},
	}
	err := ex.Extract(op)
	if err != extract.ErrSkipArchive {
		t.Fatalf("Extract with unsupported extension = %v, want ErrSkipArchive", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := extract.NewRegistry(extract.StreamArchiveExtractor{}, extract.ZipExtractor{})

	if _, ok := reg.Lookup("TAR"); !ok {
		t.Fatalf("expected case-insensitive lookup to find 'tar' extractor for 'TAR'")
	}
	if _, ok := reg.Lookup("unknown-ext"); ok {
		t.Fatalf("did not expect a match for an unregistered extension")
	}
}

func TestMaterializePassThrough(t *testing.T) {
	op := extract.Op{FSPath: "/already/on/disk.zip"}
	raf, err := extract.Materialize(op, "walktree-test-*")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer raf.Cleanup()
	if raf.Spilled {
		t.Fatalf("expected pass-through (no spill) when FSPath is already set")
	}
	if raf.Path != op.FSPath {
		t.Fatalf("Path = %q, want %q", raf.Path, op.FSPath)
	}
}

func TestMaterializeSpillsStream(t *testing.T) {
	op := extract.Op{
		DisplayPath: "nested.zip",
		Supplier: func() (io.Reader, error) {
			return bytes.NewReader([]byte("zip bytes")), nil
		},
	}
	raf, err := extract.Materialize(op, "walktree-test-*")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	defer raf.Cleanup()
	if !raf.Spilled {
		t.Fatalf("expected a spilled temp file when FSPath is empty")
	}
}

func TestNoCloseIgnoresClose(t *testing.T) {
	r := extract.NoClose(bytes.NewReader([]byte("x")))
	if err := r.Close(); err != nil {
		t.Fatalf("NoClose-wrapped Close() should never error, got %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil || string(data) != "x" {
		t.Fatalf("expected to still read through after Close(), got %q, %v", data, err)
	}
}
