package attr_test

import (
	"testing"
	"time"

	"github.com/fulmenhq/walktree/attr"
)

func TestBundlePutGetHas(t *testing.T) {
	b := attr.NewBundle()
	if attr.Has(b, attr.SIZE) {
		t.Fatalf("expected SIZE absent on empty bundle")
	}

	attr.Put(b, attr.SIZE, int64(42))
	v, ok := attr.Get(b, attr.SIZE)
	if !ok || v != 42 {
		t.Fatalf("expected SIZE=42, got %d ok=%v", v, ok)
	}

	attr.Delete(b, attr.SIZE)
	if attr.Has(b, attr.SIZE) {
		t.Fatalf("expected SIZE absent after delete")
	}
}

func TestBundleGetOr(t *testing.T) {
	b := attr.NewBundle()
	v := attr.GetOr(b, attr.SIZE, func() int64 { return -1 })
	if v != -1 {
		t.Fatalf("expected default -1, got %d", v)
	}
	attr.Put(b, attr.SIZE, int64(7))
	v = attr.GetOr(b, attr.SIZE, func() int64 { return -1 })
	if v != 7 {
		t.Fatalf("expected 7, got %d", v)
	}
}

func TestBundleCopyOnBranch(t *testing.T) {
	compressed := attr.NewBundle()
	attr.Put(compressed, attr.TYPE, attr.CompressedFile)
	attr.Put(compressed, attr.SIZE, int64(1000))
	attr.Put(compressed, attr.LastModifiedTime, time.Unix(100, 0))

	uncompressed := compressed.Copy()
	attr.Put(uncompressed, attr.InArchive, "GZIP")
	attr.Put(uncompressed, attr.TYPE, attr.RegularFile)
	attr.Delete(uncompressed, attr.SIZE)

	// Original must be untouched.
	if v, _ := attr.Get(compressed, attr.TYPE); v != attr.CompressedFile {
		t.Fatalf("mutating the clone leaked into the original TYPE")
	}
	if !attr.Has(compressed, attr.SIZE) {
		t.Fatalf("mutating the clone deleted SIZE from the original")
	}

	if v, _ := attr.Get(uncompressed, attr.TYPE); v != attr.RegularFile {
		t.Fatalf("expected clone TYPE=REGULAR_FILE, got %v", v)
	}
	if attr.Has(uncompressed, attr.SIZE) {
		t.Fatalf("expected clone SIZE absent")
	}
	if v, _ := attr.Get(uncompressed, attr.InArchive); v != "GZIP" {
		t.Fatalf("expected clone IN_ARCHIVE=GZIP, got %q", v)
	}
}

func TestBundleIsType(t *testing.T) {
	b := attr.NewBundle()
	if b.IsType(attr.Archive, attr.CompressedFile) {
		t.Fatalf("expected false on unclassified bundle")
	}
	attr.Put(b, attr.TYPE, attr.Archive)
	if !b.IsType(attr.Archive, attr.CompressedFile) {
		t.Fatalf("expected true, TYPE=ARCHIVE is one of the candidates")
	}
	if b.IsType(attr.Directory) {
		t.Fatalf("expected false, TYPE=ARCHIVE is not DIRECTORY")
	}
}

func TestBundleEqual(t *testing.T) {
	a := attr.NewBundle()
	attr.Put(a, attr.SIZE, int64(5))
	attr.Put(a, attr.TYPE, attr.RegularFile)

	b := attr.NewBundle()
	attr.Put(b, attr.TYPE, attr.RegularFile)
	attr.Put(b, attr.SIZE, int64(5))

	if !a.Equal(b) {
		t.Fatalf("expected structurally equal bundles to compare equal")
	}

	attr.Put(b, attr.SIZE, int64(6))
	if a.Equal(b) {
		t.Fatalf("expected bundles with differing SIZE to compare unequal")
	}
}

func TestBundleForEach(t *testing.T) {
	b := attr.NewBundle()
	attr.Put(b, attr.SIZE, int64(5))
	attr.Put(b, attr.UserName, "root")

	seen := map[string]any{}
	b.ForEach(func(name string, value any) {
		seen[name] = value
	})

	if len(seen) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(seen))
	}
	if seen["SIZE"] != int64(5) {
		t.Fatalf("expected SIZE=5 in ForEach output, got %v", seen["SIZE"])
	}
}
