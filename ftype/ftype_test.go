package ftype_test

import (
	"testing"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/ftype"
)

func TestFromMode(t *testing.T) {
	cases := []struct {
		mode uint32
		want attr.FileType
	}{
		{0x1000 | 0644, attr.FIFO},
		{0x2000 | 0644, attr.CharacterDevice},
		{0x4000 | 0755, attr.Directory},
		{0x6000 | 0644, attr.BlockDevice},
		{0x8000 | 0644, attr.RegularFile},
		{0x9000 | 0644, attr.Network},
		{0xA000 | 0777, attr.SymbolicLink},
		{0xC000 | 0600, attr.Socket},
		{0xD000 | 0600, attr.Door},
		{0xE000 | 0600, attr.EventPort},
		{0x0000 | 0600, attr.UnknownFileType},
	}
	for _, c := range cases {
		if got := ftype.FromMode(c.mode); got != c.want {
			t.Errorf("FromMode(%#o) = %v, want %v", c.mode, got, c.want)
		}
	}
}

func TestPermissionsDiscardsTypeNybble(t *testing.T) {
	got := ftype.Permissions(0x8000 | 0o7776)
	if got != 0o7776 {
		t.Fatalf("expected low 12 bits 0o7776, got %#o", got)
	}
}

// TestPermissionRoundTrip matches §8 scenario 5: mode bits 0o7776
// ("sst.rwx.rwx.rw_") must render as "rwsrwsrwT".
func TestPermissionRoundTrip(t *testing.T) {
	s := ftype.String(0o7776)
	if s != "rwsrwsrwT" {
		t.Fatalf("String(0o7776) = %q, want %q", s, "rwsrwsrwT")
	}

	back, err := ftype.ParsePermissions(s)
	if err != nil {
		t.Fatalf("ParsePermissions(%q) error: %v", s, err)
	}
	if back != 0o7776 {
		t.Fatalf("round trip mismatch: got %#o, want %#o", back, 0o7776)
	}
}

func TestParsePermissionsAcceptsLeadingTypeChar(t *testing.T) {
	perm, err := ftype.ParsePermissions("-rwxr-xr--")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if perm != 0o754 {
		t.Fatalf("got %#o, want %#o", perm, 0o754)
	}
}

func TestParsePermissionsRejectsBadLength(t *testing.T) {
	if _, err := ftype.ParsePermissions("rwx"); err == nil {
		t.Fatalf("expected error for short permission string")
	}
	if _, err := ftype.ParsePermissions("rwxrwxrwxrwx"); err == nil {
		t.Fatalf("expected error for long permission string")
	}
}

func TestStringNoSpecialBits(t *testing.T) {
	if s := ftype.String(0o644); s != "rw-r--r--" {
		t.Fatalf("String(0o644) = %q, want %q", s, "rw-r--r--")
	}
	if s := ftype.String(0o755); s != "rwxr-xr-x" {
		t.Fatalf("String(0o755) = %q, want %q", s, "rwxr-xr-x")
	}
}

func TestStringSetuidWithoutExec(t *testing.T) {
	// set-uid bit on, owner execute bit off -> capital S.
	if s := ftype.String(0o4644); s != "rwSr--r--" {
		t.Fatalf("String(0o4644) = %q, want %q", s, "rwSr--r--")
	}
}
