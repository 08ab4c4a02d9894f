package pathmatch_test

import (
	"testing"

	"github.com/fulmenhq/walktree/pathmatch"
)

func TestMatchAnyDepth(t *testing.T) {
	m := pathmatch.Compile("*.py")
	cases := map[string]bool{
		"a.py":        true,
		"dir/a.py":    true,
		"dir/sub/a.py": true,
		"a.go":        false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Errorf("Match(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestMatchExactAtDepth(t *testing.T) {
	m := pathmatch.Compile("d1")
	if !m.Match("d1") {
		t.Errorf("expected top-level 'd1' to match pattern 'd1'")
	}
	if !m.Match("a/d1") {
		t.Errorf("expected nested 'a/d1' to match pattern 'd1' via any-depth semantics")
	}
}

func TestSetEmptyMatchesNothing(t *testing.T) {
	s := pathmatch.NewSet()
	if !s.Empty() {
		t.Fatalf("expected empty set")
	}
	if s.MatchAny("anything") {
		t.Fatalf("empty set must not match")
	}
}

func TestSetMatchAny(t *testing.T) {
	s := pathmatch.NewSet("*.py", "1*")
	if !s.MatchAny("3.py") {
		t.Fatalf("expected 3.py to match *.py")
	}
	if !s.MatchAny("10.j") {
		t.Fatalf("expected 10.j to match 1*")
	}
	if s.MatchAny("2.j") {
		t.Fatalf("expected 2.j to not match either pattern")
	}
}

func TestPrefixes(t *testing.T) {
	got := pathmatch.Prefixes("a/b/c")
	want := []string{"a", "a/b", "a/b/c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPrefixesEmpty(t *testing.T) {
	if got := pathmatch.Prefixes(""); got != nil {
		t.Fatalf("expected nil prefixes for empty path, got %v", got)
	}
}
