// Package pathmatch implements the glob matcher used for include/exclude
// filtering (§4.1). A user-supplied glob G matches at any depth: it is
// compiled to match either G directly or **/G, per §4.1's
// "Path-matcher semantics" paragraph. Matching is always performed
// against "/"-separated paths; filesystem callers normalize host
// separators before calling in, the same way the teacher's
// pathfinder/finder.go normalizes with filepath.ToSlash before handing
// paths to doublestar.
package pathmatch

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher compiles a single glob pattern into its any-depth form.
type Matcher struct {
	direct   string
	anyDepth string
}

// Compile builds a Matcher for pattern. Compile never fails: doublestar
// patterns are validated lazily on Match, consistent with the teacher's
// fire-and-forget `doublestar.Match(pattern, path)` call sites (errors
// there are only ever a malformed pattern, treated as "does not match").
func Compile(pattern string) *Matcher {
	clean := strings.TrimPrefix(pattern, "/")
	return &Matcher{
		direct:   clean,
		anyDepth: path.Join("**", clean),
	}
}

// Match reports whether p (a "/"-separated path, no leading slash)
// matches the compiled pattern at its own depth or at any depth beneath
// the path root.
func (m *Matcher) Match(p string) bool {
	p = strings.TrimPrefix(p, "/")
	if ok, _ := doublestar.Match(m.direct, p); ok {
		return true
	}
	ok, _ := doublestar.Match(m.anyDepth, p)
	return ok
}

// String returns the pattern as supplied to Compile, minus any leading
// "/".
func (m *Matcher) String() string {
	return m.direct
}

// Set is an ordered collection of compiled patterns, used for both the
// inclusion and exclusion lists in the traversal engine's configuration.
type Set struct {
	matchers []*Matcher
}

// NewSet compiles patterns into a Set. An empty or nil patterns slice
// yields an empty Set whose MatchAny always returns false — callers
// distinguish "no patterns configured" (include-everything) from "no
// pattern matched" themselves, per §4.1's emission rule.
func NewSet(patterns ...string) *Set {
	s := &Set{matchers: make([]*Matcher, 0, len(patterns))}
	for _, p := range patterns {
		s.matchers = append(s.matchers, Compile(p))
	}
	return s
}

// With returns a new Set containing s's patterns plus pattern,
// leaving s itself unmodified — used by configuration builders that
// treat each accumulating call as producing the next immutable config
// value (walktree.Walker.Include/Exclude).
func (s *Set) With(pattern string) *Set {
	next := &Set{matchers: make([]*Matcher, len(s.matchers), len(s.matchers)+1)}
	copy(next.matchers, s.matchers)
	next.matchers = append(next.matchers, Compile(pattern))
	return next
}

// Empty reports whether the set has zero patterns.
func (s *Set) Empty() bool {
	return len(s.matchers) == 0
}

// MatchAny reports whether p matches at least one pattern in the set.
func (s *Set) MatchAny(p string) bool {
	for _, m := range s.matchers {
		if m.Match(p) {
			return true
		}
	}
	return false
}

// Prefixes returns every non-empty "/"-separated prefix of p, shortest
// first, including p itself. Used by the traversal engine's exclusion
// check (§4.1: "For each non-empty prefix of match_path, short-circuit
// and drop if that prefix matches an exclusion pattern").
func Prefixes(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	prefixes := make([]string, 0, len(parts))
	for i := range parts {
		prefixes = append(prefixes, strings.Join(parts[:i+1], "/"))
	}
	return prefixes
}
