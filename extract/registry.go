package extract

import "strings"

// Registry maps a lowercase extension to the Extractor that handles
// it, built lazily from a configured set and rebuilt whenever that set
// is mutated (spec.md §4.2). The zero value is not usable; use
// NewRegistry.
type Registry struct {
	extractors []Extractor
	byExt      map[string]Extractor
	built      bool
}

// NewRegistry builds a Registry over extractors. Order matters only
// when two extractors claim the same extension — the earlier one wins,
// matching the teacher's ByExtension dispatch convention of first-match
// precedence (grounded on other_examples' mholt/archiver ByExtension).
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// Set replaces the registry's extractor list and invalidates the
// cached extension map, forcing a rebuild on next lookup.
func (r *Registry) Set(extractors ...Extractor) {
	r.extractors = extractors
	r.byExt = nil
	r.built = false
}

func (r *Registry) build() {
	r.byExt = make(map[string]Extractor)
	for _, ex := range r.extractors {
		for _, ext := range ex.Extensions() {
			key := strings.ToLower(ext)
			if _, exists := r.byExt[key]; exists {
				continue
			}
			r.byExt[key] = ex
		}
	}
	r.built = true
}

// Lookup returns the extractor registered for ext (matched
// case-insensitively), and whether one was found.
func (r *Registry) Lookup(ext string) (Extractor, bool) {
	if !r.built {
		r.build()
	}
	ex, ok := r.byExt[strings.ToLower(ext)]
	return ex, ok
}

// Extractors returns the registry's configured extractor list, in
// configured order.
func (r *Registry) Extractors() []Extractor {
	return r.extractors
}
