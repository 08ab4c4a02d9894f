package attr

// Bundle is a heterogeneous, copy-on-branch map of attribute descriptors
// to values, as specified in §4.3. The zero value is usable empty.
type Bundle struct {
	values map[untypedAttr]any
}

// NewBundle returns an empty, ready-to-use Bundle.
func NewBundle() *Bundle {
	return &Bundle{values: make(map[untypedAttr]any)}
}

// Put stores value under a. A zero value is a legitimate value — to
// remove an attribute, call Delete.
func Put[T any](b *Bundle, a Attr[T], value T) {
	if b.values == nil {
		b.values = make(map[untypedAttr]any)
	}
	b.values[a] = value
}

// Delete removes an attribute. Equivalent to "setting absent" in §4.3.
func Delete[T any](b *Bundle, a Attr[T]) {
	delete(b.values, a)
}

// Get retrieves a's value and whether it was present ("absent" sentinel).
func Get[T any](b *Bundle, a Attr[T]) (T, bool) {
	var zero T
	if b.values == nil {
		return zero, false
	}
	raw, ok := b.values[a]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// GetOr returns a's value, or the result of producer() if absent.
func GetOr[T any](b *Bundle, a Attr[T], producer func() T) T {
	if v, ok := Get(b, a); ok {
		return v
	}
	return producer()
}

// Has reports whether a is present.
func Has[T any](b *Bundle, a Attr[T]) bool {
	if b.values == nil {
		return false
	}
	_, ok := b.values[a]
	return ok
}

// Copy returns a shallow clone whose subsequent mutation doesn't affect
// the receiver. This is the basis for the copy-on-branch contract: a
// decompressor clones the compressed file's bundle before overwriting
// IN_ARCHIVE/TYPE/SIZE for the uncompressed view.
func (b *Bundle) Copy() *Bundle {
	clone := &Bundle{values: make(map[untypedAttr]any, len(b.values))}
	for k, v := range b.values {
		clone.values[k] = v
	}
	return clone
}

// ForEach calls fn once per stored (descriptor-name, value) pair. Order
// is unspecified.
func (b *Bundle) ForEach(fn func(name string, value any)) {
	for k, v := range b.values {
		fn(k.attrName(), v)
	}
}

// IsType reports whether the bundle's TYPE is one of the given types.
// False if TYPE is absent.
func (b *Bundle) IsType(types ...FileType) bool {
	t, ok := Get(b, TYPE)
	if !ok {
		return false
	}
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

// Len reports the number of attributes currently stored.
func (b *Bundle) Len() int {
	return len(b.values)
}

// Equal reports structural equality over the underlying mapping, per
// §4.3's "Equality and hashing are structural" requirement. Values must
// be comparable with ==; Bundle never stores non-comparable attribute
// values (DOSFlags and FileType both satisfy this).
func (b *Bundle) Equal(other *Bundle) bool {
	if len(b.values) != len(other.values) {
		return false
	}
	for k, v := range b.values {
		ov, ok := other.values[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
