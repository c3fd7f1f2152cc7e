package types

// Identity is an opaque, externally authenticated principal such as an
// account address. Equality is exact; no normalization is applied.
type Identity string

// String returns the identity as a string.
func (i Identity) String() string { return string(i) }

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool { return i == "" }
