package array

// zeroValue is the type of the Zero sentinel. It is deliberately not
// constructible outside this package.
type zeroValue struct{}

func (zeroValue) String() string { return "[ZERO]" }

// Zero is the additive identity for gradient accumulation: adding it to any
// value yields that value unchanged, and multiplying by it yields Zero.
// The differentiation transforms seed absent adjoints and tangents with it
// so that downstream kernels never observe a missing value.
var Zero = zeroValue{}

// IsZero reports whether v is the Zero sentinel.
func IsZero(v any) bool {
	_, ok := v.(zeroValue)
	return ok
}
