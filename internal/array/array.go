// Package array provides the dense value type the vmad engine computes
// over, together with the small value algebra shared by operator kernels
// and gradient accumulation.
//
// Values handled by this package are:
//   - float64: a scalar
//   - *Array: a dense n-dimensional float64 array
//   - []any: a list of values (list-valued operator arguments)
//   - Zero: the additive identity sentinel
//
// The engine itself treats values as opaque; only kernels and the adjoint
// accumulation path go through this algebra.
package array

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Array is a dense n-dimensional float64 array in row-major order.
type Array struct {
	shape []int
	data  []float64
}

// New returns a zero-filled array with the given shape.
func New(shape ...int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Array{shape: append([]int(nil), shape...), data: make([]float64, n)}
}

// FromSlice returns a 1-D array with a copy of data.
func FromSlice(data []float64) *Array {
	return &Array{shape: []int{len(data)}, data: append([]float64(nil), data...)}
}

// NewFromData wraps data (copied) under the given shape.
func NewFromData(data []float64, shape ...int) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("array: negative dimension %d", d)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("array: shape %v needs %d elements, have %d", shape, n, len(data))
	}
	return &Array{shape: append([]int(nil), shape...), data: append([]float64(nil), data...)}, nil
}

// Arange returns the 1-D array [0, 1, ..., n-1].
func Arange(n int) *Array {
	a := New(n)
	for i := range a.data {
		a.data[i] = float64(i)
	}
	return a
}

// Basis returns the i-th unit vector of length n.
func Basis(n, i int) *Array {
	a := New(n)
	a.data[i] = 1
	return a
}

// Shape returns the dimensions of the array. The slice is shared; callers
// must not modify it.
func (a *Array) Shape() []int { return a.shape }

// Data returns the backing slice. The slice is shared; callers must not
// modify it.
func (a *Array) Data() []float64 { return a.data }

// Len returns the total number of elements.
func (a *Array) Len() int { return len(a.data) }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{
		shape: append([]int(nil), a.shape...),
		data:  append([]float64(nil), a.data...),
	}
}

// Equal reports elementwise equality of shape and data.
func (a *Array) Equal(b *Array) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i, d := range a.shape {
		if b.shape[i] != d {
			return false
		}
	}
	return floats.Equal(a.data, b.data)
}

func (a *Array) String() string {
	return fmt.Sprintf("array%v%v", a.shape, a.data)
}

// Clone returns a deep copy of any supported value. Scalars and Zero are
// returned as-is; arrays and lists are copied recursively.
func Clone(v any) any {
	switch x := v.(type) {
	case *Array:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// ZerosLike returns a concrete zero value with the shape of v. For the Zero
// sentinel there is no shape to mirror, so Zero is returned unchanged.
func ZerosLike(v any) any {
	switch x := v.(type) {
	case *Array:
		return New(x.shape...)
	case float64:
		return 0.0
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ZerosLike(e)
		}
		return out
	default:
		return Zero
	}
}

// Add returns a + b. Zero is the identity; a scalar broadcasts against an
// array; two arrays must agree in shape.
func Add(a, b any) (any, error) {
	if IsZero(a) {
		return b, nil
	}
	if IsZero(b) {
		return a, nil
	}
	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x + y, nil
		case *Array:
			out := y.Clone()
			floats.AddConst(x, out.data)
			return out, nil
		}
	case *Array:
		switch y := b.(type) {
		case float64:
			out := x.Clone()
			floats.AddConst(y, out.data)
			return out, nil
		case *Array:
			if !sameShape(x, y) {
				return nil, fmt.Errorf("array: add shape mismatch %v vs %v", x.shape, y.shape)
			}
			out := x.Clone()
			floats.Add(out.data, y.data)
			return out, nil
		}
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return nil, fmt.Errorf("array: cannot add list and %T", b)
		}
		out := make([]any, len(x))
		for i := range x {
			s, err := Add(x[i], y[i])
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("array: cannot add %T and %T", a, b)
}

// Mul returns a * b elementwise. Zero is absorbing; a scalar broadcasts
// against an array.
func Mul(a, b any) (any, error) {
	if IsZero(a) || IsZero(b) {
		return Zero, nil
	}
	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x * y, nil
		case *Array:
			out := y.Clone()
			floats.Scale(x, out.data)
			return out, nil
		}
	case *Array:
		switch y := b.(type) {
		case float64:
			out := x.Clone()
			floats.Scale(y, out.data)
			return out, nil
		case *Array:
			if !sameShape(x, y) {
				return nil, fmt.Errorf("array: mul shape mismatch %v vs %v", x.shape, y.shape)
			}
			out := x.Clone()
			floats.Mul(out.data, y.data)
			return out, nil
		}
	}
	return nil, fmt.Errorf("array: cannot multiply %T and %T", a, b)
}

// Div returns a / b elementwise. Zero divided by anything is Zero.
func Div(a, b any) (any, error) {
	if IsZero(a) {
		return Zero, nil
	}
	if IsZero(b) {
		return nil, fmt.Errorf("array: division by the zero sentinel")
	}
	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x / y, nil
		case *Array:
			out := y.Clone()
			for i, e := range y.data {
				out.data[i] = x / e
			}
			return out, nil
		}
	case *Array:
		switch y := b.(type) {
		case float64:
			out := x.Clone()
			floats.Scale(1/y, out.data)
			return out, nil
		case *Array:
			if !sameShape(x, y) {
				return nil, fmt.Errorf("array: div shape mismatch %v vs %v", x.shape, y.shape)
			}
			out := x.Clone()
			floats.Div(out.data, y.data)
			return out, nil
		}
	}
	return nil, fmt.Errorf("array: cannot divide %T by %T", a, b)
}

// Scale returns alpha * v.
func Scale(alpha float64, v any) (any, error) {
	return Mul(alpha, v)
}

// Pow returns v ** n elementwise.
func Pow(v any, n float64) (any, error) {
	switch x := v.(type) {
	case float64:
		return math.Pow(x, n), nil
	case *Array:
		out := x.Clone()
		for i, e := range x.data {
			out.data[i] = math.Pow(e, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("array: cannot raise %T to a power", v)
}

// Log returns the natural logarithm elementwise.
func Log(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return math.Log(x), nil
	case *Array:
		out := x.Clone()
		for i, e := range x.data {
			out.data[i] = math.Log(e)
		}
		return out, nil
	}
	return nil, fmt.Errorf("array: cannot take log of %T", v)
}

// Dot returns the inner product of a and b. Zero on either side yields
// Zero.
func Dot(a, b any) (any, error) {
	if IsZero(a) || IsZero(b) {
		return Zero, nil
	}
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return x * y, nil
		}
	case *Array:
		if y, ok := b.(*Array); ok {
			if !sameShape(x, y) {
				return nil, fmt.Errorf("array: dot shape mismatch %v vs %v", x.shape, y.shape)
			}
			return floats.Dot(x.data, y.data), nil
		}
	}
	return nil, fmt.Errorf("array: cannot dot %T and %T", a, b)
}

// SumSquares returns the sum of squared elements as a scalar.
func SumSquares(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x * x, nil
	case *Array:
		return floats.Dot(x.data, x.data), nil
	}
	return nil, fmt.Errorf("array: cannot reduce %T to a scalar", v)
}

func sameShape(a, b *Array) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i, d := range a.shape {
		if b.shape[i] != d {
			return false
		}
	}
	return true
}
