package array

import "fmt"

// Stack joins values of equal shape into a new array with an extra
// dimension of length len(elems) inserted at axis. Scalar elements stack
// into a 1-D array. Zero elements materialize as zero-filled values shaped
// like their siblings; if every element is Zero the result is Zero.
func Stack(elems []any, axis int) (any, error) {
	if len(elems) == 0 {
		return nil, fmt.Errorf("array: stack of zero values")
	}
	proto := firstConcrete(elems)
	if proto == nil {
		return Zero, nil
	}
	switch p := proto.(type) {
	case float64:
		if axis != 0 {
			return nil, fmt.Errorf("array: axis %d out of range for scalar stack", axis)
		}
		out := New(len(elems))
		for j, e := range elems {
			if IsZero(e) {
				continue
			}
			s, ok := e.(float64)
			if !ok {
				return nil, fmt.Errorf("array: stack of mixed %T and %T", proto, e)
			}
			out.data[j] = s
		}
		return out, nil
	case *Array:
		if axis < 0 || axis > len(p.shape) {
			return nil, fmt.Errorf("array: stack axis %d out of range for shape %v", axis, p.shape)
		}
		shape := make([]int, 0, len(p.shape)+1)
		shape = append(shape, p.shape[:axis]...)
		shape = append(shape, len(elems))
		shape = append(shape, p.shape[axis:]...)
		out := New(shape...)
		outer, inner := splitAt(p.shape, axis)
		k := len(elems)
		for j, e := range elems {
			if IsZero(e) {
				continue
			}
			a, ok := e.(*Array)
			if !ok || !sameShape(a, p) {
				return nil, fmt.Errorf("array: stack element %d does not match shape %v", j, p.shape)
			}
			for o := 0; o < outer; o++ {
				copy(out.data[(o*k+j)*inner:(o*k+j+1)*inner], a.data[o*inner:(o+1)*inner])
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("array: cannot stack %T values", proto)
}

// Take selects index i along axis, dropping that dimension. Taking from a
// 1-D array yields a scalar; taking from a list value (axis 0) yields the
// element. Take of Zero is Zero.
func Take(v any, i, axis int) (any, error) {
	if IsZero(v) {
		return Zero, nil
	}
	switch x := v.(type) {
	case []any:
		if axis != 0 {
			return nil, fmt.Errorf("array: axis %d out of range for list take", axis)
		}
		if i < 0 || i >= len(x) {
			return nil, fmt.Errorf("array: take index %d out of range [0,%d)", i, len(x))
		}
		return x[i], nil
	case *Array:
		if axis < 0 || axis >= len(x.shape) {
			return nil, fmt.Errorf("array: take axis %d out of range for shape %v", axis, x.shape)
		}
		k := x.shape[axis]
		if i < 0 || i >= k {
			return nil, fmt.Errorf("array: take index %d out of range [0,%d)", i, k)
		}
		shape := make([]int, 0, len(x.shape)-1)
		shape = append(shape, x.shape[:axis]...)
		shape = append(shape, x.shape[axis+1:]...)
		outer, inner := splitAt(shape, axis)
		if len(shape) == 0 {
			return x.data[i], nil
		}
		out := New(shape...)
		for o := 0; o < outer; o++ {
			copy(out.data[o*inner:(o+1)*inner], x.data[(o*k+i)*inner:(o*k+i+1)*inner])
		}
		return out, nil
	}
	return nil, fmt.Errorf("array: cannot take from %T", v)
}

// Untake is the adjoint of Take: a value shaped like `like`, zero
// everywhere except index i along axis, where v is placed.
func Untake(like any, v any, i, axis int) (any, error) {
	if IsZero(v) {
		return Zero, nil
	}
	x, ok := like.(*Array)
	if !ok {
		return nil, fmt.Errorf("array: cannot untake into %T", like)
	}
	if axis < 0 || axis >= len(x.shape) {
		return nil, fmt.Errorf("array: untake axis %d out of range for shape %v", axis, x.shape)
	}
	k := x.shape[axis]
	if i < 0 || i >= k {
		return nil, fmt.Errorf("array: untake index %d out of range [0,%d)", i, k)
	}
	out := New(x.shape...)
	taken := make([]int, 0, len(x.shape)-1)
	taken = append(taken, x.shape[:axis]...)
	taken = append(taken, x.shape[axis+1:]...)
	outer, inner := splitAt(taken, axis)
	if len(taken) == 0 {
		s, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("array: untake of %T into 1-D array", v)
		}
		out.data[i] = s
		return out, nil
	}
	a, ok := v.(*Array)
	if !ok {
		return nil, fmt.Errorf("array: untake of %T into shape %v", v, x.shape)
	}
	for o := 0; o < outer; o++ {
		copy(out.data[(o*k+i)*inner:(o*k+i+1)*inner], a.data[o*inner:(o+1)*inner])
	}
	return out, nil
}

// splitAt returns the element counts before and after axis for a shape
// with the axis dimension removed.
func splitAt(shape []int, axis int) (outer, inner int) {
	outer, inner = 1, 1
	for _, d := range shape[:axis] {
		outer *= d
	}
	for _, d := range shape[axis:] {
		inner *= d
	}
	return outer, inner
}

func firstConcrete(elems []any) any {
	for _, e := range elems {
		if !IsZero(e) {
			return e
		}
	}
	return nil
}
