package linalg

import (
	"fmt"

	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/core"
)

// Stack joins a list of equally-shaped values into one array with a new
// dimension at axis. The axis is a non-differentiated side parameter.
//
// Reverse: the output adjoint is unstacked, one slice per list element.
var stackOp = core.MustDeclare(core.Def{
	Name: "stack",
	In:   []core.Arg{{Name: "x", Type: "list"}},
	Out:  []core.Arg{{Name: "y", Type: "ndarray"}},
	Apply: core.KernelSpec{
		Args: []string{"x", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			elems, ok := kw["x"].([]any)
			if !ok {
				return nil, fmt.Errorf("stack: expected a list, got %T", kw["x"])
			}
			y, err := array.Stack(elems, kw["axis"].(int))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y": y}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y", "x", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			elems, ok := kw["x"].([]any)
			if !ok {
				return nil, fmt.Errorf("stack: expected a list, got %T", kw["x"])
			}
			gy := kw["_y"]
			if array.IsZero(gy) {
				return core.Kwargs{"_x": array.Zero}, nil
			}
			axis := kw["axis"].(int)
			gx := make([]any, len(elems))
			for j := range elems {
				g, err := array.Take(gy, j, axis)
				if err != nil {
					return nil, err
				}
				gx[j] = g
			}
			return core.Kwargs{"_x": gx}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			if array.IsZero(kw["x_"]) {
				return core.Kwargs{"y_": array.Zero}, nil
			}
			elems, ok := kw["x_"].([]any)
			if !ok {
				return nil, fmt.Errorf("stack: expected a list tangent, got %T", kw["x_"])
			}
			t, err := array.Stack(elems, kw["axis"].(int))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y_": t}, nil
		},
	},
})

// Take selects index i along axis, dropping that dimension. Taking from a
// list argument selects the i-th element. Both i and axis are side
// parameters.
//
// Reverse: the output adjoint is scattered back to index i, with the
// additive identity everywhere else.
var takeOp = core.MustDeclare(core.Def{
	Name: "take",
	In:   []core.Arg{{Name: "x", Type: "*"}},
	Out:  []core.Arg{{Name: "y", Type: "*"}},
	Apply: core.KernelSpec{
		Args: []string{"x", "i", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			y, err := array.Take(kw["x"], kw["i"].(int), kw["axis"].(int))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y": y}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y", "x", "i", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			i := kw["i"].(int)
			gy := kw["_y"]
			if elems, ok := kw["x"].([]any); ok {
				gx := make([]any, len(elems))
				for j := range gx {
					gx[j] = array.Zero
				}
				gx[i] = gy
				return core.Kwargs{"_x": gx}, nil
			}
			g, err := array.Untake(kw["x"], gy, i, kw["axis"].(int))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"_x": g}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_", "i", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			t, err := array.Take(kw["x_"], kw["i"].(int), kw["axis"].(int))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y_": t}, nil
		},
	},
})

// Split slices an array into its sub-arrays along axis, producing a list
// output with one element per index.
//
// Reverse: the element adjoints stack back into the input adjoint.
var splitOp = core.MustDeclare(core.Def{
	Name: "split",
	In:   []core.Arg{{Name: "x", Type: "ndarray"}},
	Out:  []core.Arg{{Name: "args", Type: "list"}},
	Apply: core.KernelSpec{
		Args: []string{"x", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			x, ok := kw["x"].(*array.Array)
			if !ok {
				return nil, fmt.Errorf("split: expected an array, got %T", kw["x"])
			}
			axis := kw["axis"].(int)
			if axis < 0 || axis >= len(x.Shape()) {
				return nil, fmt.Errorf("split: axis %d out of range for shape %v", axis, x.Shape())
			}
			out := make([]any, x.Shape()[axis])
			for j := range out {
				e, err := array.Take(x, j, axis)
				if err != nil {
					return nil, err
				}
				out[j] = e
			}
			return core.Kwargs{"args": out}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_args", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			if array.IsZero(kw["_args"]) {
				return core.Kwargs{"_x": array.Zero}, nil
			}
			elems, ok := kw["_args"].([]any)
			if !ok {
				return nil, fmt.Errorf("split: expected a list adjoint, got %T", kw["_args"])
			}
			g, err := array.Stack(elems, kw["axis"].(int))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"_x": g}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_", "axis"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			x, ok := kw["x_"].(*array.Array)
			if !ok {
				if array.IsZero(kw["x_"]) {
					return core.Kwargs{"args_": array.Zero}, nil
				}
				return nil, fmt.Errorf("split: expected an array tangent, got %T", kw["x_"])
			}
			axis := kw["axis"].(int)
			out := make([]any, x.Shape()[axis])
			for j := range out {
				e, err := array.Take(x, j, axis)
				if err != nil {
					return nil, err
				}
				out[j] = e
			}
			return core.Kwargs{"args_": out}, nil
		},
	},
})

// Stack builds a stacking node over elems and returns its output symbol.
// Elements may be symbols, literals or a mix of both.
func Stack(elems []any, axis int) (*core.Symbol, error) {
	return bind1(stackOp, core.Kwargs{"x": elems, "axis": axis}, "y")
}

// Take builds an indexing node and returns its output symbol.
func Take(x any, i, axis int) (*core.Symbol, error) {
	return bind1(takeOp, core.Kwargs{"x": x, "i": i, "axis": axis}, "y")
}

// Split builds a splitting node producing n elements along axis and
// returns the element symbols. n must equal the runtime extent of axis.
func Split(x *core.Symbol, n, axis int) ([]*core.Symbol, error) {
	m := x.Model()
	outs := make([]*core.Symbol, n)
	for j := range outs {
		outs[j] = m.Define(m.UniqueName("split"))
	}
	if err := SplitInto(x, outs, axis); err != nil {
		return nil, err
	}
	return outs, nil
}

// SplitInto builds a splitting node scattering into the given output
// symbols.
func SplitInto(x any, outs []*core.Symbol, axis int) error {
	_, err := splitOp.Apply().Bind(core.Kwargs{"x": x, "axis": axis, "args": outs})
	return err
}
