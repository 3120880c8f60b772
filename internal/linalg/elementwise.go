// Package linalg is the standard differentiable operator library: dense
// elementwise arithmetic, shape manipulation and the scalar reduction used
// by gradient checking. Every operator declares its forward, reverse-adjoint
// and forward-tangent kernels through the core registry; the builder-level
// functions in this package are thin keyword bindings around them.
package linalg

import (
	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/core"
)

// Add sums two values elementwise.
//
// Reverse: the adjoint flows unchanged to both inputs.
var addOp = core.AddOperator()

// Mul multiplies two values elementwise, broadcasting a scalar against an
// array.
//
// Reverse: d(x1*x2)/dx1 = x2 and d(x1*x2)/dx2 = x1, so each input's
// adjoint is the output adjoint scaled by the other input.
var mulOp = core.MustDeclare(core.Def{
	Name: "mul",
	In:   []core.Arg{{Name: "x1", Type: "*"}, {Name: "x2", Type: "*"}},
	Out:  []core.Arg{{Name: "y", Type: "*"}},
	Apply: core.KernelSpec{
		Args: []string{"x1", "x2"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			y, err := array.Mul(kw["x1"], kw["x2"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y": y}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y", "x1", "x2"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			gx1, err := array.Mul(kw["_y"], kw["x2"])
			if err != nil {
				return nil, err
			}
			gx2, err := array.Mul(kw["_y"], kw["x1"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"_x1": gx1, "_x2": gx2}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x1_", "x2_", "x1", "x2"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			t1, err := array.Mul(kw["x1_"], kw["x2"])
			if err != nil {
				return nil, err
			}
			t2, err := array.Mul(kw["x1"], kw["x2_"])
			if err != nil {
				return nil, err
			}
			y, err := array.Add(t1, t2)
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y_": y}, nil
		},
	},
})

// Pow raises a value to a constant exponent elementwise. The exponent n is
// a non-differentiated side parameter.
var powOp = core.MustDeclare(core.Def{
	Name: "pow",
	In:   []core.Arg{{Name: "x", Type: "*"}},
	Out:  []core.Arg{{Name: "y", Type: "*"}},
	Apply: core.KernelSpec{
		Args: []string{"x", "n"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			y, err := array.Pow(kw["x"], kw["n"].(float64))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y": y}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y", "x", "n"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			g, err := powTangent(kw["_y"], kw["x"], kw["n"].(float64))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"_x": g}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_", "x", "n"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			t, err := powTangent(kw["x_"], kw["x"], kw["n"].(float64))
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y_": t}, nil
		},
	},
})

// powTangent computes n * v * x^(n-1) for both derivative directions.
func powTangent(v, x any, n float64) (any, error) {
	fac, err := array.Pow(x, n-1)
	if err != nil {
		return nil, err
	}
	nv, err := array.Mul(n, v)
	if err != nil {
		return nil, err
	}
	return array.Mul(nv, fac)
}

// Log takes the natural logarithm elementwise.
//
// Reverse: d(log x)/dx = 1/x.
var logOp = core.MustDeclare(core.Def{
	Name: "log",
	In:   []core.Arg{{Name: "x", Type: "*"}},
	Out:  []core.Arg{{Name: "y", Type: "*"}},
	Apply: core.KernelSpec{
		Args: []string{"x"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			y, err := array.Log(kw["x"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y": y}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y", "x"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			g, err := array.Div(kw["_y"], kw["x"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"_x": g}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_", "x"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			t, err := array.Div(kw["x_"], kw["x"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y_": t}, nil
		},
	},
})

// Copy clones a value. Gradients clone through unchanged.
var copyOp = core.MustDeclare(core.Def{
	Name: "copy",
	In:   []core.Arg{{Name: "x", Type: "ndarray"}},
	Out:  []core.Arg{{Name: "y", Type: "ndarray"}},
	Apply: core.KernelSpec{
		Args: []string{"x"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			return core.Kwargs{"y": array.Clone(kw["x"])}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			return core.Kwargs{"_x": array.Clone(kw["_y"])}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			return core.Kwargs{"y_": array.Clone(kw["x_"])}, nil
		},
	},
})

// ToScalar reduces a value to the scalar sum of its squared elements; the
// canonical reduction for turning any graph into a gradient-checkable one.
//
// Reverse: d(Σx²)/dx = 2x, scaled by the scalar adjoint.
// Forward: the tangent is 2·⟨x_, x⟩.
var toScalarOp = core.MustDeclare(core.Def{
	Name: "to_scalar",
	In:   []core.Arg{{Name: "x", Type: "ndarray"}},
	Out:  []core.Arg{{Name: "y", Type: "*"}},
	Apply: core.KernelSpec{
		Args: []string{"x"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			y, err := array.SumSquares(kw["x"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y": y}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y", "x"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			s, err := array.Mul(2.0, kw["_y"])
			if err != nil {
				return nil, err
			}
			g, err := array.Mul(s, kw["x"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"_x": g}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_", "x"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			d, err := array.Dot(kw["x_"], kw["x"])
			if err != nil {
				return nil, err
			}
			t, err := array.Mul(2.0, d)
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y_": t}, nil
		},
	},
})

// Add builds an addition node and returns its output symbol.
func Add(x1, x2 any) (*core.Symbol, error) {
	return bind1(addOp, core.Kwargs{"x1": x1, "x2": x2}, "y")
}

// Mul builds a multiplication node and returns its output symbol.
func Mul(x1, x2 any) (*core.Symbol, error) {
	return bind1(mulOp, core.Kwargs{"x1": x1, "x2": x2}, "y")
}

// Pow builds an exponentiation node and returns its output symbol.
func Pow(x any, n float64) (*core.Symbol, error) {
	return bind1(powOp, core.Kwargs{"x": x, "n": n}, "y")
}

// Log builds a logarithm node and returns its output symbol.
func Log(x any) (*core.Symbol, error) {
	return bind1(logOp, core.Kwargs{"x": x}, "y")
}

// Copy builds a clone node and returns its output symbol.
func Copy(x any) (*core.Symbol, error) {
	return bind1(copyOp, core.Kwargs{"x": x}, "y")
}

// ToScalar builds a sum-of-squares reduction node and returns its output
// symbol.
func ToScalar(x any) (*core.Symbol, error) {
	return bind1(toScalarOp, core.Kwargs{"x": x}, "y")
}

// bind1 binds an operator's forward primitive and returns its single
// output symbol.
func bind1(op *core.Operator, kw core.Kwargs, out string) (*core.Symbol, error) {
	n, err := op.Apply().Bind(kw)
	if err != nil {
		return nil, err
	}
	return n.OutSymbol(out)
}
