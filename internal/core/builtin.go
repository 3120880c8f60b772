package core

import "github.com/born-ml/vmad/internal/array"

// terminalOp marks declared outputs. Wrapping every output through it keeps
// outputs uniformly re-bindable and gives the reverse transform a node to
// seed output adjoints from.
var terminalOp = MustDeclare(Def{
	Name: "terminal",
	In:   []Arg{{Name: "x", Type: "*"}},
	Out:  []Arg{{Name: "y", Type: "*"}},
	Apply: KernelSpec{
		Args: []string{"x"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			return Kwargs{"y": kw["x"]}, nil
		},
	},
	VJP: KernelSpec{
		Args: []string{"_y"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			return Kwargs{"_x": kw["_y"]}, nil
		},
	},
	JVP: KernelSpec{
		Args: []string{"x_"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			return Kwargs{"y_": kw["x_"]}, nil
		},
	},
})

// addOp sums two values; the reverse transform uses it to accumulate
// partial adjoints under fan-out.
var addOp = MustDeclare(Def{
	Name: "add",
	In:   []Arg{{Name: "x1", Type: "*"}, {Name: "x2", Type: "*"}},
	Out:  []Arg{{Name: "y", Type: "*"}},
	Apply: KernelSpec{
		Args: []string{"x1", "x2"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			y, err := array.Add(kw["x1"], kw["x2"])
			if err != nil {
				return nil, err
			}
			return Kwargs{"y": y}, nil
		},
	},
	VJP: KernelSpec{
		Args: []string{"_y"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			return Kwargs{"_x1": kw["_y"], "_x2": kw["_y"]}, nil
		},
	},
	JVP: KernelSpec{
		Args: []string{"x1_", "x2_"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			y, err := array.Add(kw["x1_"], kw["x2_"])
			if err != nil {
				return nil, err
			}
			return Kwargs{"y_": y}, nil
		},
	},
})

// AddOperator returns the built-in addition operator.
func AddOperator() *Operator { return addOp }
