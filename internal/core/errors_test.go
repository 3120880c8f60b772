package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vmad/internal/array"
)

// scaleOp multiplies its input by the side parameter f.
var scaleOp = MustDeclare(Def{
	Name: "scale",
	In:   []Arg{{Name: "x", Type: "*"}},
	Out:  []Arg{{Name: "y", Type: "*"}},
	Apply: KernelSpec{
		Args: []string{"x", "f"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			y, err := array.Mul(kw["x"], kw["f"].(float64))
			if err != nil {
				return nil, err
			}
			return Kwargs{"y": y}, nil
		},
	},
	VJP: KernelSpec{
		Args: []string{"_y", "f"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			g, err := array.Mul(kw["_y"], kw["f"].(float64))
			if err != nil {
				return nil, err
			}
			return Kwargs{"_x": g}, nil
		},
	},
	JVP: KernelSpec{
		Args: []string{"x_", "f"},
		Fn: func(kw Kwargs) (Kwargs, error) {
			t, err := array.Mul(kw["x_"], kw["f"].(float64))
			if err != nil {
				return nil, err
			}
			return Kwargs{"y_": t}, nil
		},
	},
})

func TestDeclareValidation(t *testing.T) {
	id := KernelSpec{Args: []string{"x"}, Fn: func(kw Kwargs) (Kwargs, error) { return kw, nil }}

	_, err := Declare(Def{In: []Arg{{Name: "x"}}, Out: []Arg{{Name: "y"}}})
	assert.ErrorIs(t, err, ErrBrokenPrimitive, "empty name")

	_, err = Declare(Def{Name: "t", Out: []Arg{{Name: "y"}}})
	assert.ErrorIs(t, err, ErrBrokenPrimitive, "no inputs")

	_, err = Declare(Def{Name: "t", In: []Arg{{Name: "x"}}})
	assert.ErrorIs(t, err, ErrBrokenPrimitive, "no outputs")

	_, err = Declare(Def{Name: "t", In: []Arg{{Name: "x"}}, Out: []Arg{{Name: "y"}}, Apply: id})
	assert.ErrorIs(t, err, ErrBrokenPrimitive, "missing derivative kernels")

	// The forward kernel must read every declared input.
	bad := KernelSpec{Args: []string{"z"}, Fn: id.Fn}
	_, err = Declare(Def{Name: "t", In: []Arg{{Name: "x"}}, Out: []Arg{{Name: "y"}},
		Apply: bad, VJP: KernelSpec{Args: []string{"_y"}, Fn: id.Fn}, JVP: KernelSpec{Args: []string{"x_"}, Fn: id.Fn}})
	assert.ErrorIs(t, err, ErrBrokenPrimitive)

	// The vjp kernel must produce for every output adjoint.
	_, err = Declare(Def{Name: "t", In: []Arg{{Name: "x"}}, Out: []Arg{{Name: "y"}},
		Apply: id, VJP: KernelSpec{Args: []string{"x"}, Fn: id.Fn}, JVP: KernelSpec{Args: []string{"x_"}, Fn: id.Fn}})
	assert.ErrorIs(t, err, ErrBrokenPrimitive)

	// The jvp kernel must read every input tangent.
	_, err = Declare(Def{Name: "t", In: []Arg{{Name: "x"}}, Out: []Arg{{Name: "y"}},
		Apply: id, VJP: KernelSpec{Args: []string{"_y"}, Fn: id.Fn}, JVP: KernelSpec{Args: []string{"x"}, Fn: id.Fn}})
	assert.ErrorIs(t, err, ErrBrokenPrimitive)
}

func TestBindMissingArgument(t *testing.T) {
	m := New()
	m.Input("x")
	_, err := scaleOp.Apply().Bind(Kwargs{"f": 2.0})
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestBindMissingSideArgument(t *testing.T) {
	m := New()
	x := m.Input("x")
	_, err := scaleOp.Apply().Bind(Kwargs{"x": x})
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestBindUnknownKeyword(t *testing.T) {
	m := New()
	x := m.Input("x")
	_, err := scaleOp.Apply().Bind(Kwargs{"x": x, "f": 2.0, "frobnicate": 1})
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestBindInferFailure(t *testing.T) {
	_, err := scaleOp.Apply().Bind(Kwargs{"x": NewLiteral(3.0), "f": 2.0})
	assert.ErrorIs(t, err, ErrInfer)
}

func TestBindOverwritePrecaution(t *testing.T) {
	m := New()
	x := m.Input("x")
	n, err := scaleOp.Apply().Bind(Kwargs{"x": x, "f": 2.0})
	require.NoError(t, err)
	y, err := n.OutSymbol("y")
	require.NoError(t, err)

	// y now has a consumer; rebinding it as an output must fail.
	_, err = scaleOp.Apply().Bind(Kwargs{"x": y, "f": 3.0})
	require.NoError(t, err)
	_, err = scaleOp.Apply().Bind(Kwargs{"x": x, "f": 4.0, "y": y})
	assert.ErrorIs(t, err, ErrOverwritePrecaution)
}

func TestOutputRebindBeforeConsumption(t *testing.T) {
	// An output symbol with no consumers may be targeted explicitly.
	m := New()
	x := m.Input("x")
	y := m.Define("y")
	_, err := scaleOp.Apply().Bind(Kwargs{"x": x, "f": 2.0, "y": y})
	assert.NoError(t, err)
}

func TestDuplicatedOutput(t *testing.T) {
	m := New()
	x := m.Input("x")
	require.NoError(t, m.Output("o", x))
	assert.ErrorIs(t, m.Output("o", x), ErrDuplicatedOutput)
}

func TestUnexpectedOutput(t *testing.T) {
	m := New()
	x := m.Input("x")
	require.NoError(t, m.Output("o", x))
	_, err := m.Compute(map[string]any{"x": 1.0}, []string{"nope"})
	assert.ErrorIs(t, err, ErrUnexpectedOutput)
}

func TestResolveErrorNamesConsumer(t *testing.T) {
	m := New()
	x := m.Input("x")
	n, err := scaleOp.Apply().Bind(Kwargs{"x": x, "f": 2.0})
	require.NoError(t, err)
	y, err := n.OutSymbol("y")
	require.NoError(t, err)
	require.NoError(t, m.Output("y", y))

	_, err = m.Compute(map[string]any{}, []string{"y"})
	assert.ErrorIs(t, err, ErrResolve)
	assert.Contains(t, err.Error(), "scale@")
}

func TestClosedAfterFirstCompute(t *testing.T) {
	m := New()
	x := m.Input("x")
	require.NoError(t, m.Output("y", x))
	_, err := m.Compute(map[string]any{"x": 1.0}, []string{"y"})
	require.NoError(t, err)

	_, err = scaleOp.Apply().Bind(Kwargs{"x": x, "f": 2.0})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Output("z", x), ErrClosed)
}

func TestStoreIntoLiteralFails(t *testing.T) {
	c := NewContext(nil)
	err := NewLiteral(1.0).store(c, 2.0)
	assert.ErrorIs(t, err, ErrBadArgument)
}
