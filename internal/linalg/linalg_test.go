package linalg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/core"
	"github.com/born-ml/vmad/internal/gradcheck"
	"github.com/born-ml/vmad/internal/linalg"
)

// check runs one finite-difference case and asserts the reverse gradient
// and the forward tangents both match the numerical probes.
func check(t *testing.T, x []float64, build func(x *core.Symbol) (any, error)) {
	t.Helper()
	res, err := gradcheck.Run(gradcheck.Case{X: array.FromSlice(x), Build: build})
	require.NoError(t, err)
	for i, want := range res.Numerical.Data() {
		tol := 1e-4 + 1e-4*abs(want)
		assert.InDelta(t, want, res.Gradient.Data()[i], tol, "gradient[%d]", i)
		assert.InDelta(t, want, res.Tangents.Data()[i], tol, "tangent[%d]", i)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestGradMul(t *testing.T) {
	check(t, []float64{0.5, 1.5, -2.0}, func(x *core.Symbol) (any, error) {
		return linalg.Mul(x, x)
	})
}

func TestGradMulLiteral(t *testing.T) {
	check(t, []float64{1, 2, 3}, func(x *core.Symbol) (any, error) {
		return linalg.Mul(x, 2.5)
	})
}

func TestGradAdd(t *testing.T) {
	check(t, []float64{0.5, 1.5, -2.0}, func(x *core.Symbol) (any, error) {
		y, err := linalg.Mul(x, x)
		if err != nil {
			return nil, err
		}
		return linalg.Add(x, y)
	})
}

func TestGradPow(t *testing.T) {
	check(t, []float64{0.5, 1.5, 2.0}, func(x *core.Symbol) (any, error) {
		return linalg.Pow(x, 3)
	})
}

func TestGradLog(t *testing.T) {
	check(t, []float64{0.5, 1.5, 3.0}, func(x *core.Symbol) (any, error) {
		return linalg.Log(x)
	})
}

func TestGradCopy(t *testing.T) {
	check(t, []float64{0.5, -1.5, 2.0}, func(x *core.Symbol) (any, error) {
		return linalg.Copy(x)
	})
}

func TestGradToScalarChain(t *testing.T) {
	// to_scalar appears twice: once in the chain, once as the harness
	// reduction.
	check(t, []float64{0.5, 1.0, 1.5}, func(x *core.Symbol) (any, error) {
		return linalg.ToScalar(x)
	})
}

func TestGradStackFanOut(t *testing.T) {
	check(t, []float64{0.5, 1.5}, func(x *core.Symbol) (any, error) {
		return linalg.Stack([]any{x, x, x}, 0)
	})
}

func TestGradTake(t *testing.T) {
	check(t, []float64{0.5, 1.5, -2.0}, func(x *core.Symbol) (any, error) {
		return linalg.Take(x, 1, 0)
	})
}

func TestGradSplitRoundTrip(t *testing.T) {
	check(t, []float64{0.5, 1.5, -2.0}, func(x *core.Symbol) (any, error) {
		parts, err := linalg.Split(x, 3, 0)
		if err != nil {
			return nil, err
		}
		elems := make([]any, len(parts))
		for i, p := range parts {
			elems[i] = p
		}
		return linalg.Stack(elems, 0)
	})
}

func TestForwardValues(t *testing.T) {
	m := core.New()
	x := m.Input("x")
	p, err := linalg.Pow(x, 2)
	require.NoError(t, err)
	l, err := linalg.Log(x)
	require.NoError(t, err)
	require.NoError(t, m.Output("p", p))
	require.NoError(t, m.Output("l", l))

	r, err := m.Compute(map[string]any{"x": array.FromSlice([]float64{1, 2})}, []string{"p", "l"})
	require.NoError(t, err)
	assert.Equal(t, array.FromSlice([]float64{1, 4}), r["p"])
	pl := r["l"].(*array.Array)
	assert.InDelta(t, 0.0, pl.Data()[0], 1e-12)
	assert.InDelta(t, 0.6931471805599453, pl.Data()[1], 1e-12)
}

func TestStackLiteralElements(t *testing.T) {
	m := core.New()
	x := m.Input("x")
	s, err := linalg.Stack([]any{x, 7.0}, 0)
	require.NoError(t, err)
	require.NoError(t, m.Output("s", s))

	v, err := m.Compute1(map[string]any{"x": 3.0}, "s")
	require.NoError(t, err)
	assert.Equal(t, array.FromSlice([]float64{3, 7}), v)
}

func TestSplitValues(t *testing.T) {
	m := core.New()
	x := m.Input("x")
	parts, err := linalg.Split(x, 2, 0)
	require.NoError(t, err)
	require.NoError(t, m.Output("a", parts[0]))
	require.NoError(t, m.Output("b", parts[1]))

	base, err := array.NewFromData([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	r, err := m.Compute(map[string]any{"x": base}, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, array.FromSlice([]float64{1, 2}), r["a"])
	assert.Equal(t, array.FromSlice([]float64{3, 4}), r["b"])
}
