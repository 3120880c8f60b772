package mpi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/autodiff"
	"github.com/born-ml/vmad/internal/core"
	"github.com/born-ml/vmad/internal/linalg"
	"github.com/born-ml/vmad/internal/mpi"
)

// fanIn is a fake communicator multiplying by a fixed rank count; it
// stands in for a real transport summing identical contributions.
type fanIn struct{ ranks int }

func (f fanIn) Size() int { return f.ranks }

func (f fanIn) Allreduce(v any) (any, error) {
	return array.Mul(float64(f.ranks), v)
}

func TestSerialAllreduceIsIdentity(t *testing.T) {
	m := core.New()
	x := m.Input("x")
	y, err := mpi.Allreduce(x, mpi.Serial{})
	require.NoError(t, err)
	require.NoError(t, m.Output("y", y))

	v, err := m.Compute1(map[string]any{"x": array.Arange(4)}, "y")
	require.NoError(t, err)
	assert.Equal(t, array.Arange(4), v)
}

func TestAllreduceGradientReplaysCollective(t *testing.T) {
	comm := fanIn{ranks: 3}
	m := core.New()
	x := m.Input("x")
	s, err := mpi.Allreduce(x, comm)
	require.NoError(t, err)
	c, err := linalg.ToScalar(s)
	require.NoError(t, err)
	require.NoError(t, m.Output("c", c))

	base := array.Arange(3)
	r, tape, err := m.ComputeWithTape(map[string]any{"x": base}, []string{"c"})
	require.NoError(t, err)
	// s = 3x, c = sum(9 x^2) = 9 * 5 = 45.
	assert.Equal(t, 45.0, r["c"])

	vjp, err := autodiff.VJP(tape)
	require.NoError(t, err)
	g, err := vjp.Compute(map[string]any{"_c": 1.0}, []string{"_x"})
	require.NoError(t, err)
	// dc/dx = 18x: the adjoint of a sum is itself allreduced.
	assert.Equal(t, array.FromSlice([]float64{0, 18, 36}), g["_x"])

	jvp, err := autodiff.JVP(tape)
	require.NoError(t, err)
	f, err := jvp.Compute(map[string]any{"x_": array.Basis(3, 1)}, []string{"c_"})
	require.NoError(t, err)
	assert.Equal(t, 18.0, f["c_"])
}

func TestAllreduceZeroShortCircuits(t *testing.T) {
	calls := 0
	comm := counting{&calls}
	m := core.New()
	x := m.Input("x")
	s, err := mpi.Allreduce(x, comm)
	require.NoError(t, err)
	require.NoError(t, m.Output("s", s))

	v, err := m.Compute1(map[string]any{"x": array.Zero}, "s")
	require.NoError(t, err)
	assert.True(t, array.IsZero(v))
	assert.Zero(t, calls, "the additive identity must not hit the transport")
}

type counting struct{ calls *int }

func (c counting) Size() int { return 1 }

func (c counting) Allreduce(v any) (any, error) {
	*c.calls++
	return v, nil
}
