// Package mpi provides collective operators over a pluggable communicator.
// The engine stays agnostic of the transport: the communicator rides along
// as a side parameter, so derivative graphs replay collectives over the
// same communicator the forward execution used.
package mpi

import (
	"fmt"

	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/core"
)

// Communicator is the collective transport an allreduce node runs over.
type Communicator interface {
	// Size returns the number of participating ranks.
	Size() int

	// Allreduce sums v across all ranks and returns the total on every
	// rank.
	Allreduce(v any) (any, error)
}

// Serial is the single-rank communicator: every collective is the
// identity.
type Serial struct{}

// Size returns 1.
func (Serial) Size() int { return 1 }

// Allreduce returns v unchanged.
func (Serial) Allreduce(v any) (any, error) { return v, nil }

// allreduceOp sums a value across ranks. The sum is linear, so both the
// adjoint and the tangent are themselves allreduced.
var allreduceOp = core.MustDeclare(core.Def{
	Name: "allreduce",
	In:   []core.Arg{{Name: "x", Type: "*"}},
	Out:  []core.Arg{{Name: "y", Type: "*"}},
	Apply: core.KernelSpec{
		Args: []string{"x", "comm"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			y, err := reduce(kw["comm"], kw["x"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y": y}, nil
		},
	},
	VJP: core.KernelSpec{
		Args: []string{"_y", "comm"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			g, err := reduce(kw["comm"], kw["_y"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"_x": g}, nil
		},
	},
	JVP: core.KernelSpec{
		Args: []string{"x_", "comm"},
		Fn: func(kw core.Kwargs) (core.Kwargs, error) {
			t, err := reduce(kw["comm"], kw["x_"])
			if err != nil {
				return nil, err
			}
			return core.Kwargs{"y_": t}, nil
		},
	},
})

func reduce(comm, v any) (any, error) {
	c, ok := comm.(Communicator)
	if !ok {
		return nil, fmt.Errorf("allreduce: comm side argument is %T, not a Communicator", comm)
	}
	if array.IsZero(v) {
		return array.Zero, nil
	}
	return c.Allreduce(v)
}

// Allreduce builds an allreduce node over comm and returns its output
// symbol.
func Allreduce(x any, comm Communicator) (*core.Symbol, error) {
	n, err := allreduceOp.Apply().Bind(core.Kwargs{"x": x, "comm": comm})
	if err != nil {
		return nil, err
	}
	return n.OutSymbol("y")
}
