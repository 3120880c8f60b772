// Package gradcheck verifies operator derivatives against central finite
// differences. A case builds a graph from a single vector input, reduces it
// to the scalar sum of squared elements, and compares the reverse-mode
// gradient and the forward-mode directional derivatives with numerical
// probes of the same scalar.
package gradcheck

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/autodiff"
	"github.com/born-ml/vmad/internal/core"
	"github.com/born-ml/vmad/internal/linalg"
)

// Case is one derivative check: Build constructs the graph under test from
// the input symbol and returns the value to reduce.
type Case struct {
	// X is the base point, a 1-D array.
	X *array.Array

	// Build adds nodes consuming x and returns the ref reduced to the
	// check scalar. It runs once; the model is reused for every probe.
	Build func(x *core.Symbol) (any, error)

	// Eps is the finite-difference step. Defaults to 1e-3.
	Eps float64
}

// Result collects everything a check produced; assertions happen in the
// caller's test.
type Result struct {
	// Y is the scalar value at the base point.
	Y float64

	// Gradient is the reverse-mode gradient at the base point.
	Gradient *array.Array

	// Tangents are the forward-mode directional derivatives along each
	// basis vector; for a correct operator they equal the gradient.
	Tangents *array.Array

	// Numerical is the central-difference estimate of the gradient.
	Numerical *array.Array
}

// Run executes one derivative check. The numerical probes run in parallel,
// each against its own context on the shared frozen model.
func Run(c Case) (*Result, error) {
	if c.Eps == 0 {
		c.Eps = 1e-3
	}

	m := core.New()
	x := m.Input("x")
	v, err := c.Build(x)
	if err != nil {
		return nil, err
	}
	y, err := linalg.ToScalar(v)
	if err != nil {
		return nil, err
	}
	if err := m.Output("y", y); err != nil {
		return nil, err
	}

	r, tape, err := m.ComputeWithTape(map[string]any{"x": c.X}, []string{"y"})
	if err != nil {
		return nil, err
	}
	y0, ok := r["y"].(float64)
	if !ok {
		return nil, fmt.Errorf("gradcheck: check value is %T, not a scalar", r["y"])
	}
	res := &Result{Y: y0}

	if res.Gradient, err = reverseGradient(tape, c.X); err != nil {
		return nil, err
	}
	if res.Tangents, err = forwardTangents(tape, c.X); err != nil {
		return nil, err
	}

	res.Numerical = array.New(c.X.Len())
	var g errgroup.Group
	for i := 0; i < c.X.Len(); i++ {
		i := i
		g.Go(func() error {
			hi, err := probe(m, c.X, i, c.Eps)
			if err != nil {
				return err
			}
			lo, err := probe(m, c.X, i, -c.Eps)
			if err != nil {
				return err
			}
			res.Numerical.Data()[i] = (hi - lo) / (2 * c.Eps)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// reverseGradient runs the VJP model once with a unit scalar adjoint.
func reverseGradient(tape *core.Tape, x *array.Array) (*array.Array, error) {
	vjp, err := autodiff.VJP(tape)
	if err != nil {
		return nil, err
	}
	r, err := vjp.Compute(map[string]any{"_y": 1.0}, []string{"_x"})
	if err != nil {
		return nil, err
	}
	return asDense(r["_x"], x)
}

// forwardTangents runs the JVP model once per basis direction.
func forwardTangents(tape *core.Tape, x *array.Array) (*array.Array, error) {
	jvp, err := autodiff.JVP(tape)
	if err != nil {
		return nil, err
	}
	out := array.New(x.Len())
	var g errgroup.Group
	for i := 0; i < x.Len(); i++ {
		i := i
		g.Go(func() error {
			r, err := jvp.Compute(map[string]any{"x_": array.Basis(x.Len(), i)}, []string{"y_"})
			if err != nil {
				return err
			}
			switch t := r["y_"].(type) {
			case float64:
				out.Data()[i] = t
				return nil
			default:
				if array.IsZero(t) {
					return nil
				}
				return fmt.Errorf("gradcheck: tangent %d is %T, not a scalar", i, t)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// probe evaluates the check scalar at x + step * e_i.
func probe(m *core.Model, x *array.Array, i int, step float64) (float64, error) {
	p := x.Clone()
	p.Data()[i] += step
	v, err := m.Compute1(map[string]any{"x": p}, "y")
	if err != nil {
		return 0, err
	}
	s, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("gradcheck: probe value is %T, not a scalar", v)
	}
	return s, nil
}

// asDense materializes a gradient value as a dense array shaped like x.
// The additive identity densifies to zeros.
func asDense(v any, x *array.Array) (*array.Array, error) {
	switch g := v.(type) {
	case *array.Array:
		return g, nil
	case float64:
		if x.Len() == 1 {
			return array.FromSlice([]float64{g}), nil
		}
	default:
		if array.IsZero(v) {
			return array.New(x.Shape()...), nil
		}
	}
	return nil, fmt.Errorf("gradcheck: gradient is %T, incompatible with shape %v", v, x.Shape())
}
