// Package optim minimizes scalar objectives expressed as vmad models. A
// Problem pairs a model with its input and objective names; minimizers pull
// values through plain execution and gradients through the reverse-mode
// transform of a recorded tape.
package optim

import (
	"errors"
	"fmt"

	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/autodiff"
	"github.com/born-ml/vmad/internal/core"
)

// ErrLineSearch reports a failed backtracking search: no step satisfied
// the sufficient-decrease condition.
var ErrLineSearch = errors.New("optim: line search failed to decrease the objective")

// Problem is a scalar objective over a single model input.
type Problem struct {
	model *core.Model
	xname string
	yname string
}

// NewProblem wraps a model whose output yname is the scalar objective of
// input xname.
func NewProblem(m *core.Model, xname, yname string) *Problem {
	return &Problem{model: m, xname: xname, yname: yname}
}

// Value evaluates the objective at x without recording a tape.
func (p *Problem) Value(x any) (float64, error) {
	v, err := p.model.Compute1(map[string]any{p.xname: x}, p.yname)
	if err != nil {
		return 0, err
	}
	y, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("optim: objective %q is %T, not a scalar", p.yname, v)
	}
	return y, nil
}

// ValueGradient evaluates the objective and its gradient at x. The
// additive identity densifies to a concrete zero shaped like x.
func (p *Problem) ValueGradient(x any) (float64, any, error) {
	r, tape, err := p.model.ComputeWithTape(map[string]any{p.xname: x}, []string{p.yname})
	if err != nil {
		return 0, nil, err
	}
	y, ok := r[p.yname].(float64)
	if !ok {
		return 0, nil, fmt.Errorf("optim: objective %q is %T, not a scalar", p.yname, r[p.yname])
	}
	vjp, err := autodiff.VJP(tape)
	if err != nil {
		return 0, nil, err
	}
	gr, err := vjp.Compute(map[string]any{"_" + p.yname: 1.0}, []string{"_" + p.xname})
	if err != nil {
		return 0, nil, err
	}
	g := gr["_"+p.xname]
	if array.IsZero(g) {
		g = array.ZerosLike(x)
	}
	return y, g, nil
}

// Result reports the outcome of a minimization.
type Result struct {
	X          any
	Y          float64
	Gradient   any
	Iterations int
	Converged  bool
}

// GradientDescent is steepest descent with a backtracking line search.
type GradientDescent struct {
	// MaxIter caps the number of iterations. Defaults to 1000.
	MaxIter int

	// GTol is the gradient-norm convergence threshold. Defaults to 1e-8.
	GTol float64

	// Step is the initial step size per iteration. Defaults to 1.
	Step float64
}

// Minimize runs gradient descent from x0.
func (gd *GradientDescent) Minimize(p *Problem, x0 any) (*Result, error) {
	maxIter := gd.MaxIter
	if maxIter == 0 {
		maxIter = 1000
	}
	gtol := gd.GTol
	if gtol == 0 {
		gtol = 1e-8
	}
	step := gd.Step
	if step == 0 {
		step = 1
	}

	x := array.Clone(x0)
	y, g, err := p.ValueGradient(x)
	if err != nil {
		return nil, err
	}
	res := &Result{X: x, Y: y, Gradient: g}
	for it := 0; it < maxIter; it++ {
		gg, err := dot(g, g)
		if err != nil {
			return nil, err
		}
		if gg <= gtol*gtol {
			res.Converged = true
			return res, nil
		}
		dir, err := array.Scale(-1, g)
		if err != nil {
			return nil, err
		}
		x, y, err = backtrack(p, x, y, g, dir, step)
		if err != nil {
			return nil, err
		}
		if _, g, err = p.ValueGradient(x); err != nil {
			return nil, err
		}
		res.X, res.Y, res.Gradient = x, y, g
		res.Iterations = it + 1
	}
	return res, nil
}

// LBFGS is the limited-memory BFGS quasi-Newton method with a backtracking
// line search.
type LBFGS struct {
	// MaxIter caps the number of iterations. Defaults to 1000.
	MaxIter int

	// GTol is the gradient-norm convergence threshold. Defaults to 1e-8.
	GTol float64

	// Memory is the number of curvature pairs retained. Defaults to 6.
	Memory int
}

// Minimize runs L-BFGS from x0.
func (lb *LBFGS) Minimize(p *Problem, x0 any) (*Result, error) {
	maxIter := lb.MaxIter
	if maxIter == 0 {
		maxIter = 1000
	}
	gtol := lb.GTol
	if gtol == 0 {
		gtol = 1e-8
	}
	mem := lb.Memory
	if mem == 0 {
		mem = 6
	}

	x := array.Clone(x0)
	y, g, err := p.ValueGradient(x)
	if err != nil {
		return nil, err
	}
	res := &Result{X: x, Y: y, Gradient: g}

	var ss, ys []any // displacement and gradient-change history
	var rhos []float64
	gamma := 1.0

	for it := 0; it < maxIter; it++ {
		gg, err := dot(g, g)
		if err != nil {
			return nil, err
		}
		if gg <= gtol*gtol {
			res.Converged = true
			return res, nil
		}

		dir, err := twoLoop(g, ss, ys, rhos, gamma)
		if err != nil {
			return nil, err
		}

		xNext, yNext, err := backtrack(p, x, y, g, dir, 1)
		if err != nil {
			return nil, err
		}
		_, gNext, err := p.ValueGradient(xNext)
		if err != nil {
			return nil, err
		}

		s, err := sub(xNext, x)
		if err != nil {
			return nil, err
		}
		yk, err := sub(gNext, g)
		if err != nil {
			return nil, err
		}
		sy, err := dot(s, yk)
		if err != nil {
			return nil, err
		}
		if sy > 1e-12 {
			ss = append(ss, s)
			ys = append(ys, yk)
			rhos = append(rhos, 1/sy)
			if len(ss) > mem {
				ss, ys, rhos = ss[1:], ys[1:], rhos[1:]
			}
			yy, err := dot(yk, yk)
			if err != nil {
				return nil, err
			}
			gamma = sy / yy
		}

		x, y, g = xNext, yNext, gNext
		res.X, res.Y, res.Gradient = x, y, g
		res.Iterations = it + 1
	}
	return res, nil
}

// twoLoop computes the L-BFGS descent direction -H*g from the curvature
// history.
func twoLoop(g any, ss, ys []any, rhos []float64, gamma float64) (any, error) {
	q := array.Clone(g)
	alphas := make([]float64, len(ss))
	for i := len(ss) - 1; i >= 0; i-- {
		sq, err := dot(ss[i], q)
		if err != nil {
			return nil, err
		}
		alphas[i] = rhos[i] * sq
		if q, err = axpy(-alphas[i], ys[i], q); err != nil {
			return nil, err
		}
	}
	r, err := array.Scale(gamma, q)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(ss); i++ {
		yr, err := dot(ys[i], r)
		if err != nil {
			return nil, err
		}
		beta := rhos[i] * yr
		if r, err = axpy(alphas[i]-beta, ss[i], r); err != nil {
			return nil, err
		}
	}
	return array.Scale(-1, r)
}

// backtrack halves the step until the Armijo sufficient-decrease condition
// holds.
func backtrack(p *Problem, x any, y float64, g, dir any, step float64) (any, float64, error) {
	const c1 = 1e-4
	slope, err := dot(g, dir)
	if err != nil {
		return nil, 0, err
	}
	for i := 0; i < 40; i++ {
		xNext, err := axpy(step, dir, x)
		if err != nil {
			return nil, 0, err
		}
		yNext, err := p.Value(xNext)
		if err != nil {
			return nil, 0, err
		}
		if yNext <= y+c1*step*slope {
			return xNext, yNext, nil
		}
		step /= 2
	}
	return nil, 0, ErrLineSearch
}

// axpy returns alpha*a + b.
func axpy(alpha float64, a, b any) (any, error) {
	s, err := array.Scale(alpha, a)
	if err != nil {
		return nil, err
	}
	return array.Add(s, b)
}

// sub returns a - b.
func sub(a, b any) (any, error) {
	nb, err := array.Scale(-1, b)
	if err != nil {
		return nil, err
	}
	return array.Add(a, nb)
}

// dot returns the inner product as a scalar.
func dot(a, b any) (float64, error) {
	v, err := array.Dot(a, b)
	if err != nil {
		return 0, err
	}
	switch s := v.(type) {
	case float64:
		return s, nil
	default:
		if array.IsZero(v) {
			return 0, nil
		}
		return 0, fmt.Errorf("optim: inner product is %T, not a scalar", v)
	}
}
