// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim minimizes scalar objectives expressed as vmad models.
//
// A Problem pairs a model with its input and objective names; gradients are
// pulled through the reverse-mode transform of a recorded tape, so any
// model with a scalar output is optimizable without extra code.
//
// Example:
//
//	p := optim.NewProblem(m, "x", "c")
//	gd := &optim.GradientDescent{GTol: 1e-10}
//	res, _ := gd.Minimize(p, model.Arange(10))
package optim

import (
	"github.com/born-ml/vmad/internal/core"
	"github.com/born-ml/vmad/internal/optim"
)

// Problem is a scalar objective over a single model input.
type Problem = optim.Problem

// Result reports the outcome of a minimization.
type Result = optim.Result

// GradientDescent is steepest descent with a backtracking line search.
type GradientDescent = optim.GradientDescent

// LBFGS is the limited-memory BFGS quasi-Newton method.
type LBFGS = optim.LBFGS

// ErrLineSearch reports a failed backtracking line search.
var ErrLineSearch = optim.ErrLineSearch

// NewProblem wraps a model whose output yname is the scalar objective of
// input xname.
func NewProblem(m *core.Model, xname, yname string) *Problem {
	return optim.NewProblem(m, xname, yname)
}
