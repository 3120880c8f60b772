// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff turns execution tapes into derivative models.
//
// Both transforms are pure graph-to-graph functions over a tape recorded
// with model.WithTape: VJP builds the reverse-mode (gradient) model whose
// inputs are output adjoints, JVP the forward-mode model whose inputs are
// input tangents. The resulting models execute like any other.
//
// Example:
//
//	r, tape, _ := m.ComputeWithTape(init, []string{"c"})
//	grad, _ := autodiff.VJP(tape)
//	g, _ := grad.Compute(map[string]any{"_c": 1.0}, []string{"_x"})
package autodiff

import (
	"github.com/born-ml/vmad/internal/autodiff"
	"github.com/born-ml/vmad/internal/core"
)

// VJP builds the reverse-mode derivative model of a tape.
func VJP(tape *core.Tape) (*core.Model, error) { return autodiff.VJP(tape) }

// JVP builds the forward-mode derivative model of a tape.
func JVP(tape *core.Tape) (*core.Model, error) { return autodiff.JVP(tape) }
