// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package linalg is the standard differentiable operator library: dense
// elementwise arithmetic, shape manipulation, and the scalar reduction used
// by gradient checking. Each builder adds one node to the model inferred
// from its symbol arguments and returns the output symbol.
//
// Example:
//
//	m := model.New()
//	x := m.Input("x")
//	y, _ := linalg.Mul(x, x)
//	c, _ := linalg.ToScalar(y)
//	m.Output("c", c)
package linalg

import (
	"github.com/born-ml/vmad/internal/core"
	"github.com/born-ml/vmad/internal/linalg"
)

// Add builds an elementwise addition node.
func Add(x1, x2 any) (*core.Symbol, error) { return linalg.Add(x1, x2) }

// Mul builds an elementwise multiplication node.
func Mul(x1, x2 any) (*core.Symbol, error) { return linalg.Mul(x1, x2) }

// Pow builds an elementwise exponentiation node with constant exponent n.
func Pow(x any, n float64) (*core.Symbol, error) { return linalg.Pow(x, n) }

// Log builds an elementwise natural-logarithm node.
func Log(x any) (*core.Symbol, error) { return linalg.Log(x) }

// Copy builds a clone node.
func Copy(x any) (*core.Symbol, error) { return linalg.Copy(x) }

// ToScalar builds a sum-of-squares reduction node.
func ToScalar(x any) (*core.Symbol, error) { return linalg.ToScalar(x) }

// Stack builds a node joining equally-shaped elements along a new axis.
func Stack(elems []any, axis int) (*core.Symbol, error) { return linalg.Stack(elems, axis) }

// Take builds a node selecting index i along axis.
func Take(x any, i, axis int) (*core.Symbol, error) { return linalg.Take(x, i, axis) }

// Split builds a node slicing x into n elements along axis and returns the
// element symbols.
func Split(x *core.Symbol, n, axis int) ([]*core.Symbol, error) { return linalg.Split(x, n, axis) }
