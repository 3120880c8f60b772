// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model is the public surface of the vmad graph engine: building
// computation models from operators, executing them against per-run
// contexts, and recording execution tapes for differentiation.
//
// Example:
//
//	import (
//	    "github.com/born-ml/vmad/linalg"
//	    "github.com/born-ml/vmad/model"
//	)
//
//	func main() {
//	    m := model.New()
//	    x := m.Input("x")
//	    y, _ := linalg.Mul(x, x)
//	    c, _ := linalg.ToScalar(y)
//	    m.Output("c", c)
//
//	    r, _ := m.Compute(map[string]any{"x": model.Arange(10)}, []string{"c"})
//	    fmt.Println(r["c"])
//	}
package model

import (
	"log/slog"

	"github.com/born-ml/vmad/internal/array"
	"github.com/born-ml/vmad/internal/core"
)

// Model is an ordered computation template, built once and executed many
// times.
type Model = core.Model

// Symbol is a named slot in a model, resolved only at execution time.
type Symbol = core.Symbol

// Literal is a build-time constant bound directly into a node.
type Literal = core.Literal

// List is an ordered composite of symbols and literals usable as a single
// operator argument.
type List = core.List

// Context is the runtime value store for one execution.
type Context = core.Context

// Tape is the execution record a derivative graph is built from.
type Tape = core.Tape

// Operator is a registered forward primitive with its derivative kernels.
type Operator = core.Operator

// Def declares a new operator.
type Def = core.Def

// Kwargs is the keyword argument set kernels and builders exchange.
type Kwargs = core.Kwargs

// Monitor observes each node right after it executes.
type Monitor = core.Monitor

// Option configures one Compute call.
type Option = core.Option

// Array is the dense n-dimensional value type kernels compute over.
type Array = array.Array

// New creates an empty, open model.
func New() *Model { return core.New() }

// NewContext creates a context seeded with a copy of init.
func NewContext(init map[string]any) *Context { return core.NewContext(init) }

// NewLiteral wraps a constant value for use as a node input.
func NewLiteral(v any) *Literal { return core.NewLiteral(v) }

// NewZeroLiteral returns a literal resolving to the additive identity.
func NewZeroLiteral() *Literal { return core.NewZeroLiteral() }

// NewList builds a list argument, wrapping bare values as literals.
func NewList(elems ...any) *List { return core.NewList(elems...) }

// Declare registers a new operator from its kernel definitions.
func Declare(def Def) (*Operator, error) { return core.Declare(def) }

// MustDeclare is Declare panicking on invalid definitions; for package-level
// operator variables.
func MustDeclare(def Def) *Operator { return core.MustDeclare(def) }

// WithTape enables tape recording for one Compute call.
func WithTape() Option { return core.WithTape() }

// WithMonitor attaches a per-node observer to one Compute call.
func WithMonitor(m Monitor) Option { return core.WithMonitor(m) }

// LogMonitor returns a Monitor logging every executed node through l.
func LogMonitor(l *slog.Logger) Monitor { return core.LogMonitor(l) }

// Sentinel errors surfaced by model construction and execution. Match with
// errors.Is.
var (
	ErrBrokenPrimitive     = core.ErrBrokenPrimitive
	ErrInfer               = core.ErrInfer
	ErrBadArgument         = core.ErrBadArgument
	ErrMissingArgument     = core.ErrMissingArgument
	ErrOverwritePrecaution = core.ErrOverwritePrecaution
	ErrDuplicatedOutput    = core.ErrDuplicatedOutput
	ErrUnexpectedOutput    = core.ErrUnexpectedOutput
	ErrResolve             = core.ErrResolve
	ErrClosed              = core.ErrClosed
)

// Zero is the additive identity sentinel.
var Zero = array.Zero

// IsZero reports whether v is the additive identity sentinel.
func IsZero(v any) bool { return array.IsZero(v) }

// NewArray returns a zero-filled array with the given shape.
func NewArray(shape ...int) *Array { return array.New(shape...) }

// FromSlice returns a 1-D array with a copy of data.
func FromSlice(data []float64) *Array { return array.FromSlice(data) }

// FromData wraps a copy of data under the given shape.
func FromData(data []float64, shape ...int) (*Array, error) {
	return array.NewFromData(data, shape...)
}

// Arange returns the 1-D array [0, 1, ..., n-1].
func Arange(n int) *Array { return array.Arange(n) }
