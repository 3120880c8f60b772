package autodiff

import (
	"fmt"

	"github.com/born-ml/vmad/internal/core"
)

// JVP builds the forward-mode derivative model of a tape. Its inputs are
// the tangents of the recorded model's declared inputs ("x_" for input
// "x") and its outputs the tangents of the recorded model's declared
// outputs.
//
// The tape is walked in original order. Tangents of literal inputs seed
// the additive identity; no accumulation is needed because every symbol
// has exactly one producer.
func JVP(tape *core.Tape) (*core.Model, error) {
	m := core.New()
	for _, v := range tape.Model().InputSymbols() {
		m.Input(v.JVPName())
	}

	for _, rec := range tape.Records() {
		n := rec.Node()
		prim, err := forwardPrim(n)
		if err != nil {
			return nil, err
		}
		jp := n.Operator().JVP()

		kw, err := replayKwargs(m, n, rec, jp)
		if err != nil {
			return nil, err
		}

		for _, a := range prim.InArgs() {
			ref, err := tangentIn(m, n.Input(a.Name))
			if err != nil {
				return nil, err
			}
			kw[a.Name+"_"] = ref
		}

		for _, a := range prim.OutArgs() {
			ref, err := tangentOut(m, n.Output(a.Name))
			if err != nil {
				return nil, err
			}
			kw[a.Name+"_"] = ref
		}

		if _, err := jp.Bind(kw); err != nil {
			return nil, fmt.Errorf("jvp of node %s: %w", n.Name(), err)
		}
	}

	for _, v := range tape.Model().OutputSymbols() {
		var out any
		if s, ok := m.Get(v.JVPName()); ok {
			out = s
		} else {
			out = core.NewZeroLiteral()
		}
		if err := m.Output(v.JVPName(), out); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// tangentIn returns the tangent ref of a node input: the symbol registered
// under its jvp name, or the additive identity for literals and for values
// injected into the context without being declared inputs (constants with
// respect to differentiation).
func tangentIn(m *core.Model, ref core.Ref) (any, error) {
	switch x := ref.(type) {
	case *core.Literal:
		return core.NewZeroLiteral(), nil
	case *core.Symbol:
		if s, ok := m.Get(x.JVPName()); ok {
			return s, nil
		}
		return core.NewZeroLiteral(), nil
	case *core.List:
		elems := make([]any, x.Len())
		for i := 0; i < x.Len(); i++ {
			e, err := tangentIn(m, x.Elem(i))
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return core.NewList(elems...), nil
	}
	return nil, fmt.Errorf("%w: cannot take tangent of %T", core.ErrBadArgument, ref)
}

// tangentOut defines the tangent symbols for a node output.
func tangentOut(m *core.Model, ref core.Ref) (any, error) {
	switch x := ref.(type) {
	case *core.Symbol:
		return m.Define(x.JVPName()), nil
	case *core.List:
		elems := make([]any, x.Len())
		for i := 0; i < x.Len(); i++ {
			e, err := tangentOut(m, x.Elem(i))
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return core.NewList(elems...), nil
	}
	return nil, fmt.Errorf("%w: cannot allocate tangent for %T", core.ErrBadArgument, ref)
}
