// Package autodiff mechanically derives derivative graphs from execution
// tapes: VJP builds the reverse-mode (vector-Jacobian) graph and JVP the
// forward-mode (Jacobian-vector) graph. Both are pure graph-to-graph
// functions: the same tape always yields the same derivative model, and a
// tape may be transformed any number of times.
package autodiff

import (
	"fmt"

	"github.com/born-ml/vmad/internal/core"
)

// VJP builds the reverse-mode derivative model of a tape. Its inputs are
// the adjoints of the recorded model's declared outputs ("_y" for output
// "y") and its outputs the adjoints of the recorded model's declared
// inputs.
//
// The tape is walked in reverse. Fan-out follows the occurrence ordinals
// recorded at node construction: the outermost occurrence of a symbol (the
// one visited first on the reverse walk) writes the canonical adjoint name
// directly, every earlier occurrence writes a private "name#ordinal"
// partial that is summed into the canonical name through an explicit add
// node. Model inputs that never accumulate an adjoint are bound to the
// additive identity so downstream consumers never observe a missing key.
func VJP(tape *core.Tape) (*core.Model, error) {
	m := core.New()
	for _, v := range tape.Model().OutputSymbols() {
		m.Input(v.VJPName())
	}

	recs := tape.Records()
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		n := rec.Node()
		prim, err := forwardPrim(n)
		if err != nil {
			return nil, err
		}
		vp := n.Operator().VJP()

		kw, err := replayKwargs(m, n, rec, vp)
		if err != nil {
			return nil, err
		}

		// Adjoints of the node's outputs are inputs of the vjp node.
		for _, a := range prim.OutArgs() {
			ref, err := adjointIn(m, n.Output(a.Name))
			if err != nil {
				return nil, err
			}
			kw["_"+a.Name] = ref
		}

		// Adjoints of the node's inputs are outputs of the vjp node;
		// non-outermost occurrences go to partials pending accumulation.
		var acc []accumulation
		for _, a := range prim.InArgs() {
			target, pending, err := adjointOut(m, n.Input(a.Name), n.Ordinals(a.Name))
			if err != nil {
				return nil, err
			}
			if target == nil {
				continue // literal input, no adjoint
			}
			kw["_"+a.Name] = target
			acc = append(acc, pending...)
		}

		if _, err := vp.Bind(kw); err != nil {
			return nil, fmt.Errorf("vjp of node %s: %w", n.Name(), err)
		}

		for _, p := range acc {
			if err := p.emit(m); err != nil {
				return nil, err
			}
		}
	}

	for _, v := range tape.Model().InputSymbols() {
		var out any
		if s, ok := m.Get(v.VJPName()); ok {
			out = s
		} else {
			out = core.NewZeroLiteral()
		}
		if err := m.Output(v.VJPName(), out); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// accumulation is one pending partial-adjoint sum: canonical += partial.
type accumulation struct {
	canonical string
	partial   string
}

func (p accumulation) emit(m *core.Model) error {
	full, ok := m.Get(p.canonical)
	if !ok {
		return fmt.Errorf("%w: %q while accumulating %q", core.ErrResolve, p.canonical, p.partial)
	}
	part, ok := m.Get(p.partial)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrResolve, p.partial)
	}
	// Fresh identity under the same canonical name; overwriting the old
	// symbol is exactly what the precaution forbids.
	next := m.Define(p.canonical)
	_, err := core.AddOperator().Apply().Bind(core.Kwargs{"x1": full, "x2": part, "y": next})
	return err
}

// adjointIn returns the adjoint ref of an output: the symbol registered
// under its vjp name, or the additive identity when the result was never
// consumed downstream. List outputs map elementwise.
func adjointIn(m *core.Model, ref core.Ref) (any, error) {
	switch x := ref.(type) {
	case *core.Symbol:
		if s, ok := m.Get(x.VJPName()); ok {
			return s, nil
		}
		return core.NewZeroLiteral(), nil
	case *core.List:
		elems := make([]any, x.Len())
		for i := 0; i < x.Len(); i++ {
			e, err := adjointIn(m, x.Elem(i))
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return core.NewList(elems...), nil
	case *core.Literal:
		return core.NewZeroLiteral(), nil
	}
	return nil, fmt.Errorf("%w: cannot take adjoint of %T", core.ErrBadArgument, ref)
}

// adjointOut allocates the vjp target for one node input. The outermost
// occurrence (ordinal equal to the symbol's reference count) gets the
// canonical adjoint name; anything else gets a private partial plus a
// pending accumulation. Literal inputs yield a nil target.
func adjointOut(m *core.Model, ref core.Ref, ords []int) (any, []accumulation, error) {
	switch x := ref.(type) {
	case *core.Literal:
		return nil, nil, nil
	case *core.Symbol:
		if len(ords) != 1 {
			return nil, nil, fmt.Errorf("%w: symbol %s carries %d ordinals", core.ErrBadArgument, x.Name(), len(ords))
		}
		name := x.VJPName()
		if ords[0] == x.NumRefs() {
			return m.Define(name), nil, nil
		}
		partial := fmt.Sprintf("%s#%d", name, ords[0])
		return m.Define(partial), []accumulation{{canonical: name, partial: partial}}, nil
	case *core.List:
		elems := make([]any, x.Len())
		var acc []accumulation
		for i, j := 0, 0; i < x.Len(); i++ {
			elem := x.Elem(i)
			width := ordinalWidth(elem)
			target, pending, err := adjointOut(m, elem, ords[j:j+width])
			if err != nil {
				return nil, nil, err
			}
			j += width
			if target == nil {
				// Adjoints of literal elements are scattered into a
				// discard slot and evicted immediately.
				target = m.Define(m.UniqueName("_discard"))
			}
			elems[i] = target
			acc = append(acc, pending...)
		}
		return core.NewList(elems...), acc, nil
	}
	return nil, nil, fmt.Errorf("%w: cannot allocate adjoint for %T", core.ErrBadArgument, ref)
}

func ordinalWidth(ref core.Ref) int {
	if l, ok := ref.(*core.List); ok {
		w := 0
		for i := 0; i < l.Len(); i++ {
			w += ordinalWidth(l.Elem(i))
		}
		return w
	}
	return 1
}

// replayKwargs rebuilds the keyword set a derivative kernel needs: the
// node's side parameters it declares, plus the forward input values
// literalized from the tape record.
func replayKwargs(m *core.Model, n *core.Node, rec core.Record, p *core.Prim) (core.Kwargs, error) {
	kw := make(core.Kwargs)
	for _, an := range p.ArgNames() {
		if v, ok := rec.Resolved(an); ok {
			kw[an] = core.NewLiteral(v)
			continue
		}
		if v, ok := n.SideArg(an); ok {
			kw[an] = v
		}
	}
	return kw, nil
}

// forwardPrim checks the tape entry is a forward application: the autodiff
// algebra is explicitly not closed, derivative graphs cannot be
// differentiated again by replaying their tapes.
func forwardPrim(n *core.Node) (*core.Prim, error) {
	p := n.Prim()
	if p.Kind() != core.KindApply {
		return nil, fmt.Errorf("%w: tape contains %s node %s; only forward tapes are differentiable",
			core.ErrBadArgument, p.Kind(), n.Name())
	}
	return p, nil
}
