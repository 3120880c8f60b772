package core

import "fmt"

// Node is one primitive application inside a model: a mapping from each
// declared input argument to the Ref supplying it, from each output
// argument to the Ref receiving it, and a side table of non-differentiated
// keyword parameters. The per-argument occurrence ordinals recorded at
// construction drive the reverse-mode accumulation decision.
type Node struct {
	prim     *Prim
	model    *Model
	name     string
	pos      int
	varin    map[string]Ref
	varout   map[string]Ref
	ordinals map[string][]int
	kwargs   map[string]any
}

// Name returns the unique node name, e.g. "mul@3".
func (n *Node) Name() string { return n.name }

// Pos returns the node's position in declaration order.
func (n *Node) Pos() int { return n.pos }

// Prim returns the primitive this node applies.
func (n *Node) Prim() *Prim { return n.prim }

// Operator returns the operator this node applies.
func (n *Node) Operator() *Operator { return n.prim.op }

// Model returns the owning model.
func (n *Node) Model() *Model { return n.model }

// Input returns the Ref bound to an input argument.
func (n *Node) Input(name string) Ref { return n.varin[name] }

// Output returns the Ref bound to an output argument.
func (n *Node) Output(name string) Ref { return n.varout[name] }

// Ordinals returns the occurrence ordinals recorded for an input argument:
// one entry for a plain symbol, one per element for a list, 0 for a
// literal.
func (n *Node) Ordinals(name string) []int { return n.ordinals[name] }

// SideArg returns a non-differentiated keyword parameter.
func (n *Node) SideArg(name string) (any, bool) {
	v, ok := n.kwargs[name]
	return v, ok
}

// OutSymbol returns the symbol bound to a single-symbol output argument.
func (n *Node) OutSymbol(name string) (*Symbol, error) {
	ref, ok := n.varout[name]
	if !ok {
		return nil, fmt.Errorf("%w: node %s has no output %q", ErrBadArgument, n.name, name)
	}
	s, ok := ref.(*Symbol)
	if !ok {
		return nil, fmt.Errorf("%w: output %q of node %s is not a plain symbol", ErrBadArgument, name, n.name)
	}
	return s, nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%v => %v)", n.name, n.varin, n.varout)
}

// Bind constructs a node applying the primitive to keyword-bound arguments
// and appends it to the inferred model. Bare input values wrap as Literals
// and []any values as Lists; the owning model is inferred from the first
// symbol-typed argument. Output arguments default to freshly defined
// symbols named after the node.
func (p *Prim) Bind(kw Kwargs) (*Node, error) {
	for _, a := range p.in {
		if _, ok := kw[a.Name]; !ok {
			return nil, fmt.Errorf("%w: input argument %q not provided to %s", ErrMissingArgument, a.Name, p.name)
		}
	}

	m := inferModel(p, kw)
	if m == nil {
		return nil, fmt.Errorf("%w: every input of %s is a literal", ErrInfer, p.name)
	}
	if m.closed() {
		return nil, fmt.Errorf("%w: cannot add %s", ErrClosed, p.name)
	}

	n := &Node{
		prim:     p,
		model:    m,
		name:     m.UniqueName(p.name),
		varin:    make(map[string]Ref, len(p.in)),
		varout:   make(map[string]Ref, len(p.out)),
		ordinals: make(map[string][]int, len(p.in)),
		kwargs:   make(map[string]any),
	}

	for _, a := range p.in {
		ref := asRef(kw[a.Name])
		n.ordinals[a.Name] = ref.addReference(n)
		n.varin[a.Name] = ref
	}

	for _, a := range p.out {
		v, ok := kw[a.Name]
		if !ok {
			n.varout[a.Name] = m.Define(n.name + "-" + a.Name)
			continue
		}
		ref, err := asOutRef(v)
		if err != nil {
			return nil, fmt.Errorf("output argument %q of %s: %w", a.Name, p.name, err)
		}
		if consumed(ref) {
			return nil, fmt.Errorf("%w: output argument %q of %s targets a symbol with consumers",
				ErrOverwritePrecaution, a.Name, p.name)
		}
		n.varout[a.Name] = ref
	}

	// Leftover keywords are side parameters; anything the primitive does
	// not declare is rejected.
	for k, v := range kw {
		if hasArg(p.in, k) || hasArg(p.out, k) {
			continue
		}
		if !contains(p.args, k) {
			return nil, fmt.Errorf("%w: %s does not accept %q", ErrBadArgument, p.name, k)
		}
		n.kwargs[k] = v
	}

	// Every kernel parameter must be fed: either a declared input resolved
	// at execution time, or a side parameter supplied now.
	for _, an := range p.args {
		if hasArg(p.in, an) {
			continue
		}
		if _, ok := n.kwargs[an]; !ok {
			return nil, fmt.Errorf("%w: side argument %q not provided to %s", ErrMissingArgument, an, p.name)
		}
	}

	m.append(n)
	return n, nil
}

// inferModel finds the owning model from the first symbol-typed input, then
// from any symbol-typed output.
func inferModel(p *Prim, kw Kwargs) *Model {
	for _, a := range p.in {
		if m := asRef(kw[a.Name]).refModel(); m != nil {
			return m
		}
	}
	for _, a := range p.out {
		if v, ok := kw[a.Name]; ok {
			if m := asRef(v).refModel(); m != nil {
				return m
			}
		}
	}
	return nil
}

// asOutRef validates an explicitly supplied output target: a symbol, or a
// list of symbols for list-valued outputs.
func asOutRef(v any) (Ref, error) {
	switch x := v.(type) {
	case *Symbol:
		return x, nil
	case []*Symbol:
		elems := make([]any, len(x))
		for i, s := range x {
			elems[i] = s
		}
		return NewList(elems...), nil
	case *List:
		for i := 0; i < x.Len(); i++ {
			if _, ok := x.Elem(i).(*Symbol); !ok {
				return nil, fmt.Errorf("%w: list output element %d is not a symbol", ErrBadArgument, i)
			}
		}
		return x, nil
	default:
		return nil, fmt.Errorf("%w: output target must be a symbol, got %T", ErrBadArgument, v)
	}
}

// consumed reports whether an output target already has consumers.
func consumed(ref Ref) bool {
	switch x := ref.(type) {
	case *Symbol:
		return x.NumRefs() > 0
	case *List:
		for i := 0; i < x.Len(); i++ {
			if s, ok := x.Elem(i).(*Symbol); ok && s.NumRefs() > 0 {
				return true
			}
		}
	}
	return false
}

func hasArg(args []Arg, name string) bool {
	for _, a := range args {
		if a.Name == name {
			return true
		}
	}
	return false
}
