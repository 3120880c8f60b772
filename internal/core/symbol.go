package core

import (
	"fmt"

	"github.com/born-ml/vmad/internal/array"
)

// Ref is anything that can supply or receive an operator argument during
// graph construction: a Symbol resolved from the context at execution time,
// a Literal carrying a build-time constant, or a List of either.
type Ref interface {
	// resolve reads the concrete value from the context.
	resolve(c *Context) (any, error)

	// store writes a produced value into the context.
	store(c *Context, v any) error

	// addReference registers node as a consumer and returns the occurrence
	// ordinal of every symbol touched (one entry for a Symbol, one per
	// element for a List, 0 for literals).
	addReference(n *Node) []int

	// refModel returns the owning model, or nil for literal-only refs.
	refModel() *Model

	// liveNames returns the context keys this ref reads; used by the
	// static liveness schedule.
	liveNames() []string
}

// Symbol is a named slot in a Model, resolved to a concrete value only at
// execution time. Its consumer list is used exclusively for reference
// counting during the reverse-mode transform, never for traversal.
type Symbol struct {
	model *Model
	name  string
	refs  []*Node
}

// Name returns the symbol's name.
func (s *Symbol) Name() string { return s.name }

// VJPName returns the name of the symbol's reverse-mode adjoint.
func (s *Symbol) VJPName() string { return "_" + s.name }

// JVPName returns the name of the symbol's forward-mode tangent.
func (s *Symbol) JVPName() string { return s.name + "_" }

// Model returns the model the symbol belongs to.
func (s *Symbol) Model() *Model { return s.model }

// NumRefs returns how many node inputs consume the symbol.
func (s *Symbol) NumRefs() int { return len(s.refs) }

func (s *Symbol) String() string { return "[" + s.name + ":]" }

func (s *Symbol) resolve(c *Context) (any, error) {
	v, ok := c.values[s.name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrResolve, s.name)
	}
	return v, nil
}

func (s *Symbol) store(c *Context, v any) error {
	c.values[s.name] = v
	return nil
}

func (s *Symbol) addReference(n *Node) []int {
	s.refs = append(s.refs, n)
	return []int{len(s.refs)}
}

func (s *Symbol) refModel() *Model { return s.model }

func (s *Symbol) liveNames() []string { return []string{s.name} }

// Literal is a build-time constant bound directly into a node. Literals do
// not participate in gradient propagation: their adjoint and tangent are
// always the additive identity.
type Literal struct {
	value any
}

// NewLiteral wraps a constant value for use as a node input.
func NewLiteral(v any) *Literal { return &Literal{value: v} }

// NewZeroLiteral returns a Literal resolving to the additive identity. The
// differentiation transforms use it to seed adjoints and tangents that
// never accumulate anything.
func NewZeroLiteral() *Literal { return &Literal{value: array.Zero} }

// Value returns the wrapped constant.
func (l *Literal) Value() any { return l.value }

// IsZero reports whether the literal is the additive identity.
func (l *Literal) IsZero() bool { return array.IsZero(l.value) }

func (l *Literal) String() string { return fmt.Sprintf("%v", l.value) }

func (l *Literal) resolve(*Context) (any, error) { return l.value, nil }

func (l *Literal) store(*Context, any) error {
	return fmt.Errorf("%w: cannot store into literal %v", ErrBadArgument, l.value)
}

func (l *Literal) addReference(*Node) []int { return []int{0} }

func (l *Literal) refModel() *Model { return nil }

func (l *Literal) liveNames() []string { return nil }

// List is an ordered composite of Symbols and Literals usable as a single
// argument. Resolving gathers element values into []any; storing scatters a
// []any (or the additive identity) back over the elements.
type List struct {
	elems []Ref
}

// NewList builds a List, wrapping bare values as Literals.
func NewList(elems ...any) *List {
	l := &List{elems: make([]Ref, len(elems))}
	for i, e := range elems {
		l.elems[i] = asRef(e)
	}
	return l
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Elem returns the i-th element.
func (l *List) Elem(i int) Ref { return l.elems[i] }

func (l *List) String() string { return fmt.Sprintf("list%v", l.elems) }

func (l *List) resolve(c *Context) (any, error) {
	out := make([]any, len(l.elems))
	for i, e := range l.elems {
		v, err := e.resolve(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (l *List) store(c *Context, v any) error {
	if array.IsZero(v) {
		for _, e := range l.elems {
			if err := e.store(c, array.Zero); err != nil {
				return err
			}
		}
		return nil
	}
	vs, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%w: list output expects []any, got %T", ErrBadArgument, v)
	}
	if len(vs) != len(l.elems) {
		return fmt.Errorf("%w: list output expects %d values, got %d", ErrBadArgument, len(l.elems), len(vs))
	}
	for i, e := range l.elems {
		if err := e.store(c, vs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) addReference(n *Node) []int {
	ords := make([]int, 0, len(l.elems))
	for _, e := range l.elems {
		ords = append(ords, e.addReference(n)...)
	}
	return ords
}

func (l *List) refModel() *Model {
	for _, e := range l.elems {
		if m := e.refModel(); m != nil {
			return m
		}
	}
	return nil
}

func (l *List) liveNames() []string {
	var names []string
	for _, e := range l.elems {
		names = append(names, e.liveNames()...)
	}
	return names
}

// asRef normalizes an argument value: Refs pass through, []any becomes a
// List, anything else becomes a Literal.
func asRef(v any) Ref {
	switch x := v.(type) {
	case Ref:
		return x
	case []any:
		return NewList(x...)
	case []*Symbol:
		elems := make([]any, len(x))
		for i, s := range x {
			elems[i] = s
		}
		return NewList(elems...)
	default:
		return NewLiteral(v)
	}
}
