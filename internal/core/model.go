package core

import (
	"fmt"
	"sync/atomic"
)

// Model is an ordered computation template: a sequence of nodes in
// declaration order, declared input and output symbols, and a name-uniquing
// counter. A model is built once and executed many times; the first
// execution freezes it.
type Model struct {
	nodes   []*Node
	vin     []*Symbol
	vout    []*Symbol
	syms    map[string]*Symbol
	counter int
	frozen  atomic.Bool
}

// New returns an empty, open model.
func New() *Model {
	return &Model{syms: make(map[string]*Symbol)}
}

// Define allocates a fresh symbol and registers it under name. Defining an
// already-known name never mutates the previous symbol: each logical rebind
// is a new identity, and lookups return the newest one.
func (m *Model) Define(name string) *Symbol {
	s := &Symbol{model: m, name: name}
	m.syms[name] = s
	return s
}

// Get returns the newest symbol registered under name.
func (m *Model) Get(name string) (*Symbol, bool) {
	s, ok := m.syms[name]
	return s, ok
}

// Has reports whether name is registered.
func (m *Model) Has(name string) bool {
	_, ok := m.syms[name]
	return ok
}

// Input declares a model input and returns its symbol.
func (m *Model) Input(name string) *Symbol {
	s := m.Define(name)
	m.vin = append(m.vin, s)
	return s
}

// Inputs declares several model inputs at once.
func (m *Model) Inputs(names ...string) []*Symbol {
	out := make([]*Symbol, len(names))
	for i, n := range names {
		out[i] = m.Input(n)
	}
	return out
}

// Output declares a model output: ref is wrapped through a terminal node so
// every output is uniformly re-bindable and traceable, and registered under
// name. Declaring the same output name twice fails.
func (m *Model) Output(name string, ref any) error {
	for _, v := range m.vout {
		if v.name == name {
			return fmt.Errorf("%w: %q is already an output", ErrDuplicatedOutput, name)
		}
	}
	if m.closed() {
		return fmt.Errorf("%w: cannot declare output %q", ErrClosed, name)
	}
	out := m.Define(name)
	if _, err := terminalOp.apply.Bind(Kwargs{"x": ref, "y": out}); err != nil {
		return err
	}
	m.vout = append(m.vout, out)
	return nil
}

// InputSymbols returns the declared inputs in declaration order.
func (m *Model) InputSymbols() []*Symbol { return m.vin }

// OutputSymbols returns the declared outputs in declaration order.
func (m *Model) OutputSymbols() []*Symbol { return m.vout }

// Nodes returns the node sequence in declaration order.
func (m *Model) Nodes() []*Node { return m.nodes }

// UniqueName returns prefix@N with a per-model counter.
func (m *Model) UniqueName(prefix string) string {
	m.counter++
	return fmt.Sprintf("%s@%d", prefix, m.counter)
}

func (m *Model) String() string {
	return fmt.Sprintf("Model: %v => %v", m.vin, m.vout)
}

func (m *Model) append(n *Node) {
	n.pos = len(m.nodes)
	m.nodes = append(m.nodes, n)
}

// freeze closes the model; called by the first execution.
func (m *Model) freeze() { m.frozen.Store(true) }

func (m *Model) closed() bool { return m.frozen.Load() }

// Compute executes the model against a fresh context seeded with init and
// returns the requested outputs.
func (m *Model) Compute(init map[string]any, vout []string) (map[string]any, error) {
	r, _, err := NewContext(init).Compute(m, vout)
	return r, err
}

// ComputeWithTape is Compute with tape recording enabled.
func (m *Model) ComputeWithTape(init map[string]any, vout []string) (map[string]any, *Tape, error) {
	return NewContext(init).Compute(m, vout, WithTape())
}

// Compute1 executes the model for a single output name.
func (m *Model) Compute1(init map[string]any, vout string) (any, error) {
	r, err := m.Compute(init, []string{vout})
	if err != nil {
		return nil, err
	}
	return r[vout], nil
}
