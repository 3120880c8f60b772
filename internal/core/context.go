package core

import (
	"fmt"
	"log/slog"
)

// Context is the runtime value store for one execution: a mapping from
// symbol name to concrete value. A context is created per execution and
// discarded afterwards; no two executions share one. Ownership of a value
// transfers into the context when a node produces it and is released the
// moment no remaining node or requested output can reference it.
type Context struct {
	values map[string]any
}

// NewContext returns a context seeded with a copy of init.
func NewContext(init map[string]any) *Context {
	c := &Context{values: make(map[string]any, len(init))}
	for k, v := range init {
		c.values[k] = v
	}
	return c
}

// Get reads a value by symbol name.
func (c *Context) Get(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Set writes a value by symbol name.
func (c *Context) Set(name string, v any) {
	c.values[name] = v
}

// Len returns the number of live entries; useful for observing eviction.
func (c *Context) Len() int { return len(c.values) }

// Monitor observes each node right after it executes.
type Monitor func(n *Node, c *Context)

// LogMonitor returns a Monitor that logs every executed node.
func LogMonitor(l *slog.Logger) Monitor {
	return func(n *Node, c *Context) {
		l.Debug("executed node",
			slog.String("node", n.Name()),
			slog.Int("position", n.Pos()),
			slog.Int("live", c.Len()),
		)
	}
}

// Option configures one Compute call.
type Option func(*computeConfig)

type computeConfig struct {
	tape    bool
	monitor Monitor
}

// WithTape enables tape recording for the execution.
func WithTape() Option {
	return func(cfg *computeConfig) { cfg.tape = true }
}

// WithMonitor attaches a per-node observer.
func WithMonitor(m Monitor) Option {
	return func(cfg *computeConfig) { cfg.monitor = m }
}

// Compute executes the model in this context and returns the values of the
// requested outputs, plus the recorded tape when WithTape is given.
//
// Nodes run strictly in declaration order with no scheduling by the
// engine. Requested names are validated before any execution. When
// recording, the (node, resolved-inputs) pair is appended to the tape
// immediately before the kernel runs, whether or not the result is ever
// used: the derivative pass needs the full input history. After each node,
// entries that no remaining node reads and that are not requested outputs
// are evicted, bounding peak memory to the live working set; the liveness
// schedule is a static lookahead computed once per execution.
func (c *Context) Compute(m *Model, vout []string, opts ...Option) (map[string]any, *Tape, error) {
	var cfg computeConfig
	for _, o := range opts {
		o(&cfg)
	}

	for _, name := range vout {
		if !isOutput(m, name) {
			return nil, nil, fmt.Errorf("%w: %q is not declared by the model", ErrUnexpectedOutput, name)
		}
	}

	m.freeze()

	var tape *Tape
	if cfg.tape {
		tape = newTape(m, c.values)
	}

	// Static liveness: last node index reading each name.
	lastUse := make(map[string]int)
	for i, n := range m.nodes {
		for _, a := range n.prim.in {
			for _, name := range n.varin[a.Name].liveNames() {
				lastUse[name] = i
			}
		}
	}
	keep := make(map[string]bool, len(vout))
	for _, name := range vout {
		keep[name] = true
	}

	for i, n := range m.nodes {
		if err := c.execute(n, tape); err != nil {
			return nil, nil, err
		}
		if cfg.monitor != nil {
			cfg.monitor(n, c)
		}
		for name := range c.values {
			if keep[name] {
				continue
			}
			if last, ok := lastUse[name]; !ok || last <= i {
				delete(c.values, name)
			}
		}
	}

	r := make(map[string]any, len(vout))
	for _, name := range vout {
		v, ok := c.values[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: output %q was not produced", ErrResolve, name)
		}
		r[name] = v
	}
	return r, tape, nil
}

// execute resolves a node's inputs, records them on the tape, invokes the
// kernel and stores its outputs. Kernel errors propagate unwrapped in the
// error chain, annotated with the node identity.
func (c *Context) execute(n *Node, tape *Tape) error {
	resolved := make(map[string]any, len(n.prim.in))
	for _, a := range n.prim.in {
		v, err := n.varin[a.Name].resolve(c)
		if err != nil {
			return fmt.Errorf("%w, required by node %s (position %d)", err, n.name, n.pos)
		}
		resolved[a.Name] = v
	}

	kw := make(Kwargs, len(n.prim.args))
	for k, v := range resolved {
		kw[k] = v
	}
	for _, an := range n.prim.args {
		if _, ok := kw[an]; !ok {
			kw[an] = n.kwargs[an]
		}
	}

	if tape != nil {
		tape.append(n, resolved)
	}

	out, err := n.prim.fn(kw)
	if err != nil {
		return fmt.Errorf("node %s (position %d): %w", n.name, n.pos, err)
	}

	for _, a := range n.prim.out {
		v, ok := out[a.Name]
		if !ok {
			return fmt.Errorf("node %s (position %d): kernel produced no %q", n.name, n.pos, a.Name)
		}
		if err := n.varout[a.Name].store(c, v); err != nil {
			return fmt.Errorf("node %s (position %d): %w", n.name, n.pos, err)
		}
	}
	return nil
}

func isOutput(m *Model, name string) bool {
	for _, v := range m.vout {
		if v.name == name {
			return true
		}
	}
	return false
}
