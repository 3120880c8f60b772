package core

import "github.com/google/uuid"

// Record is one tape entry: a node together with the input values it
// resolved at the moment it executed. The snapshot is what lets the
// differentiation transforms replay exactly what each kernel saw.
type Record struct {
	node     *Node
	resolved map[string]any
}

// Node returns the recorded node.
func (r Record) Node() *Node { return r.node }

// Resolved returns the recorded value of an input argument.
func (r Record) Resolved(name string) (any, bool) {
	v, ok := r.resolved[name]
	return v, ok
}

// Tape is the ordered record of one execution: every executed node paired
// with its resolved inputs, plus the initial context snapshot. It is
// produced by exactly one execution and consumed, read-only, by the
// differentiation transforms; consuming it twice yields identical graphs.
type Tape struct {
	id      uuid.UUID
	model   *Model
	init    map[string]any
	records []Record
}

func newTape(m *Model, init map[string]any) *Tape {
	snapshot := make(map[string]any, len(init))
	for k, v := range init {
		snapshot[k] = v
	}
	return &Tape{id: uuid.New(), model: m, init: snapshot}
}

// ID returns the execution identifier, attached for diagnosability.
func (t *Tape) ID() uuid.UUID { return t.id }

// Model returns the model the tape was recorded from.
func (t *Tape) Model() *Model { return t.model }

// Init returns the initial context snapshot.
func (t *Tape) Init() map[string]any { return t.init }

// Len returns the number of recorded nodes.
func (t *Tape) Len() int { return len(t.records) }

// Records returns the records in execution order.
func (t *Tape) Records() []Record { return t.records }

func (t *Tape) append(n *Node, resolved map[string]any) {
	t.records = append(t.records, Record{node: n, resolved: resolved})
}
