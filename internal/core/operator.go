package core

import "fmt"

// Kwargs is the keyword argument set flowing into and out of kernels and
// node construction. The engine is strictly keyword-addressed so that the
// argument-name / gradient-name correspondence is never ambiguous.
type Kwargs map[string]any

// Kernel is an operator procedure body. It receives its declared arguments
// resolved to concrete values and returns one value per declared output
// argument. Kernels are opaque to the engine: they may be pure arithmetic
// or block on external capabilities such as a collective reduction.
type Kernel func(kw Kwargs) (Kwargs, error)

// Arg declares one operator argument: a name and a nominal type tag. The
// tag is informational only; the engine performs no dispatch on it.
type Arg struct {
	Name string
	Type string
}

// KernelSpec pairs a kernel with its formal parameter names. Args plays the
// role of signature introspection: it lists exactly which arguments the
// kernel body reads, which determines the forward values a derivative
// kernel needs replayed from the tape.
type KernelSpec struct {
	Fn   Kernel
	Args []string
}

// Def declares an operator: input and output argument sets plus the three
// paired procedures (forward, reverse-adjoint, forward-tangent).
//
// Derivative kernels follow the adjoint naming convention: the VJP kernel
// sees "_"+name adjoints of the outputs and produces "_"+name adjoints of
// the inputs; the JVP kernel sees name+"_" tangents of the inputs and
// produces name+"_" tangents of the outputs. Any Args entry that is neither
// a declared argument nor a derived adjoint name is a non-differentiated
// side parameter (an axis, an exponent, a communicator) supplied at node
// construction.
type Def struct {
	Name  string
	In    []Arg
	Out   []Arg
	Apply KernelSpec
	VJP   KernelSpec
	JVP   KernelSpec
}

// Kind distinguishes the three primitive kinds an operator generates.
type Kind int

const (
	KindApply Kind = iota
	KindVJP
	KindJVP
)

func (k Kind) String() string {
	switch k {
	case KindApply:
		return "apply"
	case KindVJP:
		return "vjp"
	case KindJVP:
		return "jvp"
	}
	return "unknown"
}

// Operator is a registered computation kernel. Declaration produces three
// fixed-shape primitive descriptors sharing the same bookkeeping; there is
// no runtime type synthesis.
type Operator struct {
	name  string
	in    []Arg
	out   []Arg
	apply *Prim
	vjp   *Prim
	jvp   *Prim
}

// Name returns the operator name.
func (o *Operator) Name() string { return o.name }

// In returns the declared input arguments.
func (o *Operator) In() []Arg { return o.in }

// Out returns the declared output arguments.
func (o *Operator) Out() []Arg { return o.out }

// Apply returns the forward primitive.
func (o *Operator) Apply() *Prim { return o.apply }

// VJP returns the reverse-adjoint primitive.
func (o *Operator) VJP() *Prim { return o.vjp }

// JVP returns the forward-tangent primitive.
func (o *Operator) JVP() *Prim { return o.jvp }

// Prim is one invocable node kind of an operator, with fully derived
// argument lists. Binding a Prim to keyword arguments inserts a node into
// the inferred model.
type Prim struct {
	op   *Operator
	kind Kind
	name string
	in   []Arg
	out  []Arg
	args []string
	fn   Kernel
}

// Operator returns the owning operator.
func (p *Prim) Operator() *Operator { return p.op }

// Kind returns the primitive kind.
func (p *Prim) Kind() Kind { return p.kind }

// Name returns the primitive name, e.g. "mul" or "mul-vjp".
func (p *Prim) Name() string { return p.name }

// InArgs returns the derived input argument list.
func (p *Prim) InArgs() []Arg { return p.in }

// OutArgs returns the derived output argument list.
func (p *Prim) OutArgs() []Arg { return p.out }

// ArgNames returns the kernel's formal parameter names.
func (p *Prim) ArgNames() []string { return p.args }

// Declare registers an operator from its declaration, deriving the three
// primitive kinds and validating the structure.
func Declare(def Def) (*Operator, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: operator name is empty", ErrBrokenPrimitive)
	}
	if len(def.In) == 0 {
		return nil, fmt.Errorf("%w: operator %q declares no input arguments", ErrBrokenPrimitive, def.Name)
	}
	if len(def.Out) == 0 {
		return nil, fmt.Errorf("%w: operator %q declares no output arguments", ErrBrokenPrimitive, def.Name)
	}
	for _, ks := range []struct {
		kind string
		spec KernelSpec
	}{{"apply", def.Apply}, {"vjp", def.VJP}, {"jvp", def.JVP}} {
		if ks.spec.Fn == nil {
			return nil, fmt.Errorf("%w: operator %q has no %s kernel", ErrBrokenPrimitive, def.Name, ks.kind)
		}
	}

	// Every declared input must participate in the forward kernel's
	// signature, every output adjoint in the VJP's, every input tangent in
	// the JVP's.
	for _, a := range def.In {
		if !contains(def.Apply.Args, a.Name) {
			return nil, fmt.Errorf("%w: operator %q input %q is not a parameter of the forward kernel",
				ErrBrokenPrimitive, def.Name, a.Name)
		}
		if !contains(def.JVP.Args, a.Name+"_") {
			return nil, fmt.Errorf("%w: operator %q tangent %q is not a parameter of the jvp kernel",
				ErrBrokenPrimitive, def.Name, a.Name+"_")
		}
	}
	for _, a := range def.Out {
		if !contains(def.VJP.Args, "_"+a.Name) {
			return nil, fmt.Errorf("%w: operator %q adjoint %q is not a parameter of the vjp kernel",
				ErrBrokenPrimitive, def.Name, "_"+a.Name)
		}
	}

	op := &Operator{name: def.Name, in: def.In, out: def.Out}

	op.apply = &Prim{
		op: op, kind: KindApply, name: def.Name,
		in: def.In, out: def.Out,
		args: def.Apply.Args, fn: def.Apply.Fn,
	}

	// VJP: forward arguments the kernel reads, plus adjoints of the
	// outputs, producing adjoints of the inputs.
	vin := forwardArgs(def.In, def.VJP.Args)
	for _, a := range def.Out {
		vin = append(vin, Arg{Name: "_" + a.Name, Type: a.Type})
	}
	vout := make([]Arg, 0, len(def.In))
	for _, a := range def.In {
		vout = append(vout, Arg{Name: "_" + a.Name, Type: a.Type})
	}
	op.vjp = &Prim{
		op: op, kind: KindVJP, name: def.Name + "-vjp",
		in: vin, out: vout,
		args: def.VJP.Args, fn: def.VJP.Fn,
	}

	// JVP: forward arguments the kernel reads, plus tangents of the
	// inputs, producing tangents of the outputs.
	jin := forwardArgs(def.In, def.JVP.Args)
	for _, a := range def.In {
		jin = append(jin, Arg{Name: a.Name + "_", Type: a.Type})
	}
	jout := make([]Arg, 0, len(def.Out))
	for _, a := range def.Out {
		jout = append(jout, Arg{Name: a.Name + "_", Type: a.Type})
	}
	op.jvp = &Prim{
		op: op, kind: KindJVP, name: def.Name + "-jvp",
		in: jin, out: jout,
		args: def.JVP.Args, fn: def.JVP.Fn,
	}

	return op, nil
}

// MustDeclare is Declare for package-level operator variables; it panics on
// a broken declaration.
func MustDeclare(def Def) *Operator {
	op, err := Declare(def)
	if err != nil {
		panic(err)
	}
	return op
}

// forwardArgs selects the declared inputs that a derivative kernel reads,
// in declaration order.
func forwardArgs(in []Arg, kernelArgs []string) []Arg {
	var out []Arg
	for _, a := range in {
		if contains(kernelArgs, a.Name) {
			out = append(out, a)
		}
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
