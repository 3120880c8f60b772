package core

import "errors"

// Sentinel errors for every failure the engine can detect. All of them are
// construction- or resolution-time failures; the engine never recovers or
// retries, it surfaces them to the caller wrapped with enough context to
// locate the offending declaration or node. Match with errors.Is.
var (
	// ErrBrokenPrimitive reports an operator declaration missing a required
	// structural field, or a declared argument absent from a kernel's
	// parameter list.
	ErrBrokenPrimitive = errors.New("broken primitive")

	// ErrInfer reports that the owning model could not be inferred because
	// every input argument was literal-only.
	ErrInfer = errors.New("cannot infer model")

	// ErrBadArgument reports a keyword that the node kind does not accept.
	ErrBadArgument = errors.New("bad argument")

	// ErrMissingArgument reports an input or side argument that was not
	// supplied.
	ErrMissingArgument = errors.New("missing argument")

	// ErrOverwritePrecaution reports an output argument targeting a symbol
	// that already has consumers. Overwriting used symbols breaks the
	// reverse-mode transform.
	ErrOverwritePrecaution = errors.New("overwrite precaution")

	// ErrDuplicatedOutput reports the same output name declared twice on
	// one model.
	ErrDuplicatedOutput = errors.New("duplicated output")

	// ErrUnexpectedOutput reports an execution requesting an output name
	// the model does not declare.
	ErrUnexpectedOutput = errors.New("unexpected output")

	// ErrResolve reports a symbol whose value is absent from the context at
	// execution time.
	ErrResolve = errors.New("cannot resolve symbol")

	// ErrClosed reports an attempt to grow a model after its first
	// execution froze it.
	ErrClosed = errors.New("model is closed")
)
