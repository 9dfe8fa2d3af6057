package transfer

// DerivedInput is the per-command store input before any CommandInput
// overrides are merged in. The sync engine starts every command from an
// empty DerivedInput; it carries no per-object fields such as the key or
// size.
type DerivedInput struct {
	ACL         string
	ContentType string
	Metadata    map[string]string
}

// Override is spec §9's sum type: either a literal value, or a function
// of the default DerivedInput that computes one. Exactly one of the two
// constructors below should be used to build a value.
type Override[T any] struct {
	value      T
	compute    func(DerivedInput) T
	isComputed bool
}

// Literal builds an Override that always resolves to v, regardless of the
// derived input it's merged against.
func Literal[T any](v T) Override[T] {
	return Override[T]{value: v}
}

// Computed builds an Override that resolves by invoking fn with the
// current derived input. fn is invoked once per command, but since
// DerivedInput holds no per-object fields it sees the same base input for
// every object of a sync.
func Computed[T any](fn func(DerivedInput) T) Override[T] {
	return Override[T]{compute: fn, isComputed: true}
}

// Resolve returns the override's value for the given base input.
func (o Override[T]) Resolve(base DerivedInput) T {
	if o.isComputed {
		return o.compute(base)
	}

	return o.value
}

// CommandInput is the caller-supplied bag of per-operation overrides
// (spec §4.5's commandInput option). A nil field leaves the corresponding
// DerivedInput field at its default.
type CommandInput struct {
	ACL         *Override[string]
	ContentType *Override[string]
	Metadata    *Override[map[string]string]
}

// Apply merges ci into base, literal entries overwriting the default
// field and function entries being invoked with base (spec §4.6).
func (ci CommandInput) Apply(base DerivedInput) DerivedInput {
	out := base

	if ci.ACL != nil {
		out.ACL = ci.ACL.Resolve(base)
	}

	if ci.ContentType != nil {
		out.ContentType = ci.ContentType.Resolve(base)
	}

	if ci.Metadata != nil {
		out.Metadata = ci.Metadata.Resolve(base)
	}

	return out
}
