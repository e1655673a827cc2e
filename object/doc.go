// Package object implements the reference-counted object space consumed by
// the casters: dynamic values, dynamic types, and the space that allocates
// them. It covers values, types, reference counting, and an error
// indicator. It is not an interpreter; there is no evaluator, attribute
// protocol, or bytecode.
//
// # Value Model
//
// Every value is an *Object with a dynamic type and a reference count.
// Builtin kinds cover the marshalling surface:
//
//	none              immortal singleton
//	bool              immortal true/false singletons
//	int               int64 payload
//	float             float64 payload
//	complex           complex128 payload
//	str               UTF-8 string payload
//	list              growable ordered sequence
//	tuple             fixed-arity ordered sequence
//	dict              insertion-ordered mapping, value-hashed keys
//	func              host callable
//	instance          wrapper around a native aggregate value
//
// Registered aggregate types are created with Space.NewType and form
// single-inheritance chains checked by Type.IsSubtype. A type may carry a
// destructor in Type.Free; subtypes inherit it through the chain.
//
// # Reference Counting
//
// Constructors return a new reference owned by the caller. Container
// inserts (List.Append, Tuple.Set, Dict.Set) take their own counted
// reference, so callers release theirs when done:
//
//	item := space.NewInt(42)
//	list.Append(item)
//	item.DecRef()
//
// When a count reaches zero the object fires the space's release hooks,
// releases its children, runs the finalizer if the instance owns its
// native value (Instance.Free when set, the type's otherwise), drops the
// parent reference, and becomes unusable. The none/true/false singletons
// are immortal; counting them is a no-op.
//
// # Error Indicator
//
// The space carries one raised error at a time, mirroring how a host
// runtime signals failures out-of-band. Conversions (AsInt64, AsFloat64,
// AsComplex, AsString) and Call raise on failure; callers that treat a
// failure as recoverable clear the indicator before returning.
//
// # Thread Safety
//
// A Space and its objects assume a single cooperative owner. No internal
// locking is performed anywhere in this package.
package object
