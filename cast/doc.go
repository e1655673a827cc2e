// Package cast provides bidirectional marshalling between native Go
// values and dynamic objects.
//
// This package handles conversion in both directions between Go types and
// the reference-counted object model in the object package, using the
// type and instance registries to resolve aggregate types.
//
// # Marshalling Overview
//
//	┌─────────────────────────────────────────────────────────────┐
//	│ Go Value ←→ [Cast / Load] ←→ Dynamic Object (object.Object) │
//	└─────────────────────────────────────────────────────────────┘
//
// Cast produces a dynamic object from a native value; Load binds a
// dynamic object back into a native value. The two directions have
// different failure contracts:
//
//   - Load failure is recoverable: it returns false, leaves no partial
//     result, and clears the space's error indicator.
//   - Cast failure is fatal: unregistered aggregate types and copies of
//     non-copyable values return a structured error.
//
// # Type Coverage
//
//	Native type              Dynamic form
//	─────────────────────────────────────
//	bool                     Bool singleton
//	int8…int64, uint8…uint64 Int (int64 payload, range-checked on load)
//	float32/float64          Float
//	complex64/complex128     Complex
//	string                   Str (UTF-8)
//	Char                     one-rune Str
//	Wide                     Str from a rune slice
//	[]T                      List
//	map[K]V                  Dict (hashable K only)
//	struct (unregistered)    Tuple, one element per exported field
//	struct (registered)      Instance wrapping a native pointer
//	*T (registered)          Instance
//	*object.Object           passed through with an extra reference
//
// # Key Types
//
//	Env        - Space plus registries plus the plan cache
//	Policy     - ownership policy applied when casting aggregates
//	Holder[T]  - loaded pointer that keeps its provider alive
//
// # Cast Flow
//
//  1. compile the native type into a plan (cached per registry generation)
//  2. scalars and containers convert structurally
//  3. registered aggregates consult the instance cache, then wrap the
//     pointer under the requested ownership policy
//
// # Load Flow
//
//  1. compile the destination type into a plan
//  2. scalars range-check through the space conversion protocol
//  3. aggregates bind the wrapped pointer on subtype match, else try each
//     registered implicit conversion in registration order (first match,
//     never chained, disabled while already converting)
//
// # Ownership
//
// Casting a pointer to a registered type applies a Policy:
//
//	Automatic          TakeOwnership, or Copy for by-value sources
//	Copy               wrap a fresh copy; fatal if the type is non-copyable
//	Reference          wrap without owning; no destructor runs
//	ReferenceInternal  Reference plus a counted reference to parent
//	TakeOwnership      wrapper owns the value and frees it on destruction
//
// Each live native pointer has at most one cached wrapper; casting the
// same pointer again returns the cached wrapper with a new reference. The
// one exception is a ReferenceInternal cast whose parent wraps the same
// pointer, which produces an uncached duplicate.
//
// # Thread Safety
//
// Nothing in this package locks. An Env and everything reached through it
// is confined to one goroutine, mirroring the object space's rule.
//
// # Error Handling
//
// Fatal errors use the structured types from the errors package:
//
//	[cast] unregistered_type: Go type main.Widget - type is not registered
//	[call] bad_argument at arg[2]: Go type int32
//
// # Usage Tips
//
//   - Register aggregate types before first use; registration invalidates
//     compiled plans, so plans never go stale but do get rebuilt
//   - Use Holder[T] when a loaded pointer must outlive the source object
//   - Objects returned by Cast and Call are new references; release them
//     with DecRef when done
package cast
