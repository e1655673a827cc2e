// Package bridge provides bidirectional value marshalling between native Go
// values and a reference-counted, dynamically-typed object space.
//
// The library converts Go primitives, strings, slices, maps, tuples, and
// registered heap-allocated aggregate types into object-space values and
// back, preserving object identity across round trips and resolving who
// owns the native value at every crossing.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	bridge/              Root package with the shared ownership Policy type
//	├── object/          Reference-counted object space (values, types, space)
//	├── registry/        Type registry and instance identity cache
//	├── cast/            Casters: load/cast for scalars, strings, containers,
//	│                    tuples, registered aggregates, holders; call marshalling
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Register a Go type and move values across the boundary:
//
//	space := object.NewSpace()
//	env := cast.NewEnv(space)
//
//	_, err := registry.Register[Point](env.Types, space, "Point")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	obj, err := cast.Cast(env, &Point{X: 1, Y: 2}, bridge.Reference, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obj.DecRef()
//
//	p, ok := cast.Load[*Point](env, obj, true)
//	fmt.Println(p, ok) // same pointer, true
//
// # Type Coverage
//
// The caster set covers:
//
//   - Primitives: bool, int8-int64, uint8-uint64, float32, float64,
//     complex64, complex128, string, cast.Char, cast.Wide
//   - Compound: []T, map[K]V, unregistered structs as fixed-arity tuples,
//     cast.Pair[A, B]
//   - Registered aggregates: *T and T for any type registered with
//     registry.Register, with ownership resolved per bridge.Policy
//   - Passthrough: *object.Object moves across unchanged
//
// # Ownership Policies
//
// Every cast of a registered aggregate resolves an ownership policy:
//
//	Automatic         take_ownership for pointers, copy for by-value casts
//	Copy              the object owns a fresh copy of the value
//	Reference         the object never frees the value
//	ReferenceInternal like Reference, plus a counted reference to a parent
//	TakeOwnership     the object owns the existing pointer outright
//
// # Thread Safety
//
// The object space, registries, and casters assume a single cooperative
// owner: all mutation happens on one goroutine, or access must be
// synchronized externally. No internal locking is performed.
package bridge
