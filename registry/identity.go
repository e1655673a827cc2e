package registry

import "reflect"

// Identity is the stable key identifying a native type for registry
// lookup. Two identities are equal exactly when they name the same Go
// type; Identity is comparable and usable as a map key.
type Identity struct {
	rt reflect.Type
}

// TypeOf returns the identity of T.
func TypeOf[T any]() Identity {
	return Identity{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// IdentityOf wraps an already-resolved reflect type.
func IdentityOf(rt reflect.Type) Identity {
	return Identity{rt: rt}
}

// Reflect returns the underlying reflect type.
func (id Identity) Reflect() reflect.Type {
	return id.rt
}

// Valid reports whether the identity names a type.
func (id Identity) Valid() bool {
	return id.rt != nil
}

// String returns the Go spelling of the identified type.
func (id Identity) String() string {
	if id.rt == nil {
		return "<none>"
	}
	return id.rt.String()
}
