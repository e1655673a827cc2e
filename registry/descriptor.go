package registry

import "github.com/objspace/bridge/object"

// Conversion attempts to transform a dynamic value of a foreign type into
// a new dynamic value of the target registered type. It returns a new
// reference on success and nil when the conversion does not apply.
// Conversions never chain: the result is checked against the target type
// directly, not fed into further conversions.
type Conversion func(s *object.Space, src *object.Object) *object.Object

// Descriptor describes one registered native aggregate type. Created once
// at registration and immutable afterwards, except for the ordered
// conversion list which only ever grows.
type Descriptor struct {
	Identity Identity
	Name     string
	Type     *object.Type

	// HolderInit runs once after an instance object is constructed by a
	// cast. May be nil.
	HolderInit func(*object.Object)

	// Copy produces a fresh heap copy of the value behind a *T. A nil
	// Copy marks the type non-copyable; copy-policy casts then fail.
	Copy func(any) any

	// Free destroys an owned native value when its wrapper is destroyed.
	// Register mirrors it onto Type.Free so instances run it no matter how
	// they were constructed. May be nil when the value needs no cleanup
	// beyond garbage collection.
	Free func(any)

	conversions []Conversion
}

// Conversions returns the implicit conversions in registration order. The
// returned slice is shared; callers must not mutate it.
func (d *Descriptor) Conversions() []Conversion {
	return d.conversions
}
