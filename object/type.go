package object

// Type is a dynamic type handle. Builtin kinds get one type each per space;
// registered aggregate types are created through Space.NewType and may name
// a base type, forming a single-inheritance chain.
//
// Free, when set, destroys the native payload of owned instances of the
// type as their wrapper is destroyed. Subtypes inherit it through the base
// chain; Instance.Free overrides it per instance.
type Type struct {
	Name string
	Base *Type
	Free func(any)
	kind Kind
}

// Kind returns the builtin shape instances of this type carry.
func (t *Type) Kind() Kind {
	return t.kind
}

// IsSubtype reports whether t is of, or derives from, the given type.
func (t *Type) IsSubtype(of *Type) bool {
	for cur := t; cur != nil; cur = cur.Base {
		if cur == of {
			return true
		}
	}
	return false
}

// Finalizer returns the destructor owned instances of this type run, taken
// from the nearest type in the base chain that sets one.
func (t *Type) Finalizer() func(any) {
	for cur := t; cur != nil; cur = cur.Base {
		if cur.Free != nil {
			return cur.Free
		}
	}
	return nil
}
