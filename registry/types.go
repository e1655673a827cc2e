package registry

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/objspace/bridge/errors"
)

// TypeRegistry maps native type identities to their descriptors. It is
// populated at startup by the binding layer and read-only from the
// casters' perspective. A generation counter is bumped on every mutation
// so cached caster plans can revalidate before use.
//
// The registry assumes a single cooperative owner; no internal locking.
type TypeRegistry struct {
	byIdentity map[Identity]*Descriptor
	order      []*Descriptor
	generation uint64
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byIdentity: make(map[Identity]*Descriptor),
	}
}

// Insert adds a descriptor. Registering the same identity twice is a
// programmer error and is reported, not recovered.
func (r *TypeRegistry) Insert(d *Descriptor) error {
	if d == nil || !d.Identity.Valid() {
		return errors.NilValue(errors.PhaseRegister, "descriptor has no type identity")
	}
	if prev, exists := r.byIdentity[d.Identity]; exists {
		return errors.Duplicate(d.Identity.String(), prev.Name)
	}
	r.byIdentity[d.Identity] = d
	r.order = append(r.order, d)
	r.generation++

	Logger().Debug("type registered",
		zap.String("go_type", d.Identity.String()),
		zap.String("name", d.Name),
	)
	return nil
}

// Lookup returns the descriptor for an identity. Pure read, no allocation.
func (r *TypeRegistry) Lookup(id Identity) (*Descriptor, bool) {
	d, ok := r.byIdentity[id]
	return d, ok
}

// LookupReflect is Lookup keyed by a reflect type.
func (r *TypeRegistry) LookupReflect(rt reflect.Type) (*Descriptor, bool) {
	return r.Lookup(Identity{rt: rt})
}

// AddConversion appends an implicit conversion to a registered type.
// Conversions are searched in registration order and never removed.
func (r *TypeRegistry) AddConversion(id Identity, conv Conversion) error {
	d, ok := r.byIdentity[id]
	if !ok {
		return errors.Unregistered(errors.PhaseRegister, id.String())
	}
	if conv == nil {
		return errors.NilValue(errors.PhaseRegister, "conversion function is nil")
	}
	d.conversions = append(d.conversions, conv)
	r.generation++
	return nil
}

// Generation returns the mutation counter.
func (r *TypeRegistry) Generation() uint64 {
	return r.generation
}

// Len returns the number of registered types.
func (r *TypeRegistry) Len() int {
	return len(r.byIdentity)
}

// Descriptors returns all descriptors in registration order. The returned
// slice is shared; callers must not mutate it.
func (r *TypeRegistry) Descriptors() []*Descriptor {
	return r.order
}
