package cast

import (
	"reflect"

	"github.com/objspace/bridge/object"
)

// Holder keeps a loaded native pointer alive by retaining a counted
// reference to the dynamic object providing it. A plain pointer load
// drops that reference immediately; a holder is the same loan with an
// explicit term ending at Release.
type Holder[T any] struct {
	ptr *T
	obj *object.Object
}

// LoadHolder resolves src to a *T under the same matching and conversion
// rules as Load, but keeps the reference to the providing object. T must
// be a registered aggregate type; any failure returns ok=false with the
// space's error indicator cleared.
func LoadHolder[T any](env *Env, src *object.Object, convert bool) (Holder[T], bool) {
	p, err := env.compiler.planFor(reflect.TypeOf((*T)(nil)))
	if err != nil || p.kind != KindHeap {
		env.Space.Clear()
		return Holder[T]{}, false
	}
	prov, ptr, ok := env.acquireHeap(p, src, convert)
	if !ok {
		env.Space.Clear()
		return Holder[T]{}, false
	}
	tp, ok := ptr.(*T)
	if !ok {
		prov.DecRef()
		return Holder[T]{}, false
	}
	return Holder[T]{ptr: tp, obj: prov}, true
}

// Valid reports whether the holder carries a live reference.
func (h Holder[T]) Valid() bool {
	return h.obj != nil
}

// Get returns the held pointer. Valid until Release.
func (h Holder[T]) Get() *T {
	return h.ptr
}

// Object returns the providing object as a borrowed reference.
func (h Holder[T]) Object() *object.Object {
	return h.obj
}

// Release drops the holder's reference; the pointer must not be used
// afterwards. Safe on a zero holder and idempotent.
func (h *Holder[T]) Release() {
	h.obj.DecRef()
	h.obj = nil
	h.ptr = nil
}
