package registry

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/objspace/bridge/object"
)

// InstanceRegistry is the identity cache: a mapping from a live native
// pointer to the dynamic object currently wrapping it, giving casts
// at-most-one-wrapper-per-pointer semantics.
//
// Entries hold borrowed references; the cache must never keep a wrapper
// alive. Entries are inserted on first cast of a pointer and removed as
// the wrapper is destroyed; Watch wires the removal to a space.
type InstanceRegistry struct {
	entries map[unsafe.Pointer]*object.Object
}

// NewInstanceRegistry creates an empty identity cache.
func NewInstanceRegistry() *InstanceRegistry {
	return &InstanceRegistry{
		entries: make(map[unsafe.Pointer]*object.Object),
	}
}

// Insert records obj as the wrapper for addr.
func (r *InstanceRegistry) Insert(addr unsafe.Pointer, obj *object.Object) {
	r.entries[addr] = obj
	Logger().Debug("instance cached", zap.Uintptr("addr", uintptr(addr)))
}

// Lookup returns the wrapper for addr as a borrowed reference.
func (r *InstanceRegistry) Lookup(addr unsafe.Pointer) (*object.Object, bool) {
	obj, ok := r.entries[addr]
	return obj, ok
}

// Remove evicts the entry for addr, but only when it maps to obj. An
// uncached duplicate wrapper (the self-reference exception) dying must
// not evict the canonical entry for the same address.
func (r *InstanceRegistry) Remove(addr unsafe.Pointer, obj *object.Object) bool {
	cur, ok := r.entries[addr]
	if !ok || cur != obj {
		return false
	}
	delete(r.entries, addr)
	Logger().Debug("instance evicted", zap.Uintptr("addr", uintptr(addr)))
	return true
}

// Len returns the number of cached wrappers.
func (r *InstanceRegistry) Len() int {
	return len(r.entries)
}

// Watch installs the space release hook that evicts a wrapper's entry as
// the wrapper is destroyed. Without eviction, a freed pointer's stale
// entry could be returned for an unrelated allocation reusing the address.
func (r *InstanceRegistry) Watch(s *object.Space) {
	s.OnRelease(func(o *object.Object) {
		inst := o.Instance()
		if inst == nil {
			return
		}
		r.Remove(inst.Addr, o)
	})
}
