package cast

import (
	"reflect"
	"unsafe"

	"go.uber.org/zap"

	"github.com/objspace/bridge/errors"
	"github.com/objspace/bridge/object"
)

// castHeap wraps a registered aggregate. By-value sources are boxed onto
// the heap first; Automatic then resolves to Copy, so the wrapper owns a
// value with no live native alias.
func (env *Env) castHeap(p *plan, v reflect.Value, policy Policy, parent *object.Object) (*object.Object, error) {
	if p.byValue {
		boxed := reflect.New(p.rt)
		boxed.Elem().Set(v)
		if policy == Automatic {
			policy = CopyPolicy
		}
		return env.castHeapPtr(p, boxed, policy, parent)
	}
	return env.castHeapPtr(p, v, policy, parent)
}

func (env *Env) castHeapPtr(p *plan, v reflect.Value, policy Policy, parent *object.Object) (*object.Object, error) {
	if v.IsNil() {
		return env.Space.None(), nil
	}
	addr := unsafe.Pointer(v.Pointer())

	// The self-reference exception: a ReferenceInternal cast whose parent
	// already wraps this exact pointer gets an uncached duplicate wrapper.
	// Caching it would canonicalize a wrapper that holds a reference to
	// its own parent for the same value.
	dontCache := policy == ReferenceInternal && parent != nil && wrapsAddr(parent, addr)

	if !dontCache {
		if cached, ok := env.Instances.Lookup(addr); ok {
			return cached.IncRef(), nil
		}
	}

	if p.desc == nil {
		Logger().Warn("cast of unregistered type",
			zap.String("go_type", v.Type().Elem().String()),
		)
		return nil, errors.Unregistered(errors.PhaseCast, v.Type().Elem().String())
	}

	obj := env.Space.NewInstance(p.desc.Type, v.Interface(), addr)
	inst := obj.Instance()

	if policy == Automatic {
		policy = TakeOwnership
	}
	switch policy {
	case CopyPolicy:
		if p.desc.Copy == nil {
			// The wrapper aliases the caller's value here; it must die
			// without freeing it.
			inst.Owned = false
			obj.DecRef()
			return nil, errors.NonCopyable(v.Type().Elem().String())
		}
		fresh := p.desc.Copy(v.Interface())
		inst.Ptr = fresh
		inst.Addr = unsafe.Pointer(reflect.ValueOf(fresh).Pointer())
	case Reference:
		inst.Owned = false
	case ReferenceInternal:
		inst.Owned = false
		inst.Parent = parent.IncRef()
	case TakeOwnership:
		// Owned since construction.
	}

	if p.desc.HolderInit != nil {
		p.desc.HolderInit(obj)
	}
	if !dontCache {
		env.Instances.Insert(inst.Addr, obj)
	}
	return obj, nil
}

func wrapsAddr(parent *object.Object, addr unsafe.Pointer) bool {
	inst := parent.Instance()
	return inst != nil && inst.Addr == addr
}

// ptrType is the Go pointer type a heap plan binds: *T for a by-value
// plan over T, the plan's own type for pointer plans.
func (p *plan) ptrType() reflect.Type {
	if p.byValue {
		return reflect.PointerTo(p.rt)
	}
	return p.rt
}

// acquireHeap resolves src to a native pointer matching the plan,
// applying registered implicit conversions when convert is set. It
// returns the providing object as a new counted reference together with
// the bound pointer; the provider keeps the native value alive for as
// long as that reference is held.
//
// A conversion result is matched against the target type directly, with
// conversions disabled; conversions never chain.
func (env *Env) acquireHeap(p *plan, src *object.Object, convert bool) (*object.Object, any, bool) {
	if src == nil || p.desc == nil {
		return nil, nil, false
	}
	if inst := src.Instance(); inst != nil && src.Type().IsSubtype(p.desc.Type) {
		if rv := reflect.ValueOf(inst.Ptr); rv.IsValid() && rv.Type().AssignableTo(p.ptrType()) {
			return src.IncRef(), inst.Ptr, true
		}
		// Dynamic subtype whose native pointer has an incompatible Go
		// type; only a conversion can still satisfy the request.
	}
	if !convert {
		return nil, nil, false
	}
	for _, conv := range p.desc.Conversions() {
		tmp := conv(env.Space, src)
		if tmp == nil {
			continue
		}
		// On success prov is tmp itself, carrying the reference that
		// keeps the converted temporary alive past this DecRef.
		prov, ptr, ok := env.acquireHeap(p, tmp, false)
		tmp.DecRef()
		if ok {
			return prov, ptr, true
		}
	}
	return nil, nil, false
}

// loadHeap binds a wrapped native pointer into out. The provider
// reference is dropped immediately: the bound pointer keeps the memory
// reachable for the garbage collector, though a registered destructor may
// already run when the wrapper dies. Holders keep the reference instead.
func (env *Env) loadHeap(p *plan, src *object.Object, out reflect.Value, convert bool) bool {
	prov, ptr, ok := env.acquireHeap(p, src, convert)
	if !ok {
		return false
	}
	rv := reflect.ValueOf(ptr)
	if p.byValue {
		out.Set(rv.Elem())
	} else {
		out.Set(rv)
	}
	prov.DecRef()
	return true
}
