package object

import "unsafe"

// Instance is the payload of an object wrapping a native aggregate value.
//
// Ptr holds the native pointer (a *T boxed as any); Addr is the same
// pointer as the identity key used by caches. Owned marks whether this
// object frees the value on destruction: when set, the finalizer runs
// exactly once with Ptr as the object is destroyed. Free, when non-nil,
// is that finalizer; otherwise the type's Finalizer applies. Parent is an
// optional counted back-reference tying this object's lifetime to an
// enclosing one; it is released after the finalizer runs.
type Instance struct {
	Ptr    any
	Addr   unsafe.Pointer
	Owned  bool
	Parent *Object
	Free   func(any)
}

// Instance returns the native-instance payload, or nil for any other kind.
func (o *Object) Instance() *Instance {
	if o == nil || o.Kind() != KindInstance {
		return nil
	}
	return o.data.(*Instance)
}
