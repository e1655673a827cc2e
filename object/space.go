package object

import (
	"fmt"
	"unicode/utf8"
	"unsafe"
)

// Space is an object space: the allocation context, singletons, and raised
// error indicator shared by a family of objects. Spaces are explicitly
// constructed and passed around; there is no ambient global space.
//
// A space assumes a single cooperative owner. No internal locking is
// performed; concurrent mutation from parallel goroutines without external
// synchronization is unsupported.
type Space struct {
	noneType    *Type
	boolType    *Type
	intType     *Type
	floatType   *Type
	complexType *Type
	strType     *Type
	listType    *Type
	tupleType   *Type
	dictType    *Type
	funcType    *Type

	none     *Object
	trueObj  *Object
	falseObj *Object

	raised       error
	releaseHooks []func(*Object)
}

// NewSpace creates an empty object space with its builtin types and
// immortal none/true/false singletons.
func NewSpace() *Space {
	s := &Space{
		noneType:    &Type{Name: "none", kind: KindNone},
		boolType:    &Type{Name: "bool", kind: KindBool},
		intType:     &Type{Name: "int", kind: KindInt},
		floatType:   &Type{Name: "float", kind: KindFloat},
		complexType: &Type{Name: "complex", kind: KindComplex},
		strType:     &Type{Name: "str", kind: KindStr},
		listType:    &Type{Name: "list", kind: KindList},
		tupleType:   &Type{Name: "tuple", kind: KindTuple},
		dictType:    &Type{Name: "dict", kind: KindDict},
		funcType:    &Type{Name: "func", kind: KindFunc},
	}
	s.none = &Object{space: s, typ: s.noneType, refs: 1, immortal: true}
	s.trueObj = &Object{space: s, typ: s.boolType, refs: 1, immortal: true, data: true}
	s.falseObj = &Object{space: s, typ: s.boolType, refs: 1, immortal: true, data: false}
	return s
}

// None returns the none singleton.
func (s *Space) None() *Object { return s.none }

// True returns the true singleton.
func (s *Space) True() *Object { return s.trueObj }

// False returns the false singleton.
func (s *Space) False() *Object { return s.falseObj }

// Bool returns the singleton for the given truth value.
func (s *Space) Bool(v bool) *Object {
	if v {
		return s.trueObj
	}
	return s.falseObj
}

// OnRelease registers a hook invoked at the start of every object
// destruction, before children are released. Hooks cannot be removed.
func (s *Space) OnRelease(hook func(*Object)) {
	s.releaseHooks = append(s.releaseHooks, hook)
}

// Raise sets the space's error indicator, replacing any prior error.
func (s *Space) Raise(err error) {
	s.raised = err
}

// ErrOccurred reports whether an error is currently raised.
func (s *Space) ErrOccurred() bool {
	return s.raised != nil
}

// Err returns the currently raised error without clearing it.
func (s *Space) Err() error {
	return s.raised
}

// Clear drops any raised error.
func (s *Space) Clear() {
	s.raised = nil
}

// Take returns the raised error and clears the indicator.
func (s *Space) Take() error {
	err := s.raised
	s.raised = nil
	return err
}

// NewType creates a dynamic type for registered aggregate instances.
// base may be nil.
func (s *Space) NewType(name string, base *Type) *Type {
	return &Type{Name: name, Base: base, kind: KindInstance}
}

// NewInt allocates an integer object.
func (s *Space) NewInt(v int64) *Object {
	return &Object{space: s, typ: s.intType, refs: 1, data: v}
}

// NewFloat allocates a float object.
func (s *Space) NewFloat(v float64) *Object {
	return &Object{space: s, typ: s.floatType, refs: 1, data: v}
}

// NewComplex allocates a complex object.
func (s *Space) NewComplex(v complex128) *Object {
	return &Object{space: s, typ: s.complexType, refs: 1, data: v}
}

// NewString allocates a string object. Object-space strings are UTF-8 by
// construction; undecodable input is rejected.
func (s *Space) NewString(v string) (*Object, error) {
	if !utf8.ValidString(v) {
		return nil, fmt.Errorf("string is not valid UTF-8")
	}
	return &Object{space: s, typ: s.strType, refs: 1, data: v}, nil
}

// NewList allocates an empty list with the given capacity.
func (s *Space) NewList(capacity int) *Object {
	return &Object{space: s, typ: s.listType, refs: 1, data: &listData{items: make([]*Object, 0, capacity)}}
}

// NewTuple allocates a tuple of fixed arity with unset slots.
func (s *Space) NewTuple(n int) *Object {
	return &Object{space: s, typ: s.tupleType, refs: 1, data: &tupleData{items: make([]*Object, n)}}
}

// NewDict allocates an empty dict.
func (s *Space) NewDict() *Object {
	return &Object{space: s, typ: s.dictType, refs: 1, data: &dictData{index: make(map[dictKey]int)}}
}

// FuncImpl is the implementation of a host callable. args is always a
// tuple object. The returned object is a new reference.
type FuncImpl func(s *Space, args *Object) (*Object, error)

// NewFunc allocates a callable object around fn.
func (s *Space) NewFunc(name string, fn FuncImpl) *Object {
	return &Object{space: s, typ: s.funcType, refs: 1, data: &funcData{name: name, fn: fn}}
}

// NewInstance allocates an instance of a registered dynamic type wrapping
// the native pointer ptr with identity addr. The new instance owns the
// pointer and has no parent; callers adjust ownership afterwards.
func (s *Space) NewInstance(t *Type, ptr any, addr unsafe.Pointer) *Object {
	return &Object{space: s, typ: t, refs: 1, data: &Instance{Ptr: ptr, Addr: addr, Owned: true}}
}

// AsInt64 converts an integer object to int64. Any other kind raises on
// the space and returns the error.
func (s *Space) AsInt64(o *Object) (int64, error) {
	if o != nil && o.Kind() == KindInt {
		return o.data.(int64), nil
	}
	err := fmt.Errorf("%s is not an integer", kindName(o))
	s.Raise(err)
	return -1, err
}

// AsFloat64 converts a float or integer object to float64, following the
// numeric conversion protocol. Other kinds raise and fail.
func (s *Space) AsFloat64(o *Object) (float64, error) {
	if o != nil {
		switch o.Kind() {
		case KindFloat:
			return o.data.(float64), nil
		case KindInt:
			return float64(o.data.(int64)), nil
		}
	}
	err := fmt.Errorf("%s is not a number", kindName(o))
	s.Raise(err)
	return -1, err
}

// AsComplex converts a complex, float, or integer object to complex128.
// Other kinds raise and fail.
func (s *Space) AsComplex(o *Object) (complex128, error) {
	if o != nil {
		switch o.Kind() {
		case KindComplex:
			return o.data.(complex128), nil
		case KindFloat:
			return complex(o.data.(float64), 0), nil
		case KindInt:
			return complex(float64(o.data.(int64)), 0), nil
		}
	}
	err := fmt.Errorf("%s is not a complex number", kindName(o))
	s.Raise(err)
	return -1, err
}

// AsString converts a string object to its Go string. Other kinds raise
// and fail.
func (s *Space) AsString(o *Object) (string, error) {
	if o != nil && o.Kind() == KindStr {
		return o.data.(string), nil
	}
	err := fmt.Errorf("%s is not a string", kindName(o))
	s.Raise(err)
	return "", err
}

// Call invokes a callable object with a tuple of positional arguments and
// returns a new reference to the result. A non-callable target or a
// failing implementation raises on the space and returns the error.
func (s *Space) Call(callable, args *Object) (*Object, error) {
	if callable == nil || callable.Kind() != KindFunc {
		err := fmt.Errorf("%s is not callable", kindName(callable))
		s.Raise(err)
		return nil, err
	}
	if args == nil || args.Kind() != KindTuple {
		err := fmt.Errorf("call arguments must be a tuple, got %s", kindName(args))
		s.Raise(err)
		return nil, err
	}
	fd := callable.data.(*funcData)
	result, err := fd.fn(s, args)
	if err != nil {
		s.Raise(err)
		return nil, err
	}
	if result == nil {
		result = s.none
	}
	return result, nil
}

func kindName(o *Object) string {
	if o == nil {
		return "nil"
	}
	return o.Kind().String()
}

type funcData struct {
	name string
	fn   FuncImpl
}

// FuncName returns a callable's name, or empty for non-callables.
func (o *Object) FuncName() string {
	if o.Kind() != KindFunc {
		return ""
	}
	return o.data.(*funcData).name
}
