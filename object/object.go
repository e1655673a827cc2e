package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the builtin shape of an object-space value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNone
	KindBool
	KindInt
	KindFloat
	KindComplex
	KindStr
	KindList
	KindTuple
	KindDict
	KindFunc
	KindInstance
)

// String returns the kind's object-space spelling.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindFunc:
		return "func"
	case KindInstance:
		return "instance"
	default:
		return "invalid"
	}
}

// Object is a reference-counted, runtime-typed object-space value.
//
// Every constructor returns an object with one reference owned by the
// caller. IncRef and DecRef adjust the count; when it reaches zero the
// object releases its children, runs any instance finalizer, and notifies
// the space's release hooks. Objects are not safe for concurrent use.
type Object struct {
	space    *Space
	typ      *Type
	refs     int64
	immortal bool
	data     any
}

// Space returns the object space this value belongs to.
func (o *Object) Space() *Space {
	return o.space
}

// Type returns the object's dynamic type.
func (o *Object) Type() *Type {
	return o.typ
}

// Kind returns the object's builtin shape.
func (o *Object) Kind() Kind {
	if o == nil || o.typ == nil {
		return KindInvalid
	}
	return o.typ.kind
}

// IsNone reports whether the object is the none singleton.
func (o *Object) IsNone() bool {
	return o != nil && o.Kind() == KindNone
}

// Refs returns the current reference count. Immortal singletons report 1.
func (o *Object) Refs() int64 {
	return o.refs
}

// IncRef increments the reference count and returns the object.
func (o *Object) IncRef() *Object {
	if o == nil || o.immortal {
		return o
	}
	o.refs++
	return o
}

// DecRef decrements the reference count, destroying the object when the
// count reaches zero. Safe to call on nil.
func (o *Object) DecRef() {
	if o == nil || o.immortal {
		return
	}
	o.refs--
	if o.refs == 0 {
		o.destroy()
	}
}

// destroy releases children and notifies the space. Hooks run first so an
// identity cache can still observe the instance payload; the finalizer and
// parent release follow; the payload is dropped last.
func (o *Object) destroy() {
	for _, hook := range o.space.releaseHooks {
		hook(o)
	}

	switch d := o.data.(type) {
	case *listData:
		for _, item := range d.items {
			item.DecRef()
		}
	case *tupleData:
		for _, item := range d.items {
			item.DecRef()
		}
	case *dictData:
		for _, e := range d.entries {
			e.key.DecRef()
			e.value.DecRef()
		}
	case *Instance:
		if d.Owned {
			if d.Free != nil {
				d.Free(d.Ptr)
			} else if free := o.typ.Finalizer(); free != nil {
				free(d.Ptr)
			}
		}
		d.Parent.DecRef()
	}

	o.data = nil
}

// String renders a debug representation of the object.
func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	switch o.Kind() {
	case KindNone:
		return "none"
	case KindBool:
		if o.data.(bool) {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(o.data.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(o.data.(float64), 'g', -1, 64)
	case KindComplex:
		return fmt.Sprintf("%v", o.data.(complex128))
	case KindStr:
		return strconv.Quote(o.data.(string))
	case KindList:
		return renderSeq("[", "]", o.data.(*listData).items)
	case KindTuple:
		return renderSeq("(", ")", o.data.(*tupleData).items)
	case KindDict:
		d := o.data.(*dictData)
		var b strings.Builder
		b.WriteByte('{')
		for i, e := range d.entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.key.String())
			b.WriteString(": ")
			b.WriteString(e.value.String())
		}
		b.WriteByte('}')
		return b.String()
	case KindFunc:
		return fmt.Sprintf("<func %s>", o.data.(*funcData).name)
	case KindInstance:
		return fmt.Sprintf("<%s at %p>", o.typ.Name, o.data.(*Instance).Addr)
	default:
		return "<invalid>"
	}
}

func renderSeq(open, close string, items []*Object) string {
	var b strings.Builder
	b.WriteString(open)
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
	}
	b.WriteString(close)
	return b.String()
}
