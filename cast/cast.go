package cast

import (
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/objspace/bridge/errors"
	"github.com/objspace/bridge/object"
)

// Cast converts a native value into a dynamic object and returns a new
// counted reference. policy governs ownership for aggregate types; parent
// only matters for ReferenceInternal. A nil pointer casts to the none
// singleton. Failures here are fatal: an unregistered aggregate type or a
// copy of a non-copyable value is a caller bug, not input-shape mismatch.
func Cast[T any](env *Env, v T, policy Policy, parent *object.Object) (*object.Object, error) {
	rv := reflect.ValueOf(&v).Elem()
	p, err := env.compiler.planFor(rv.Type())
	if err != nil {
		return nil, err
	}
	return env.castPlan(p, rv, policy, parent)
}

// CastValue is Cast for values already boxed in an interface. A nil
// interface casts to none.
func CastValue(env *Env, v any, policy Policy, parent *object.Object) (*object.Object, error) {
	if v == nil {
		return env.Space.None(), nil
	}
	rv := reflect.ValueOf(v)
	p, err := env.compiler.planFor(rv.Type())
	if err != nil {
		return nil, err
	}
	return env.castPlan(p, rv, policy, parent)
}

func (env *Env) castPlan(p *plan, v reflect.Value, policy Policy, parent *object.Object) (*object.Object, error) {
	switch p.kind {
	case KindBool:
		return env.Space.Bool(v.Bool()), nil

	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return env.Space.NewInt(v.Int()), nil

	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, errors.Overflow(errors.PhaseCast, u, p.rt.String())
		}
		return env.Space.NewInt(int64(u)), nil

	case KindFloat32, KindFloat64:
		return env.Space.NewFloat(v.Float()), nil

	case KindComplex64, KindComplex128:
		return env.Space.NewComplex(v.Complex()), nil

	case KindString:
		return env.castString(v.String())

	case KindChar:
		r := rune(v.Int())
		if !utf8.ValidRune(r) {
			return nil, errors.InvalidChar(errors.PhaseCast, nil, r)
		}
		return env.castString(string(r))

	case KindWide:
		runes := []rune(v.Interface().(Wide))
		for _, r := range runes {
			if !utf8.ValidRune(r) {
				return nil, errors.InvalidChar(errors.PhaseCast, nil, r)
			}
		}
		return env.castString(string(runes))

	case KindObject:
		obj, _ := v.Interface().(*object.Object)
		if obj == nil {
			return env.Space.None(), nil
		}
		return obj.IncRef(), nil

	case KindSlice:
		return env.castSlice(p, v, policy, parent)

	case KindMap:
		return env.castMap(p, v, policy, parent)

	case KindTuple:
		return env.castTuple(p, v, policy, parent)

	case KindHeap:
		return env.castHeap(p, v, policy, parent)

	default:
		return nil, errors.Unsupported(errors.PhaseCast, p.rt.String())
	}
}

func (env *Env) castString(s string) (*object.Object, error) {
	obj, err := env.Space.NewString(s)
	if err != nil {
		return nil, errors.InvalidUTF8(errors.PhaseCast, nil, []byte(s))
	}
	return obj, nil
}

// castSlice fails fast: the first failing element releases the partial
// list and every element already appended to it.
func (env *Env) castSlice(p *plan, v reflect.Value, policy Policy, parent *object.Object) (*object.Object, error) {
	n := v.Len()
	listObj := env.Space.NewList(n)
	list := listObj.List()
	for i := 0; i < n; i++ {
		el, err := env.castPlan(p.elem, v.Index(i), policy, parent)
		if err != nil {
			listObj.DecRef()
			return nil, err
		}
		list.Append(el)
		el.DecRef()
	}
	return listObj, nil
}

func (env *Env) castMap(p *plan, v reflect.Value, policy Policy, parent *object.Object) (*object.Object, error) {
	dictObj := env.Space.NewDict()
	dict := dictObj.Dict()
	iter := v.MapRange()
	for iter.Next() {
		kObj, err := env.castPlan(p.key, iter.Key(), policy, parent)
		if err != nil {
			dictObj.DecRef()
			return nil, err
		}
		vObj, err := env.castPlan(p.val, iter.Value(), policy, parent)
		if err != nil {
			kObj.DecRef()
			dictObj.DecRef()
			return nil, err
		}
		err = dict.Set(kObj, vObj)
		kObj.DecRef()
		vObj.DecRef()
		if err != nil {
			dictObj.DecRef()
			return nil, errors.Wrap(errors.PhaseCast, errors.KindUnhashable, err, "map key is not hashable")
		}
	}
	return dictObj, nil
}

// castTuple converts every field before checking for failure, then
// assembles the tuple only when all succeeded.
func (env *Env) castTuple(p *plan, v reflect.Value, policy Policy, parent *object.Object) (*object.Object, error) {
	n := len(p.fields)
	elems := make([]*object.Object, n)
	var firstErr error
	for i, f := range p.fields {
		el, err := env.castPlan(f, v.Field(i), policy, parent)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		elems[i] = el
	}
	if firstErr != nil {
		for _, el := range elems {
			el.DecRef()
		}
		return nil, firstErr
	}
	tupObj := env.Space.NewTuple(n)
	tup := tupObj.Tuple()
	for i, el := range elems {
		tup.Set(i, el)
		el.DecRef()
	}
	return tupObj, nil
}
