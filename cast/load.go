package cast

import (
	"math"
	"reflect"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/objspace/bridge/object"
)

// Load converts a dynamic value into native type T. It returns false,
// with no partial result and any raised space error cleared, when the
// value's runtime type does not match and, with convert enabled, no
// registered implicit conversion produces a match. Loading *object.Object
// binds the value itself with an extra counted reference.
func Load[T any](env *Env, src *object.Object, convert bool) (T, bool) {
	var out T
	if !LoadValue(env, src, &out, convert) {
		var zero T
		return zero, false
	}
	return out, true
}

// LoadValue is Load with the output bound through a pointer. out must be
// a non-nil pointer to the native destination.
func LoadValue(env *Env, src *object.Object, out any, convert bool) bool {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return false
	}
	p, err := env.compiler.planFor(rv.Type().Elem())
	if err != nil {
		Logger().Debug("load target has no caster plan",
			zap.String("go_type", rv.Type().Elem().String()),
			zap.Error(err),
		)
		env.Space.Clear()
		return false
	}
	if env.loadPlan(p, src, rv.Elem(), convert) {
		return true
	}
	// Failed loads are recoverable; a raised conversion error must not
	// leak to the caller.
	env.Space.Clear()
	return false
}

func (env *Env) loadPlan(p *plan, src *object.Object, out reflect.Value, convert bool) bool {
	if src == nil {
		return false
	}

	switch p.kind {
	case KindBool:
		// Only the two singletons; no truthy coercion.
		switch src {
		case env.Space.True():
			out.SetBool(true)
			return true
		case env.Space.False():
			out.SetBool(false)
			return true
		}
		return false

	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return env.loadInt(p, src, out)

	case KindFloat32:
		f, err := env.Space.AsFloat64(src)
		if err != nil {
			return false
		}
		if overflowsFloat32(f) {
			return false
		}
		out.SetFloat(f)
		return true

	case KindFloat64:
		f, err := env.Space.AsFloat64(src)
		if err != nil {
			return false
		}
		out.SetFloat(f)
		return true

	case KindComplex64:
		c, err := env.Space.AsComplex(src)
		if err != nil {
			return false
		}
		if overflowsFloat32(real(c)) || overflowsFloat32(imag(c)) {
			return false
		}
		out.SetComplex(c)
		return true

	case KindComplex128:
		c, err := env.Space.AsComplex(src)
		if err != nil {
			return false
		}
		out.SetComplex(c)
		return true

	case KindString:
		s, err := env.Space.AsString(src)
		if err != nil {
			return false
		}
		out.SetString(s)
		return true

	case KindChar:
		s, err := env.Space.AsString(src)
		if err != nil {
			return false
		}
		if utf8.RuneCountInString(s) != 1 {
			return false
		}
		r, _ := utf8.DecodeRuneInString(s)
		out.SetInt(int64(r))
		return true

	case KindWide:
		s, err := env.Space.AsString(src)
		if err != nil {
			return false
		}
		out.Set(reflect.ValueOf(Wide(s)))
		return true

	case KindObject:
		out.Set(reflect.ValueOf(src.IncRef()))
		return true

	case KindSlice:
		return env.loadSlice(p, src, out, convert)

	case KindMap:
		return env.loadMap(p, src, out, convert)

	case KindTuple:
		return env.loadTuple(p, src, out, convert)

	case KindHeap:
		return env.loadHeap(p, src, out, convert)

	default:
		return false
	}
}

func (env *Env) loadInt(p *plan, src *object.Object, out reflect.Value) bool {
	v, err := env.Space.AsInt64(src)
	if err != nil {
		return false
	}
	switch p.kind {
	case KindInt:
		if int64(int(v)) != v {
			return false
		}
		out.SetInt(v)
	case KindInt8:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return false
		}
		out.SetInt(v)
	case KindInt16:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return false
		}
		out.SetInt(v)
	case KindInt32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return false
		}
		out.SetInt(v)
	case KindInt64:
		out.SetInt(v)
	case KindUint:
		if v < 0 || uint64(v) > uint64(^uint(0)) {
			return false
		}
		out.SetUint(uint64(v))
	case KindUint8:
		if v < 0 || v > math.MaxUint8 {
			return false
		}
		out.SetUint(uint64(v))
	case KindUint16:
		if v < 0 || v > math.MaxUint16 {
			return false
		}
		out.SetUint(uint64(v))
	case KindUint32:
		if v < 0 || v > math.MaxUint32 {
			return false
		}
		out.SetUint(uint64(v))
	case KindUint64:
		if v < 0 {
			return false
		}
		out.SetUint(uint64(v))
	default:
		return false
	}
	return true
}

// loadSlice builds the whole native slice before committing it to out:
// any single element failing fails the whole load with no partial result
// observable.
func (env *Env) loadSlice(p *plan, src *object.Object, out reflect.Value, convert bool) bool {
	list := src.List()
	if list == nil {
		return false
	}
	n := list.Len()
	fresh := reflect.MakeSlice(p.rt, n, n)
	for i := 0; i < n; i++ {
		if !env.loadPlan(p.elem, list.Get(i), fresh.Index(i), convert) {
			return false
		}
	}
	out.Set(fresh)
	return true
}

func (env *Env) loadMap(p *plan, src *object.Object, out reflect.Value, convert bool) bool {
	dict := src.Dict()
	if dict == nil {
		return false
	}
	fresh := reflect.MakeMapWithSize(p.rt, dict.Len())
	for _, item := range dict.Items() {
		kv := reflect.New(p.key.rt).Elem()
		if !env.loadPlan(p.key, item.Key, kv, convert) {
			return false
		}
		vv := reflect.New(p.val.rt).Elem()
		if !env.loadPlan(p.val, item.Value, vv, convert) {
			return false
		}
		fresh.SetMapIndex(kv, vv)
	}
	out.Set(fresh)
	return true
}

// loadTuple requires exact arity; a mismatch is a load failure, not an
// error.
func (env *Env) loadTuple(p *plan, src *object.Object, out reflect.Value, convert bool) bool {
	tup := src.Tuple()
	if tup == nil || tup.Len() != len(p.fields) {
		return false
	}
	fresh := reflect.New(p.rt).Elem()
	for i, f := range p.fields {
		if !env.loadPlan(f, tup.Get(i), fresh.Field(i), convert) {
			return false
		}
	}
	out.Set(fresh)
	return true
}

func overflowsFloat32(f float64) bool {
	return !math.IsInf(f, 0) && (f > math.MaxFloat32 || f < -math.MaxFloat32)
}
