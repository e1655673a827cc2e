package cast

import (
	"fmt"
	"reflect"

	"github.com/objspace/bridge/errors"
	"github.com/objspace/bridge/object"
)

// Apply invokes a native Go function with arguments loaded from a dynamic
// tuple and casts its results back into the object space. Parameter loads
// follow Load's rules, with convert enabling implicit conversions; a
// failing load is fatal here, not recoverable, since the caller committed
// to this exact function. Results: none yields the none singleton, a
// trailing error result propagates as the call's error, one value casts
// directly and several become a tuple.
//
// *object.Object parameters are loaned to the callee for the duration of
// the call; the callee takes its own reference to retain one. References
// inside loaded containers transfer to the callee outright.
func Apply(env *Env, fn any, args *object.Object, convert bool) (*object.Object, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, errors.NotCallable(goTypeName(fn))
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, errors.Unsupported(errors.PhaseCall, "variadic function "+ft.String())
	}

	tup := args.Tuple()
	if tup == nil {
		return nil, errors.New(errors.PhaseCall, errors.KindTypeMismatch).
			ObjType(objTypeName(args)).
			Detail("arguments must be a tuple").
			Build()
	}
	if tup.Len() != ft.NumIn() {
		return nil, errors.Arity(errors.PhaseCall, ft.NumIn(), tup.Len())
	}

	in := make([]reflect.Value, ft.NumIn())
	var loaned []*object.Object
	release := func() {
		for _, o := range loaned {
			o.DecRef()
		}
	}
	for i := range in {
		pv := reflect.New(ft.In(i))
		if !LoadValue(env, tup.Get(i), pv.Interface(), convert) {
			release()
			return nil, errors.New(errors.PhaseCall, errors.KindBadArgument).
				Path(fmt.Sprintf("arg[%d]", i)).
				GoType(ft.In(i).String()).
				ObjType(objTypeName(tup.Get(i))).
				Detail("cannot load argument into the native parameter type").
				Build()
		}
		in[i] = pv.Elem()
		if ft.In(i) == objectPtrType {
			loaned = append(loaned, pv.Elem().Interface().(*object.Object))
		}
	}

	out := fv.Call(in)

	// Trailing error result is the native spelling of a failing call.
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if !out[n-1].IsNil() {
			release()
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}

	result, err := env.castResults(out)
	release()
	return result, err
}

func (env *Env) castResults(out []reflect.Value) (*object.Object, error) {
	switch len(out) {
	case 0:
		return env.Space.None(), nil
	case 1:
		return env.castResult(out[0])
	default:
		tupObj := env.Space.NewTuple(len(out))
		tup := tupObj.Tuple()
		for i, rv := range out {
			obj, err := env.castResult(rv)
			if err != nil {
				tupObj.DecRef()
				return nil, err
			}
			tup.Set(i, obj)
			obj.DecRef()
		}
		return tupObj, nil
	}
}

func (env *Env) castResult(rv reflect.Value) (*object.Object, error) {
	obj, err := CastValue(env, rv.Interface(), Automatic, nil)
	if err != nil {
		return nil, errors.BadResult(rv.Type().String(), err)
	}
	return obj, nil
}
