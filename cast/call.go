package cast

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/objspace/bridge/errors"
	"github.com/objspace/bridge/object"
)

// Call marshals native arguments and invokes a dynamic callable,
// returning a new reference to the raw dynamic result. Argument
// marshalling is atomic: the first failing cast releases every object
// already produced for this call and the callable is never invoked.
func Call(env *Env, callable *object.Object, args ...any) (*object.Object, error) {
	if callable == nil || callable.Kind() != object.KindFunc {
		return nil, errors.NotCallable(objTypeName(callable))
	}

	objs := make([]*object.Object, len(args))
	for i, arg := range args {
		obj, err := CastValue(env, arg, Automatic, nil)
		if err != nil {
			for _, produced := range objs[:i] {
				produced.DecRef()
			}
			return nil, errors.BadArgument(i, goTypeName(arg), err)
		}
		objs[i] = obj
	}

	tupObj := env.Space.NewTuple(len(objs))
	tup := tupObj.Tuple()
	for i, obj := range objs {
		tup.Set(i, obj)
		obj.DecRef()
	}

	Logger().Debug("invoking callable",
		zap.String("func", callable.FuncName()),
		zap.Int("args", len(args)),
	)

	result, err := env.Space.Call(callable, tupObj)
	tupObj.DecRef()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func goTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

func objTypeName(o *object.Object) string {
	if o == nil {
		return "nil"
	}
	return o.Type().Name
}
