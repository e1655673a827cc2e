package cast

import (
	"reflect"
	"strings"

	"github.com/objspace/bridge/errors"
	"github.com/objspace/bridge/registry"
)

// plan is one node of a compiled caster tree. Terminal kinds carry only
// the type and display name; containers reference element plans; heap
// nodes reference the registered descriptor, or nil for pointers to
// unregistered types (which load as false and cast as a fatal error).
type plan struct {
	kind    Kind
	rt      reflect.Type
	name    string
	elem    *plan
	key     *plan
	val     *plan
	fields  []*plan
	desc    *registry.Descriptor
	byValue bool
}

type compiler struct {
	types      *registry.TypeRegistry
	cache      map[reflect.Type]*plan
	inProgress map[reflect.Type]bool
	generation uint64
}

func newCompiler(types *registry.TypeRegistry) *compiler {
	return &compiler{
		types:      types,
		cache:      make(map[reflect.Type]*plan),
		inProgress: make(map[reflect.Type]bool),
	}
}

// planFor returns the plan for a native type, rebuilding the cache when
// the registry has changed since it was filled. Registering a type turns
// a struct's tuple plan into a heap plan, so stale plans must not survive
// registration.
func (c *compiler) planFor(rt reflect.Type) (*plan, error) {
	if gen := c.types.Generation(); gen != c.generation {
		clear(c.cache)
		c.generation = gen
	}
	if p, ok := c.cache[rt]; ok {
		return p, nil
	}
	p, err := c.compile(rt, nil)
	if err != nil {
		return nil, err
	}
	c.cache[rt] = p
	return p, nil
}

func (c *compiler) compile(rt reflect.Type, path []string) (*plan, error) {
	if rt == nil {
		return nil, errors.NilValue(errors.PhaseCompile, "native type is nil")
	}

	// Exact types first: distinct named types would otherwise fall into
	// the generic kind switch.
	switch rt {
	case objectPtrType:
		return &plan{kind: KindObject, rt: rt, name: "object"}, nil
	case charType:
		return &plan{kind: KindChar, rt: rt, name: "str"}, nil
	case wideType:
		return &plan{kind: KindWide, rt: rt, name: "wstr"}, nil
	}

	if desc, ok := c.types.LookupReflect(rt); ok {
		return &plan{kind: KindHeap, rt: rt, name: desc.Name, desc: desc, byValue: true}, nil
	}

	if rt.Kind() == reflect.Ptr {
		desc, _ := c.types.LookupReflect(rt.Elem())
		name := rt.String()
		if desc != nil {
			name = desc.Name
		}
		return &plan{kind: KindHeap, rt: rt, name: name, desc: desc}, nil
	}

	switch rt.Kind() {
	case reflect.Bool:
		return &plan{kind: KindBool, rt: rt, name: "bool"}, nil
	case reflect.Int:
		return &plan{kind: KindInt, rt: rt, name: "int"}, nil
	case reflect.Int8:
		return &plan{kind: KindInt8, rt: rt, name: "int8"}, nil
	case reflect.Int16:
		return &plan{kind: KindInt16, rt: rt, name: "int16"}, nil
	case reflect.Int32:
		return &plan{kind: KindInt32, rt: rt, name: "int32"}, nil
	case reflect.Int64:
		return &plan{kind: KindInt64, rt: rt, name: "int64"}, nil
	case reflect.Uint:
		return &plan{kind: KindUint, rt: rt, name: "uint"}, nil
	case reflect.Uint8:
		return &plan{kind: KindUint8, rt: rt, name: "uint8"}, nil
	case reflect.Uint16:
		return &plan{kind: KindUint16, rt: rt, name: "uint16"}, nil
	case reflect.Uint32:
		return &plan{kind: KindUint32, rt: rt, name: "uint32"}, nil
	case reflect.Uint64:
		return &plan{kind: KindUint64, rt: rt, name: "uint64"}, nil
	case reflect.Float32:
		return &plan{kind: KindFloat32, rt: rt, name: "float32"}, nil
	case reflect.Float64:
		return &plan{kind: KindFloat64, rt: rt, name: "float64"}, nil
	case reflect.Complex64:
		return &plan{kind: KindComplex64, rt: rt, name: "complex64"}, nil
	case reflect.Complex128:
		return &plan{kind: KindComplex128, rt: rt, name: "complex128"}, nil
	case reflect.String:
		return &plan{kind: KindString, rt: rt, name: "str"}, nil
	case reflect.Slice:
		return c.compileSlice(rt, path)
	case reflect.Map:
		return c.compileMap(rt, path)
	case reflect.Struct:
		return c.compileTuple(rt, path)
	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(rt.String()).
			Detail("unsupported native type kind %s", rt.Kind()).
			Build()
	}
}

func (c *compiler) compileSlice(rt reflect.Type, path []string) (*plan, error) {
	if err := c.enter(rt, path); err != nil {
		return nil, err
	}
	defer delete(c.inProgress, rt)

	elem, err := c.compile(rt.Elem(), append(path, "elem"))
	if err != nil {
		return nil, err
	}
	return &plan{
		kind: KindSlice,
		rt:   rt,
		name: "list<" + elem.name + ">",
		elem: elem,
	}, nil
}

func (c *compiler) compileMap(rt reflect.Type, path []string) (*plan, error) {
	if err := c.enter(rt, path); err != nil {
		return nil, err
	}
	defer delete(c.inProgress, rt)

	key, err := c.compile(rt.Key(), append(path, "key"))
	if err != nil {
		return nil, err
	}
	if !hashableKind(key.kind) {
		return nil, errors.New(errors.PhaseCompile, errors.KindUnhashable).
			Path(path...).
			GoType(rt.Key().String()).
			Detail("map keys must marshal to a hashable object kind").
			Build()
	}
	val, err := c.compile(rt.Elem(), append(path, "value"))
	if err != nil {
		return nil, err
	}
	return &plan{
		kind: KindMap,
		rt:   rt,
		name: "dict<" + key.name + ", " + val.name + ">",
		key:  key,
		val:  val,
	}, nil
}

// compileTuple maps an unregistered struct to a fixed-arity tuple, one
// element per field in declaration order.
func (c *compiler) compileTuple(rt reflect.Type, path []string) (*plan, error) {
	if err := c.enter(rt, path); err != nil {
		return nil, err
	}
	defer delete(c.inProgress, rt)

	fields := make([]*plan, 0, rt.NumField())
	names := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
				Path(append(path, f.Name)...).
				GoType(rt.String()).
				Detail("tuple struct fields must be exported").
				Build()
		}
		fp, err := c.compile(f.Type, append(path, f.Name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, fp)
		names = append(names, fp.name)
	}
	return &plan{
		kind:   KindTuple,
		rt:     rt,
		name:   "(" + strings.Join(names, ", ") + ")",
		fields: fields,
	}, nil
}

func (c *compiler) enter(rt reflect.Type, path []string) error {
	if c.inProgress[rt] {
		return errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(rt.String()).
			Detail("recursive native type").
			Build()
	}
	c.inProgress[rt] = true
	return nil
}

func hashableKind(k Kind) bool {
	switch k {
	case KindBool,
		KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64,
		KindString, KindChar:
		return true
	default:
		return false
	}
}

// Name returns the object-space display name for native type T, composed
// recursively for containers and tuples. Unsupported types fall back to
// their Go spelling.
func Name[T any](env *Env) string {
	return NameOf(env, reflect.TypeOf((*T)(nil)).Elem())
}

// NameOf is Name for an already-resolved reflect type.
func NameOf(env *Env, rt reflect.Type) string {
	p, err := env.compiler.planFor(rt)
	if err != nil {
		return rt.String()
	}
	return p.name
}
