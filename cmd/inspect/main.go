package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/objspace/bridge/cast"
	"github.com/objspace/bridge/object"
	"github.com/objspace/bridge/registry"
)

func main() {
	var (
		callName    = flag.String("call", "", "Function to call (optional)")
		argsStr     = flag.String("args", "", "Arguments (comma-separated; points as x:y, lists as v1:v2:...)")
		list        = flag.Bool("list", false, "List registered types and functions and exit")
		convert     = flag.Bool("convert", true, "Allow implicit conversions when loading arguments")
		verbose     = flag.Bool("v", false, "Verbose marshalling logs")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cast.SetLogger(logger)
		registry.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*convert); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *callName == "" && !*list {
		fmt.Fprintln(os.Stderr, "Usage: inspect -list")
		fmt.Fprintln(os.Stderr, "       inspect -call <name> [-args v1,v2,...]")
		fmt.Fprintln(os.Stderr, "       inspect -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*callName, *argsStr, *convert, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// point is the demo aggregate the inspector registers.
type point struct {
	X float64
	Y float64
}

type demo struct {
	env         *cast.Env
	funcs       []funcInfo
	convertArgs bool
}

type funcInfo struct {
	name   string
	obj    *object.Object
	params []paramInfo
	result string
}

type paramInfo struct {
	name    string
	rt      reflect.Type
	typeStr string
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// bind wraps a native function as a dynamic callable and records its
// display signature.
func (d *demo) bind(name string, fn any, paramNames ...string) {
	env := d.env
	convert := d.convertArgs
	obj := env.Space.NewFunc(name, func(s *object.Space, args *object.Object) (*object.Object, error) {
		return cast.Apply(env, fn, args, convert)
	})

	ft := reflect.TypeOf(fn)
	fi := funcInfo{name: name, obj: obj}
	for i := 0; i < ft.NumIn(); i++ {
		pname := fmt.Sprintf("arg%d", i)
		if i < len(paramNames) && paramNames[i] != "" {
			pname = paramNames[i]
		}
		fi.params = append(fi.params, paramInfo{
			name:    pname,
			rt:      ft.In(i),
			typeStr: cast.NameOf(env, ft.In(i)),
		})
	}
	if n := ft.NumOut(); n > 0 && ft.Out(0) != errType {
		fi.result = cast.NameOf(env, ft.Out(0))
	}
	d.funcs = append(d.funcs, fi)
}

func (d *demo) lookup(name string) (funcInfo, bool) {
	for _, f := range d.funcs {
		if f.name == name {
			return f, true
		}
	}
	return funcInfo{}, false
}

func newDemo(convertArgs bool) (*demo, error) {
	env := cast.NewEnv(object.NewSpace())
	d := &demo{env: env, convertArgs: convertArgs}

	// A 2-tuple of floats converts into a point implicitly.
	var pdesc *registry.Descriptor
	pointFromPair := func(s *object.Space, src *object.Object) *object.Object {
		tup := src.Tuple()
		if tup == nil || tup.Len() != 2 {
			return nil
		}
		x, xerr := s.AsFloat64(tup.Get(0))
		y, yerr := s.AsFloat64(tup.Get(1))
		if xerr != nil || yerr != nil {
			s.Clear()
			return nil
		}
		p := &point{X: x, Y: y}
		return s.NewInstance(pdesc.Type, p, unsafe.Pointer(p))
	}
	pdesc, err := registry.Register[point](env.Types, env.Space, "point",
		registry.WithConversion[point](pointFromPair))
	if err != nil {
		return nil, err
	}

	d.bind("make-point", func(x, y float64) *point {
		return &point{X: x, Y: y}
	}, "x", "y")
	d.bind("norm", func(p *point) float64 {
		return math.Hypot(p.X, p.Y)
	}, "p")
	d.bind("midpoint", func(a, b *point) point {
		return point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	}, "a", "b")
	d.bind("greet", func(name string, times int64) (string, error) {
		if times <= 0 {
			return "", fmt.Errorf("times must be positive, got %d", times)
		}
		return strings.TrimSpace(strings.Repeat("hello "+name+", ", int(times))), nil
	}, "name", "times")
	d.bind("stats", func(values []int64) cast.Pair[int64, float64] {
		var sum int64
		for _, v := range values {
			sum += v
		}
		mean := 0.0
		if len(values) > 0 {
			mean = float64(sum) / float64(len(values))
		}
		return cast.Pair[int64, float64]{First: sum, Second: mean}
	}, "values")
	d.bind("tally", func(counts map[string]int64) string {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
		}
		return strings.Join(parts, " ")
	}, "counts")

	sort.Slice(d.funcs, func(i, j int) bool { return d.funcs[i].name < d.funcs[j].name })
	return d, nil
}

func run(callName, argsStr string, convert, listOnly bool) error {
	d, err := newDemo(convert)
	if err != nil {
		return fmt.Errorf("build demo environment: %w", err)
	}

	fmt.Printf("Registered types: %d\n", d.env.Types.Len())
	for _, desc := range d.env.Types.Descriptors() {
		fmt.Printf("  %s  (Go %s)\n", desc.Name, desc.Identity)
	}

	fmt.Printf("\nFunctions:\n")
	for _, f := range d.funcs {
		fmt.Printf("  %s\n", f.signature())
	}

	if listOnly || callName == "" {
		return nil
	}

	f, ok := d.lookup(callName)
	if !ok {
		return fmt.Errorf("unknown function %q", callName)
	}

	var raw []string
	if argsStr != "" {
		raw = strings.Split(argsStr, ",")
	}
	if len(raw) != len(f.params) {
		return fmt.Errorf("%s takes %d arguments, got %d", f.name, len(f.params), len(raw))
	}
	args := make([]any, len(raw))
	for i, v := range raw {
		parsed, perr := parseArg(strings.TrimSpace(v), f.params[i].rt)
		if perr != nil {
			return fmt.Errorf("argument %s: %w", f.params[i].name, perr)
		}
		args[i] = parsed
	}

	fmt.Printf("\nCalling %s...\n", f.name)
	result, err := cast.Call(d.env, f.obj, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", f.name, err)
	}
	fmt.Printf("Result: %s\n", d.formatResult(result))
	fmt.Printf("Live instances: %d\n", d.env.Instances.Len())
	result.DecRef()
	return nil
}

func (f funcInfo) signature() string {
	params := make([]string, len(f.params))
	for i, p := range f.params {
		params[i] = p.name + ": " + p.typeStr
	}
	sig := f.name + "(" + strings.Join(params, ", ") + ")"
	if f.result != "" {
		sig += " -> " + f.result
	}
	return sig
}

// parseArg turns CLI text into a native argument for the parameter type.
func parseArg(value string, rt reflect.Type) (any, error) {
	switch rt {
	case reflect.TypeOf((*point)(nil)):
		return parsePoint(value)
	case reflect.TypeOf(point{}):
		p, err := parsePoint(value)
		if err != nil {
			return nil, err
		}
		return *p, nil
	case reflect.TypeOf([]int64(nil)):
		return parseInt64List(value)
	case reflect.TypeOf(map[string]int64(nil)):
		return parseCountMap(value)
	}

	switch rt.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Bool:
		return value == "true" || value == "1", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(value, 10, rt.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(v).Convert(rt).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(value, 10, rt.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(v).Convert(rt).Interface(), nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, rt.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(v).Convert(rt).Interface(), nil
	default:
		return nil, fmt.Errorf("cannot parse %q as %s", value, rt)
	}
}

func parsePoint(value string) (*point, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("points are written x:y, got %q", value)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	return &point{X: x, Y: y}, nil
}

func parseInt64List(value string) ([]int64, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ":")
	out := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseCountMap(value string) (map[string]int64, error) {
	out := make(map[string]int64)
	if value == "" {
		return out, nil
	}
	for _, pair := range strings.Split(value, ":") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("map entries are written key=value, got %q", pair)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(parts[0])] = v
	}
	return out, nil
}

// formatResult renders a call result, unwrapping point instances into
// their native value.
func (d *demo) formatResult(o *object.Object) string {
	if o.Kind() == object.KindInstance {
		if p, ok := cast.Load[point](d.env, o, false); ok {
			return fmt.Sprintf("point(%g, %g)", p.X, p.Y)
		}
	}
	return o.String()
}
