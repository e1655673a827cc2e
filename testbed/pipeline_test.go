package testbed

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"
	"unsafe"

	"github.com/objspace/bridge/cast"
	"github.com/objspace/bridge/object"
	"github.com/objspace/bridge/registry"
)

// reading is the record type flowing through the pipeline tests.
type reading struct {
	Sensor string
	Value  float64
}

// pipeline wires a small set of space functions around one environment,
// the way an embedding application would expose its native API.
type pipeline struct {
	env    *cast.Env
	parse  *object.Object
	shift  *object.Object
	render *object.Object
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	env := cast.NewEnv(object.NewSpace())

	var rdesc *registry.Descriptor
	fromTuple := func(s *object.Space, src *object.Object) *object.Object {
		tup := src.Tuple()
		if tup == nil || tup.Len() != 2 {
			return nil
		}
		sensor, serr := s.AsString(tup.Get(0))
		value, verr := s.AsFloat64(tup.Get(1))
		if serr != nil || verr != nil {
			s.Clear()
			return nil
		}
		r := &reading{Sensor: sensor, Value: value}
		return s.NewInstance(rdesc.Type, r, unsafe.Pointer(r))
	}
	rdesc, err := registry.Register[reading](env.Types, env.Space, "reading",
		registry.WithConversion[reading](fromTuple))
	if err != nil {
		t.Fatalf("register reading: %v", err)
	}

	p := &pipeline{env: env}
	p.parse = bindFunc(env, "parse", func(line string) (reading, error) {
		sensor, raw, ok := strings.Cut(line, "=")
		if !ok {
			return reading{}, fmt.Errorf("malformed reading %q", line)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return reading{}, fmt.Errorf("malformed value %q: %w", raw, err)
		}
		return reading{Sensor: sensor, Value: value}, nil
	})
	p.shift = bindFunc(env, "shift", func(r reading, delta float64) reading {
		r.Value += delta
		return r
	})
	p.render = bindFunc(env, "render", func(r reading) string {
		return fmt.Sprintf("%s=%g", r.Sensor, r.Value)
	})
	return p
}

// bindFunc exposes a native function on the space through the argument
// marshaller.
func bindFunc(env *cast.Env, name string, fn any) *object.Object {
	return env.Space.NewFunc(name, func(s *object.Space, args *object.Object) (*object.Object, error) {
		return cast.Apply(env, fn, args, true)
	})
}

func (p *pipeline) close() {
	p.parse.DecRef()
	p.shift.DecRef()
	p.render.DecRef()
}

func TestPipeline_ChainedCalls(t *testing.T) {
	p := newPipeline(t)
	defer p.close()

	// Each stage's result object feeds the next call unchanged.
	parsed, err := cast.Call(p.env, p.parse, "temp=21.5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	shifted, err := cast.Call(p.env, p.shift, parsed, 0.5)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	rendered, err := cast.Call(p.env, p.render, shifted)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	got, ok := cast.Load[string](p.env, rendered, false)
	if !ok || got != "temp=22" {
		t.Fatalf("rendered = %q (ok=%v), want \"temp=22\"", got, ok)
	}

	rendered.DecRef()
	shifted.DecRef()
	parsed.DecRef()
	if n := p.env.Instances.Len(); n != 0 {
		t.Fatalf("%d instances outlive the pipeline", n)
	}
}

func TestPipeline_CalleeErrorPropagates(t *testing.T) {
	p := newPipeline(t)
	defer p.close()

	_, err := cast.Call(p.env, p.parse, "garbage")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "malformed reading") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.env.Space.ErrOccurred() {
		t.Fatalf("callee error was not raised on the space")
	}

	// Clearing the raised error restores the environment for later calls.
	p.env.Space.Clear()
	res, err := cast.Call(p.env, p.parse, "rpm=900")
	if err != nil {
		t.Fatalf("parse after recovery: %v", err)
	}
	r, ok := cast.Load[reading](p.env, res, false)
	res.DecRef()
	if !ok || r.Sensor != "rpm" || r.Value != 900 {
		t.Fatalf("recovered parse = %+v (ok=%v)", r, ok)
	}
}

func TestPipeline_ReentrantCalls(t *testing.T) {
	p := newPipeline(t)
	defer p.close()

	// A space function may call back into other space functions.
	oneShot := p.env.Space.NewFunc("one-shot", func(s *object.Space, args *object.Object) (*object.Object, error) {
		return cast.Apply(p.env, func(line string, delta float64) (string, error) {
			parsed, err := cast.Call(p.env, p.parse, line)
			if err != nil {
				return "", err
			}
			defer parsed.DecRef()
			shifted, err := cast.Call(p.env, p.shift, parsed, delta)
			if err != nil {
				return "", err
			}
			defer shifted.DecRef()
			rendered, err := cast.Call(p.env, p.render, shifted)
			if err != nil {
				return "", err
			}
			defer rendered.DecRef()
			out, ok := cast.Load[string](p.env, rendered, false)
			if !ok {
				return "", fmt.Errorf("render produced a non-string")
			}
			return out, nil
		}, args, true)
	})
	defer oneShot.DecRef()

	res, err := cast.Call(p.env, oneShot, "flow=1.25", 0.75)
	if err != nil {
		t.Fatalf("one-shot: %v", err)
	}
	got, ok := cast.Load[string](p.env, res, false)
	res.DecRef()
	if !ok || got != "flow=2" {
		t.Fatalf("one-shot = %q (ok=%v), want \"flow=2\"", got, ok)
	}
	if n := p.env.Instances.Len(); n != 0 {
		t.Fatalf("%d instances outlive the nested calls", n)
	}
}

func TestPipeline_TupleConvertsToReading(t *testing.T) {
	p := newPipeline(t)
	defer p.close()

	// A (str, float) pair converts into a reading at the call boundary
	// because the bound functions load arguments with conversions on.
	res, err := cast.Call(p.env, p.render, cast.Pair[string, float64]{First: "psi", Second: 30})
	if err != nil {
		t.Fatalf("render pair: %v", err)
	}
	got, ok := cast.Load[string](p.env, res, false)
	res.DecRef()
	if !ok || got != "psi=30" {
		t.Fatalf("render = %q (ok=%v), want \"psi=30\"", got, ok)
	}
}

func TestPipeline_BulkSummary(t *testing.T) {
	p := newPipeline(t)
	defer p.close()

	summarize := bindFunc(p.env, "summarize", func(series map[string][]float64) []string {
		out := make([]string, 0, len(series))
		for sensor, values := range series {
			var sum float64
			for _, v := range values {
				sum += v
			}
			out = append(out, fmt.Sprintf("%s:%g", sensor, sum))
		}
		sort.Strings(out)
		return out
	})
	defer summarize.DecRef()

	res, err := cast.Call(p.env, summarize, map[string][]float64{
		"temp": {20, 21, 19},
		"rpm":  {900, 1100},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	got, ok := cast.Load[[]string](p.env, res, false)
	res.DecRef()
	if !ok {
		t.Fatalf("load summary failed")
	}
	want := []string{"rpm:2000", "temp:60"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("summary = %v, want %v", got, want)
	}
}

func TestPipeline_ManySequentialCalls(t *testing.T) {
	p := newPipeline(t)
	defer p.close()

	// Plan caching keeps repeated marshalling stable; nothing may
	// accumulate in the instance ledger across iterations.
	for i := 0; i < 200; i++ {
		res, err := cast.Call(p.env, p.shift, reading{Sensor: "t", Value: float64(i)}, 1.0)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		r, ok := cast.Load[reading](p.env, res, false)
		res.DecRef()
		if !ok || r.Value != float64(i)+1 {
			t.Fatalf("call %d = %+v (ok=%v)", i, r, ok)
		}
		if n := p.env.Instances.Len(); n != 0 {
			t.Fatalf("call %d leaked %d instances", i, n)
		}
	}
}
