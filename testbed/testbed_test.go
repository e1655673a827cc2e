package testbed

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/objspace/bridge/cast"
	"github.com/objspace/bridge/object"
	"github.com/objspace/bridge/registry"
)

// node is a scene element. Registered with a destructor so tests can
// observe exactly which wrappers freed their values.
type node struct {
	ID   int32
	X, Y float64
}

// scene owns a root node by value; interior casts of Root use the scene
// wrapper as parent.
type scene struct {
	Name string
	Root node
}

// world bundles everything a lifecycle test needs: the environment plus
// destruction ledgers keyed by node ID.
type world struct {
	env         *cast.Env
	ndesc       *registry.Descriptor
	destroyed   map[int32]int
	scenesFreed int
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		env:       cast.NewEnv(object.NewSpace()),
		destroyed: make(map[int32]int),
	}

	var ndesc *registry.Descriptor
	fromPair := func(s *object.Space, src *object.Object) *object.Object {
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
		n := &node{ID: -1, X: x, Y: y}
		return s.NewInstance(ndesc.Type, n, unsafe.Pointer(n))
	}
	ndesc, err := registry.Register[node](w.env.Types, w.env.Space, "node",
		registry.WithConversion[node](fromPair),
		registry.WithDestructor[node](func(n *node) {
			w.destroyed[n.ID]++
		}))
	if err != nil {
		t.Fatalf("register node: %v", err)
	}
	w.ndesc = ndesc

	if _, err := registry.Register[scene](w.env.Types, w.env.Space, "scene",
		registry.WithDestructor[scene](func(*scene) {
			w.scenesFreed++
		})); err != nil {
		t.Fatalf("register scene: %v", err)
	}
	return w
}

func TestLifecycle_OwnershipDrain(t *testing.T) {
	w := newWorld(t)

	// Cast a batch of owned nodes plus one referenced stack value.
	var wrappers []*object.Object
	for i := int32(1); i <= 3; i++ {
		obj, err := cast.Cast(w.env, &node{ID: i, X: float64(i)}, cast.TakeOwnership, nil)
		if err != nil {
			t.Fatalf("cast node %d: %v", i, err)
		}
		wrappers = append(wrappers, obj)
	}
	local := node{ID: 99}
	ref, err := cast.Cast(w.env, &local, cast.Reference, nil)
	if err != nil {
		t.Fatalf("cast referenced node: %v", err)
	}
	wrappers = append(wrappers, ref)

	if got := w.env.Instances.Len(); got != 4 {
		t.Fatalf("live instances = %d, want 4", got)
	}

	// Releasing every wrapper drains the ledger. Only the owned nodes run
	// the destructor.
	for _, obj := range wrappers {
		obj.DecRef()
	}
	if got := w.env.Instances.Len(); got != 0 {
		t.Fatalf("live instances after drain = %d, want 0", got)
	}
	for i := int32(1); i <= 3; i++ {
		if w.destroyed[i] != 1 {
			t.Fatalf("node %d destroyed %d times, want 1", i, w.destroyed[i])
		}
	}
	if w.destroyed[99] != 0 {
		t.Fatalf("referenced node was destroyed")
	}
}

func TestLifecycle_InteriorReference(t *testing.T) {
	w := newWorld(t)

	sc := &scene{Name: "main", Root: node{ID: 7}}
	owner, err := cast.Cast(w.env, sc, cast.TakeOwnership, nil)
	if err != nil {
		t.Fatalf("cast scene: %v", err)
	}
	root, err := cast.Cast(w.env, &sc.Root, cast.ReferenceInternal, owner)
	if err != nil {
		t.Fatalf("cast interior node: %v", err)
	}

	// Dropping the owner's handle must not free the scene while the
	// interior wrapper is alive.
	owner.DecRef()
	if w.scenesFreed != 0 {
		t.Fatalf("scene freed with interior reference outstanding")
	}
	if got := w.env.Instances.Len(); got != 2 {
		t.Fatalf("live instances = %d, want 2", got)
	}

	// The interior node never owns its value, so only the scene runs a
	// destructor once the chain unwinds.
	root.DecRef()
	if w.scenesFreed != 1 {
		t.Fatalf("scene freed %d times, want 1", w.scenesFreed)
	}
	if w.destroyed[7] != 0 {
		t.Fatalf("interior node freed its value")
	}
	if got := w.env.Instances.Len(); got != 0 {
		t.Fatalf("live instances = %d, want 0", got)
	}
}

func TestLifecycle_IdentityAcrossOperations(t *testing.T) {
	w := newWorld(t)

	n := &node{ID: 5, X: 1, Y: 2}
	first, err := cast.Cast(w.env, n, cast.TakeOwnership, nil)
	if err != nil {
		t.Fatalf("first cast: %v", err)
	}

	// The same pointer surfaces as the same wrapper whether cast directly
	// or marshalled through a container.
	listObj, err := cast.Cast(w.env, []*node{n, n}, cast.Automatic, nil)
	if err != nil {
		t.Fatalf("cast list: %v", err)
	}
	lst := listObj.List()
	if lst.Get(0) != first || lst.Get(1) != first {
		t.Fatalf("container cast broke wrapper identity")
	}
	if got := first.Refs(); got != 3 {
		t.Fatalf("refs = %d, want 3", got)
	}

	// Loading the container back yields the original pointer.
	back, ok := cast.Load[[]*node](w.env, listObj, false)
	if !ok {
		t.Fatalf("load list of nodes failed")
	}
	if len(back) != 2 || back[0] != n || back[1] != n {
		t.Fatalf("loaded pointers = %v, want two references to %p", back, n)
	}

	listObj.DecRef()
	first.DecRef()
	if w.destroyed[5] != 1 {
		t.Fatalf("node destroyed %d times, want 1", w.destroyed[5])
	}
}

func TestLifecycle_ConversionTemporaries(t *testing.T) {
	w := newWorld(t)

	pair := w.env.Space.NewTuple(2)
	tup := pair.Tuple()
	for i, f := range []float64{3, 4} {
		el := w.env.Space.NewFloat(f)
		tup.Set(i, el)
		el.DecRef()
	}

	// A plain load of a convertible value copies out of the temporary and
	// releases it before returning.
	got, ok := cast.Load[node](w.env, pair, true)
	if !ok {
		t.Fatalf("converting load failed")
	}
	if got.X != 3 || got.Y != 4 {
		t.Fatalf("converted node = %+v", got)
	}
	if w.destroyed[-1] != 1 {
		t.Fatalf("temporary destroyed %d times, want 1", w.destroyed[-1])
	}
	if w.env.Instances.Len() != 0 {
		t.Fatalf("temporary leaked into the ledger")
	}

	// A holder keeps the next temporary alive until released.
	h, ok := cast.LoadHolder[node](w.env, pair, true)
	if !ok {
		t.Fatalf("converting holder load failed")
	}
	if w.destroyed[-1] != 1 {
		t.Fatalf("holder temporary destroyed early")
	}
	if h.Get().X != 3 {
		t.Fatalf("held node X = %g, want 3", h.Get().X)
	}
	h.Release()
	if w.destroyed[-1] != 2 {
		t.Fatalf("holder temporary not destroyed on release")
	}
	pair.DecRef()
}

func TestLifecycle_SubtypeFlow(t *testing.T) {
	w := newWorld(t)

	// A dynamic subtype of node created outside the registry still loads
	// through the node descriptor.
	sub := w.env.Space.NewType("pinned_node", w.ndesc.Type)
	n := &node{ID: 11, X: 8}
	obj := w.env.Space.NewInstance(sub, n, unsafe.Pointer(n))

	got, ok := cast.Load[*node](w.env, obj, false)
	if !ok {
		t.Fatalf("load through subtype failed")
	}
	if got != n {
		t.Fatalf("subtype load returned %p, want %p", got, n)
	}

	// A value load copies out of the bound pointer the same way.
	byValue, ok := cast.Load[node](w.env, obj, false)
	if !ok || byValue.X != 8 {
		t.Fatalf("value load through subtype = %+v (ok=%v)", byValue, ok)
	}

	// The subtype inherits node's destructor through its base chain.
	obj.DecRef()
	if w.destroyed[11] != 1 {
		t.Fatalf("subtype instance destroyed %d times, want 1", w.destroyed[11])
	}
}

func TestLifecycle_MixedPayloadRoundTrip(t *testing.T) {
	w := newWorld(t)

	type payload struct {
		Tag     string
		Weights map[string]float64
		Trace   []cast.Pair[int64, string]
	}
	src := payload{
		Tag:     "frame",
		Weights: map[string]float64{"a": 0.5, "b": 1.25},
		Trace: []cast.Pair[int64, string]{
			{First: 1, Second: "start"},
			{First: 2, Second: "end"},
		},
	}

	obj, err := cast.Cast(w.env, src, cast.Automatic, nil)
	if err != nil {
		t.Fatalf("cast payload: %v", err)
	}
	got, ok := cast.Load[payload](w.env, obj, false)
	if !ok {
		t.Fatalf("load payload failed")
	}
	obj.DecRef()

	if got.Tag != src.Tag || len(got.Weights) != 2 || got.Weights["b"] != 1.25 {
		t.Fatalf("payload mismatch: %+v", got)
	}
	if len(got.Trace) != 2 || got.Trace[1] != src.Trace[1] {
		t.Fatalf("trace mismatch: %+v", got.Trace)
	}
	if w.env.Instances.Len() != 0 {
		t.Fatalf("pure-value payload leaked instances")
	}
}

func TestLifecycle_FailedCastLeavesNoResidue(t *testing.T) {
	w := newWorld(t)

	type batch struct {
		Items []*node
		Limit uint64
	}
	_, err := cast.Cast(w.env, batch{
		Items: []*node{{ID: 21}, {ID: 22}},
		Limit: 1 << 63,
	}, cast.Automatic, nil)
	if err == nil {
		t.Fatalf("expected overflow error")
	}

	// Every wrapper produced before the failing field must be unwound.
	if got := w.env.Instances.Len(); got != 0 {
		t.Fatalf("failed cast left %d live instances", got)
	}
	for _, id := range []int32{21, 22} {
		if w.destroyed[id] != 1 {
			t.Fatalf("node %d destroyed %d times, want 1", id, w.destroyed[id])
		}
	}
}

func TestLifecycle_ManyWrappersStayIndependent(t *testing.T) {
	w := newWorld(t)

	const count = 128
	objs := make([]*object.Object, 0, count)
	for i := int32(0); i < count; i++ {
		obj, err := cast.Cast(w.env, &node{ID: i, X: float64(i)}, cast.TakeOwnership, nil)
		if err != nil {
			t.Fatalf("cast %d: %v", i, err)
		}
		objs = append(objs, obj)
	}
	if got := w.env.Instances.Len(); got != count {
		t.Fatalf("live instances = %d, want %d", got, count)
	}

	// Releasing odd wrappers must not disturb even ones.
	for i, obj := range objs {
		if i%2 == 1 {
			obj.DecRef()
		}
	}
	if got := w.env.Instances.Len(); got != count/2 {
		t.Fatalf("live instances = %d, want %d", got, count/2)
	}
	for i := int32(0); i < count; i++ {
		want := 0
		if i%2 == 1 {
			want = 1
		}
		if w.destroyed[i] != want {
			t.Fatalf("node %d destroyed %d times, want %d", i, w.destroyed[i], want)
		}
	}
	for i, obj := range objs {
		if i%2 == 0 {
			got, ok := cast.Load[node](w.env, obj, false)
			if !ok || got.ID != int32(i) {
				t.Fatalf("survivor %d loads as %+v (ok=%v)", i, got, ok)
			}
			obj.DecRef()
		}
	}
	if got := w.env.Instances.Len(); got != 0 {
		t.Fatalf("live instances after full drain = %d", got)
	}
}

func TestRoundTrip_MapOfSlices(t *testing.T) {
	env := cast.NewEnv(object.NewSpace())
	obj, err := cast.Cast(env, map[string][]int64{"fib": {1, 1, 2, 3}}, cast.Automatic, nil)
	if err != nil {
		t.Fatalf("cast: %v", err)
	}
	back, ok := cast.Load[map[string][]int64](env, obj, false)
	obj.DecRef()
	if !ok {
		t.Fatalf("load failed")
	}
	if fmt.Sprint(back["fib"]) != "[1 1 2 3]" {
		t.Fatalf("round trip = %v", back["fib"])
	}
}
