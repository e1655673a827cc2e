package registry

import (
	stderrors "errors"
	"testing"

	"github.com/objspace/bridge/errors"
	"github.com/objspace/bridge/object"
)

type widget struct {
	N int
}

type gadget struct {
	Label string
}

func TestRegisterAndLookup(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	d, err := Register[widget](r, s, "Widget")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if d.Name != "Widget" || d.Type == nil {
		t.Fatalf("descriptor incomplete: %+v", d)
	}
	if d.Copy == nil {
		t.Fatal("default registration must be copyable")
	}

	got, ok := r.Lookup(TypeOf[widget]())
	if !ok || got != d {
		t.Fatal("Lookup did not return the registered descriptor")
	}

	if _, ok := r.Lookup(TypeOf[gadget]()); ok {
		t.Fatal("Lookup found an unregistered type")
	}
}

func TestDuplicateRegistration(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	if _, err := Register[widget](r, s, "Widget"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := Register[widget](r, s, "WidgetAgain")
	if err == nil {
		t.Fatal("second registration of the same type succeeded")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindDuplicate}) {
		t.Fatalf("error = %v, want duplicate_type", err)
	}
}

func TestShallowCopyIndependence(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	d, err := Register[widget](r, s, "Widget")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	orig := &widget{N: 1}
	copied := d.Copy(orig).(*widget)
	orig.N = 99
	if copied.N != 1 {
		t.Fatalf("copy shares state with original: %d", copied.N)
	}
}

func TestWithoutCopy(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	d, err := Register[widget](r, s, "Widget", WithoutCopy[widget]())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if d.Copy != nil {
		t.Fatal("WithoutCopy left a copy function")
	}
}

func TestWithDestructor(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	var freed *widget
	d, err := Register[widget](r, s, "Widget", WithDestructor(func(w *widget) { freed = w }))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	w := &widget{N: 5}
	d.Free(w)
	if freed != w {
		t.Fatal("destructor did not receive the value")
	}

	// The dynamic type carries the same destructor, so instances built
	// outside the cast path still reach it.
	if d.Type.Finalizer() == nil {
		t.Fatal("destructor not installed on the dynamic type")
	}
}

func TestWithBase(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	base, err := Register[widget](r, s, "Widget")
	if err != nil {
		t.Fatalf("Register base: %v", err)
	}
	derived, err := Register[gadget](r, s, "Gadget", WithBase[gadget](base.Type))
	if err != nil {
		t.Fatalf("Register derived: %v", err)
	}
	if !derived.Type.IsSubtype(base.Type) {
		t.Fatal("derived dynamic type is not a subtype of base")
	}
}

func TestConversionOrder(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	mark := func(n int) Conversion {
		return func(*object.Space, *object.Object) *object.Object {
			_ = n
			return nil
		}
	}

	d, err := Register[widget](r, s, "Widget", WithConversion[widget](mark(1)))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.AddConversion(TypeOf[widget](), mark(2)); err != nil {
		t.Fatalf("AddConversion: %v", err)
	}
	if err := r.AddConversion(TypeOf[widget](), mark(3)); err != nil {
		t.Fatalf("AddConversion: %v", err)
	}

	if got := len(d.Conversions()); got != 3 {
		t.Fatalf("conversions = %d, want 3", got)
	}
}

func TestAddConversionUnregistered(t *testing.T) {
	r := NewTypeRegistry()

	err := r.AddConversion(TypeOf[widget](), func(*object.Space, *object.Object) *object.Object {
		return nil
	})
	if err == nil {
		t.Fatal("AddConversion accepted an unregistered identity")
	}
}

func TestGenerationAdvances(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	g0 := r.Generation()
	if _, err := Register[widget](r, s, "Widget"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	g1 := r.Generation()
	if g1 == g0 {
		t.Fatal("Generation did not advance on Insert")
	}

	if err := r.AddConversion(TypeOf[widget](), func(*object.Space, *object.Object) *object.Object {
		return nil
	}); err != nil {
		t.Fatalf("AddConversion: %v", err)
	}
	if r.Generation() == g1 {
		t.Fatal("Generation did not advance on AddConversion")
	}
}

func TestDescriptorsOrder(t *testing.T) {
	s := object.NewSpace()
	r := NewTypeRegistry()

	if _, err := Register[widget](r, s, "Widget"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := Register[gadget](r, s, "Gadget"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ds := r.Descriptors()
	if len(ds) != 2 || ds[0].Name != "Widget" || ds[1].Name != "Gadget" {
		t.Fatalf("Descriptors order wrong: %v", ds)
	}
}

func TestIdentityString(t *testing.T) {
	id := TypeOf[widget]()
	if id.String() != "registry.widget" {
		t.Fatalf("identity = %s", id.String())
	}
	if !id.Valid() {
		t.Fatal("identity of a real type must be valid")
	}
	var zero Identity
	if zero.Valid() {
		t.Fatal("zero identity must be invalid")
	}
}
