package registry

import (
	"github.com/objspace/bridge/object"
)

// Option configures registration of native type T.
type Option[T any] func(*config[T])

type config[T any] struct {
	base       *object.Type
	holderInit func(*object.Object)
	convs      []Conversion
	noCopy     bool
	free       func(*T)
}

// WithBase sets the dynamic base type, making the new dynamic type a
// subtype of base.
func WithBase[T any](base *object.Type) Option[T] {
	return func(c *config[T]) {
		c.base = base
	}
}

// WithConversion appends an implicit conversion attempted when a load
// meets a value of a different dynamic type. Order of options is the
// search order.
func WithConversion[T any](conv Conversion) Option[T] {
	return func(c *config[T]) {
		c.convs = append(c.convs, conv)
	}
}

// WithHolderInit sets the hook invoked once after a cast constructs an
// instance object.
func WithHolderInit[T any](hook func(*object.Object)) Option[T] {
	return func(c *config[T]) {
		c.holderInit = hook
	}
}

// WithDestructor sets the cleanup function run when a wrapper that owns
// its value is destroyed.
func WithDestructor[T any](fn func(*T)) Option[T] {
	return func(c *config[T]) {
		c.free = fn
	}
}

// WithoutCopy marks the type non-copyable, dropping the default shallow
// copy. Copy-policy casts of the type then fail fatally.
func WithoutCopy[T any]() Option[T] {
	return func(c *config[T]) {
		c.noCopy = true
	}
}

// Register builds and inserts the descriptor for native aggregate type T:
// a fresh dynamic type named name, a shallow value-copy unless WithoutCopy
// is given, and any conversions, holder hook, or destructor from opts.
// Called once per type; a second registration of T fails.
func Register[T any](r *TypeRegistry, space *object.Space, name string, opts ...Option[T]) (*Descriptor, error) {
	var cfg config[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Descriptor{
		Identity:    TypeOf[T](),
		Name:        name,
		Type:        space.NewType(name, cfg.base),
		HolderInit:  cfg.holderInit,
		conversions: cfg.convs,
	}
	if !cfg.noCopy {
		d.Copy = func(v any) any {
			fresh := *v.(*T)
			return &fresh
		}
	}
	if cfg.free != nil {
		free := cfg.free
		d.Free = func(v any) {
			free(v.(*T))
		}
		// Carried on the type so every owned instance runs it, however the
		// instance was constructed. Subtypes inherit through the base chain.
		d.Type.Free = d.Free
	}

	if err := r.Insert(d); err != nil {
		return nil, err
	}
	return d, nil
}
