package cast

import (
	"github.com/objspace/bridge/object"
	"github.com/objspace/bridge/registry"
)

// Env bundles the object space, the type registry, and the instance
// identity cache used by every cast and load. Environments are explicitly
// constructed and passed in; there is no ambient global environment.
//
// Env assumes a single cooperative owner, like everything it bundles.
type Env struct {
	Space     *object.Space
	Types     *registry.TypeRegistry
	Instances *registry.InstanceRegistry

	compiler *compiler
}

// NewEnv creates an environment around a space with fresh registries and
// wires instance-cache eviction to object destruction.
func NewEnv(space *object.Space) *Env {
	types := registry.NewTypeRegistry()
	instances := registry.NewInstanceRegistry()
	instances.Watch(space)
	return &Env{
		Space:     space,
		Types:     types,
		Instances: instances,
		compiler:  newCompiler(types),
	}
}
