// Package registry holds the two process-lifetime tables behind aggregate
// casting: the type registry and the instance identity cache.
//
// The TypeRegistry maps a native type identity (its reflect.Type) to a
// Descriptor carrying the dynamic type handle, the ordered implicit
// conversion list, the holder-initialization hook, and the copy/destroy
// functions. It is populated once at startup through Register and read
// thereafter.
//
// The InstanceRegistry maps a live native pointer to the dynamic object
// wrapping it, so casting the same pointer twice returns the same object
// with its reference count incremented instead of allocating a second
// wrapper. Entries are borrowed references; InstanceRegistry.Watch wires
// eviction to object destruction through the space's release hooks.
//
// Both registries are explicitly constructed and passed to the casters;
// there are no package-level instances.
package registry
