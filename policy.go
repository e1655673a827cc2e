package bridge

// Policy governs whether and how a dynamic wrapper frees or shares the
// native value it wraps. It is resolved exactly once per cast of a
// registered aggregate type.
type Policy uint8

const (
	// Automatic resolves contextually: TakeOwnership when casting a raw
	// pointer, Copy when casting a by-value result.
	Automatic Policy = iota

	// Copy allocates a fresh copy of the native value; the dynamic object
	// owns the copy, independent of the original's lifetime.
	Copy

	// Reference wraps the existing value without owning it. The dynamic
	// object never frees the value; the value must outlive the object.
	Reference

	// ReferenceInternal is Reference plus a counted reference to a parent
	// object, tying the wrapper's lifetime to the parent. Used when the
	// value is a sub-object of something else.
	ReferenceInternal

	// TakeOwnership transfers the existing pointer to the dynamic object
	// outright; the object frees it on destruction.
	TakeOwnership
)

// String returns the policy's canonical name.
func (p Policy) String() string {
	switch p {
	case Automatic:
		return "automatic"
	case Copy:
		return "copy"
	case Reference:
		return "reference"
	case ReferenceInternal:
		return "reference_internal"
	case TakeOwnership:
		return "take_ownership"
	default:
		return "unknown"
	}
}
