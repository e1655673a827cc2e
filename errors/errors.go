package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // type registration
	PhaseCompile  Phase = "compile"  // caster plan construction
	PhaseLoad     Phase = "load"     // object space to Go
	PhaseCast     Phase = "cast"     // Go to object space
	PhaseCall     Phase = "call"     // callable invocation
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch Kind = "type_mismatch"
	KindUnregistered Kind = "unregistered_type"
	KindNonCopyable  Kind = "non_copyable"
	KindDuplicate    Kind = "duplicate_type"
	KindUnsupported  Kind = "unsupported"
	KindInvalidUTF8  Kind = "invalid_utf8"
	KindInvalidChar  Kind = "invalid_char"
	KindBadArgument  Kind = "bad_argument"
	KindBadResult    Kind = "bad_result"
	KindNotCallable  Kind = "not_callable"
	KindNilValue     Kind = "nil_value"
	KindUnhashable   Kind = "unhashable"
	KindArity        Kind = "arity_mismatch"
	KindOverflow     Kind = "overflow"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	ObjType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.ObjType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.ObjType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", object type ")
			b.WriteString(e.ObjType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("object type ")
			b.WriteString(e.ObjType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.ObjType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// ObjType sets the object-space type name
func (b *Builder) ObjType(t string) *Builder {
	b.err.ObjType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, objType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  goType,
		ObjType: objType,
	}
}

// Unregistered creates an unregistered-type error. Raised when a cast meets
// an aggregate type that was never registered; a programmer error, not a
// runtime condition to recover from.
func Unregistered(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnregistered,
		GoType: goType,
		Detail: "type is not registered",
	}
}

// NonCopyable creates a non-copyable error for copy-policy casts of types
// registered without a copy function.
func NonCopyable(goType string) *Error {
	return &Error{
		Phase:  PhaseCast,
		Kind:   KindNonCopyable,
		GoType: goType,
		Detail: "copy policy on a type registered without value-copy",
	}
}

// Duplicate creates a duplicate-registration error
func Duplicate(goType, name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindDuplicate,
		GoType: goType,
		Detail: fmt.Sprintf("type already registered as %q", name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidChar creates an invalid character error for runes outside the
// Unicode scalar value range.
func InvalidChar(phase Phase, path []string, r rune) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidChar,
		Path:   path,
		Detail: fmt.Sprintf("invalid Unicode scalar value %#x", r),
		Value:  r,
	}
}

// BadArgument creates an argument marshalling error
func BadArgument(index int, goType string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindBadArgument,
		Path:   []string{fmt.Sprintf("arg[%d]", index)},
		GoType: goType,
		Detail: "cannot convert argument to an object-space value",
		Cause:  cause,
	}
}

// BadResult creates a return-value conversion error
func BadResult(goType string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindBadResult,
		GoType: goType,
		Detail: "cannot convert result to an object-space value",
		Cause:  cause,
	}
}

// NotCallable creates a not-callable error
func NotCallable(objType string) *Error {
	return &Error{
		Phase:   PhaseCall,
		Kind:    KindNotCallable,
		ObjType: objType,
		Detail:  "value is not callable",
	}
}

// NilValue creates a nil-value error
func NilValue(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilValue,
		Detail: detail,
	}
}

// Unhashable creates an unhashable-key error
func Unhashable(phase Phase, objType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUnhashable,
		ObjType: objType,
		Detail:  "value cannot be used as a mapping key",
	}
}

// Overflow creates an overflow error for values outside the object
// space's representable range.
func Overflow(phase Phase, value any, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		GoType: goType,
		Detail: fmt.Sprintf("value %v overflows the object-space integer range", value),
		Value:  value,
	}
}

// Arity creates an arity mismatch error
func Arity(phase Phase, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Detail: fmt.Sprintf("expected %d elements, got %d", want, got),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
