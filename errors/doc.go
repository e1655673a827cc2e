// Package errors provides structured error types for the bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: element path, Go and
// object-space type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCast, errors.KindTypeMismatch).
//		Path("elem[2]").
//		GoType("int32").
//		ObjType("str").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Unregistered(errors.PhaseCast, "main.Widget")
//	err := errors.NonCopyable("main.Session")
//
// Errors come in two tiers. Recoverable mismatches (wrong runtime type,
// out-of-range value, arity mismatch) are signaled by load operations
// returning false and never surface as Error values. Fatal programmer
// errors (casting an unregistered type, copy policy on a non-copyable
// type, argument marshalling failure) are returned as *Error and are
// expected to propagate to the outermost boundary crossing.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
