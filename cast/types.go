package cast

import (
	"reflect"

	"github.com/objspace/bridge"
	"github.com/objspace/bridge/object"
)

// Policy is the ownership policy applied when casting registered
// aggregate values.
type Policy = bridge.Policy

const (
	Automatic         = bridge.Automatic
	CopyPolicy        = bridge.Copy
	Reference         = bridge.Reference
	ReferenceInternal = bridge.ReferenceInternal
	TakeOwnership     = bridge.TakeOwnership
)

// Kind tags one node of a caster plan.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
	KindString
	KindChar
	KindWide
	KindSlice
	KindMap
	KindTuple
	KindObject
	KindHeap
)

// Char is a single character. Go's rune is an alias of int32, which
// marshals as an integer; a distinct type is needed for the
// one-character-string convention.
type Char rune

// Wide is a wide-character string, marshalled as a str of its runes.
type Wide []rune

// Pair is a two-element tuple. It marshals positionally like any
// two-field struct and exists as a convenience for map entries and
// similar pairings.
type Pair[A, B any] struct {
	First  A
	Second B
}

var (
	charType      = reflect.TypeOf(Char(0))
	wideType      = reflect.TypeOf(Wide(nil))
	objectPtrType = reflect.TypeOf((*object.Object)(nil))
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)
