// Package classfile implements the streaming class-file binary parser:
// constant-pool resolution (including forward references), type/descriptor
// parsing, runtime-visible annotation extraction and static-final constant
// extraction, all without ever loading the class into a runtime (§4.4).
package classfile

import "fmt"

// ValueKind tags the nine variants (eight primitives plus string) a static-final
// constant or an annotation element value can hold (§9 "Constant-value
// boxing": modeled explicitly instead of relying on auto-boxing).
type ValueKind int

const (
	KindInt ValueKind = iota
	KindLong
	KindFloat
	KindDouble
	KindString
	KindByte
	KindShort
	KindChar
	KindBoolean
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindChar:
		return "char"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the nine constant-value variants of §4.4.
// Exactly one of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind    ValueKind
	IntVal  int32
	LongVal int64
	F32     float32
	F64     float64
	Str     string
	Bool    bool
}

// String renders the value for debugging.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.IntVal)
	case KindLong:
		return fmt.Sprintf("%d", v.LongVal)
	case KindFloat:
		return fmt.Sprintf("%g", v.F32)
	case KindDouble:
		return fmt.Sprintf("%g", v.F64)
	case KindString:
		return v.Str
	case KindByte:
		return fmt.Sprintf("%d", int8(v.IntVal))
	case KindShort:
		return fmt.Sprintf("%d", int16(v.IntVal))
	case KindChar:
		return fmt.Sprintf("%c", rune(v.IntVal))
	case KindBoolean:
		return fmt.Sprintf("%v", v.Bool)
	default:
		return "<invalid>"
	}
}

// ConstantField is one static-final field's extracted (name, descriptor,
// value) triple (§4.4 "Field parsing").
type ConstantField struct {
	Name       string
	Descriptor string
	Value      Value
}

// ClassfileRecord is the Parser's sole output: everything the Type Hierarchy
// Resolver needs to place one class in the graph (§3 "Classfile record").
type ClassfileRecord struct {
	FQN            string
	IsInterface    bool
	SuperclassFQN  string // empty means absent (only for the Object-analogue root)
	InterfaceFQNs  []string
	AnnotationFQNs []string // de-duplicated, insertion order preserved

	StaticFinalConstants []ConstantField
}

// Debug renders a record for logging; not a serialization format (result
// serialization is an out-of-scope collaborator per spec.md §1).
func (r *ClassfileRecord) Debug() string {
	super := r.SuperclassFQN
	if super == "" {
		super = "<none>"
	}
	return fmt.Sprintf("class %s (interface=%v) extends %s implements %v annotations=%v constants=%d",
		r.FQN, r.IsInterface, super, r.InterfaceFQNs, r.AnnotationFQNs, len(r.StaticFinalConstants))
}
