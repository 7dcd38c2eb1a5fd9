package tagwire

import (
	"fmt"
)

// TypeKind identifies how a value is laid out on the wire.
// The numbering matches the Thrift type ids so payloads interoperate
// with other Thrift implementations.
type TypeKind int8

const (
	// KindStop terminates the field list of a struct. It is never a field type.
	KindStop   TypeKind = 0
	KindBool   TypeKind = 2
	KindByte   TypeKind = 3
	KindDouble TypeKind = 4
	KindI16    TypeKind = 6
	KindI32    TypeKind = 8
	KindI64    TypeKind = 10
	KindString TypeKind = 11
	KindStruct TypeKind = 12
	KindMap    TypeKind = 13
	KindSet    TypeKind = 14
	KindList   TypeKind = 15
	KindFloat  TypeKind = 19
)

var kindNames = map[TypeKind]string{
	KindStop:   "stop",
	KindBool:   "bool",
	KindByte:   "byte",
	KindDouble: "double",
	KindI16:    "i16",
	KindI32:    "i32",
	KindI64:    "i64",
	KindString: "string",
	KindStruct: "struct",
	KindMap:    "map",
	KindSet:    "set",
	KindList:   "list",
	KindFloat:  "float",
}

// String returns the IDL spelling of the kind.
func (k TypeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int8(k))
}

// Valid reports whether k is a value kind the codec can read, write or skip.
// KindStop is not a value kind.
func (k TypeKind) Valid() bool {
	_, ok := kindNames[k]
	return ok && k != KindStop
}

// IsContainer reports whether values of this kind hold other values.
func (k TypeKind) IsContainer() bool {
	return k == KindList || k == KindSet || k == KindMap
}

// Requiredness is the schema-declared expectation for a field's presence.
// The codec never enforces it; see Record.Validate.
type Requiredness uint8

const (
	// Unqualified fields carry no requiredness keyword in the IDL.
	Unqualified Requiredness = iota
	Optional
	Required
)

func (r Requiredness) String() string {
	switch r {
	case Optional:
		return "optional"
	case Required:
		return "required"
	default:
		return "unqualified"
	}
}

// Type is the full declared type of a field or container element.
//
// Scalars only set Kind. Binary marks a KindString value carried as []byte.
// Lists and sets set Elem, maps set Key and Elem, structs set Schema.
type Type struct {
	Kind   TypeKind
	Binary bool
	Key    *Type
	Elem   *Type
	Schema *Schema
}

// Bool returns the bool type.
func Bool() Type { return Type{Kind: KindBool} }

// Byte returns the signed 8-bit integer type.
func Byte() Type { return Type{Kind: KindByte} }

// I16 returns the signed 16-bit integer type.
func I16() Type { return Type{Kind: KindI16} }

// I32 returns the signed 32-bit integer type.
func I32() Type { return Type{Kind: KindI32} }

// I64 returns the signed 64-bit integer type.
func I64() Type { return Type{Kind: KindI64} }

// Double returns the 64-bit floating point type.
func Double() Type { return Type{Kind: KindDouble} }

// Float returns the 32-bit floating point type.
func Float() Type { return Type{Kind: KindFloat} }

// String returns the UTF-8 text type.
func String() Type { return Type{Kind: KindString} }

// Binary returns the opaque byte-sequence type. It shares the string
// wire kind, so a binary field and a string field with the same tag are
// interchangeable on the wire.
func Binary() Type { return Type{Kind: KindString, Binary: true} }

// StructOf returns a nested struct type described by s.
func StructOf(s *Schema) Type { return Type{Kind: KindStruct, Schema: s} }

// ListOf returns an ordered list type.
func ListOf(elem Type) Type { return Type{Kind: KindList, Elem: &elem} }

// SetOf returns a set type. Sets keep their element order; the codec
// does not deduplicate.
func SetOf(elem Type) Type { return Type{Kind: KindSet, Elem: &elem} }

// MapOf returns a map type.
func MapOf(key, value Type) Type { return Type{Kind: KindMap, Key: &key, Elem: &value} }

// String renders the type in IDL syntax, e.g. "map<string, list<i32>>".
func (t Type) String() string {
	switch t.Kind {
	case KindString:
		if t.Binary {
			return "binary"
		}
		return "string"
	case KindStruct:
		if t.Schema != nil {
			return t.Schema.Name()
		}
		return "struct"
	case KindList, KindSet:
		if t.Elem == nil {
			return t.Kind.String()
		}
		return fmt.Sprintf("%s<%s>", t.Kind, t.Elem)
	case KindMap:
		if t.Key == nil || t.Elem == nil {
			return "map"
		}
		return fmt.Sprintf("map<%s, %s>", t.Key, t.Elem)
	default:
		return t.Kind.String()
	}
}

// validate checks that the type tree is complete.
func (t Type) validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("unsupported kind %s", t.Kind)
	}
	if t.Binary && t.Kind != KindString {
		return fmt.Errorf("binary flag on %s", t.Kind)
	}
	switch t.Kind {
	case KindStruct:
		if t.Schema == nil {
			return fmt.Errorf("struct type without schema")
		}
	case KindList, KindSet:
		if t.Elem == nil {
			return fmt.Errorf("%s without element type", t.Kind)
		}
		return t.Elem.validate()
	case KindMap:
		if t.Key == nil || t.Elem == nil {
			return fmt.Errorf("map without key or value type")
		}
		if err := t.Key.validate(); err != nil {
			return err
		}
		return t.Elem.validate()
	}
	return nil
}
