// Package catalog defines the type-declaration model and the immutable
// registry that holds every declaration extracted from a stub corpus.
//
// A catalog is built once (by the pyi scanner, the index store, or the
// bundle reader) and then only queried. All query methods are safe for
// concurrent use.
package catalog

import (
	"fmt"
	"strings"
)

// Kind discriminates what a TypeRef points at.
type Kind string

const (
	// KindPrimitive is one of the primitive names below.
	KindPrimitive Kind = "primitive"
	// KindNamed references another declaration in the catalog.
	KindNamed Kind = "named"
	// KindEnum is an enum-as-string: the value is one of a fixed set of
	// string literals.
	KindEnum Kind = "enum"
	// KindVector is a fixed-size numeric array, e.g. a 3-float vector.
	KindVector Kind = "vector"
	// KindCollection wraps an element type: list, set, sequence, tuple,
	// dict (with a key type), or a named collection class declared in
	// the catalog.
	KindCollection Kind = "collection"
	// KindUnion is a union of member types.
	KindUnion Kind = "union"
)

// Primitive type names.
const (
	PrimBool  = "bool"
	PrimInt   = "int"
	PrimFloat = "float"
	PrimStr   = "str"
	PrimBytes = "bytes"
	PrimNone  = "none"

	// PrimAny is the escape hatch for source annotations the catalog
	// cannot express more precisely, such as typing.Any and callables.
	PrimAny = "any"
)

// Builtin collection wraps. A collection whose Name is not one of these
// must resolve to a declaration in the catalog.
const (
	WrapList     = "list"
	WrapSet      = "set"
	WrapSequence = "sequence"
	WrapTuple    = "tuple"
	WrapDict     = "dict"
)

// TypeRef is a semantic type reference: what an attribute, parameter or
// return value is typed as. Exactly the fields relevant to Kind are set.
type TypeRef struct {
	Kind Kind `json:"kind"`
	// Name holds the primitive name, the referenced declaration name, or
	// the collection wrap.
	Name string `json:"name,omitempty"`
	// Elem is the element type of a collection or vector.
	Elem *TypeRef `json:"elem,omitempty"`
	// Key is the key type of a dict collection.
	Key *TypeRef `json:"key,omitempty"`
	// Size is the arity of a vector.
	Size int `json:"size,omitempty"`
	// Values are the allowed literals of an enum.
	Values []string `json:"values,omitempty"`
	// Members are the alternatives of a union.
	Members []TypeRef `json:"members,omitempty"`
	// Optional marks that the value may also be None.
	Optional bool `json:"optional,omitempty"`
}

// Prim returns a primitive reference.
func Prim(name string) TypeRef { return TypeRef{Kind: KindPrimitive, Name: name} }

// Named returns a reference to another declaration.
func Named(name string) TypeRef { return TypeRef{Kind: KindNamed, Name: name} }

// EnumOf returns an enum-as-string reference with the given literals.
func EnumOf(values ...string) TypeRef { return TypeRef{Kind: KindEnum, Values: values} }

// VectorOf returns a fixed-size numeric array reference.
func VectorOf(elem TypeRef, size int) TypeRef {
	return TypeRef{Kind: KindVector, Elem: &elem, Size: size}
}

// CollectionOf returns a collection reference with the given wrap.
func CollectionOf(wrap string, elem TypeRef) TypeRef {
	return TypeRef{Kind: KindCollection, Name: wrap, Elem: &elem}
}

// DictOf returns a dict collection reference.
func DictOf(key, value TypeRef) TypeRef {
	return TypeRef{Kind: KindCollection, Name: WrapDict, Key: &key, Elem: &value}
}

// UnionOf returns a union reference.
func UnionOf(members ...TypeRef) TypeRef { return TypeRef{Kind: KindUnion, Members: members} }

// None returns the none primitive (the absent-value type).
func None() TypeRef { return Prim(PrimNone) }

// IsPrimitiveName reports whether name is a recognized primitive.
func IsPrimitiveName(name string) bool {
	switch name {
	case PrimBool, PrimInt, PrimFloat, PrimStr, PrimBytes, PrimNone, PrimAny:
		return true
	}
	return false
}

// IsNumericPrimitive reports whether name is a primitive allowed as a
// vector element.
func IsNumericPrimitive(name string) bool {
	return name == PrimInt || name == PrimFloat || name == PrimBool
}

// IsBuiltinWrap reports whether name is one of the builtin collection wraps.
func IsBuiltinWrap(name string) bool {
	switch name {
	case WrapList, WrapSet, WrapSequence, WrapTuple, WrapDict:
		return true
	}
	return false
}

// IsNone reports whether the reference is the none primitive.
func (t TypeRef) IsNone() bool { return t.Kind == KindPrimitive && t.Name == PrimNone }

// NamedRefs appends every declaration name referenced by the type (at any
// nesting depth) to dst and returns it. Builtin wraps and primitives are
// not included.
func (t TypeRef) NamedRefs(dst []string) []string {
	switch t.Kind {
	case KindNamed:
		dst = append(dst, t.Name)
	case KindCollection:
		if !IsBuiltinWrap(t.Name) {
			dst = append(dst, t.Name)
		}
		if t.Key != nil {
			dst = t.Key.NamedRefs(dst)
		}
		if t.Elem != nil {
			dst = t.Elem.NamedRefs(dst)
		}
	case KindVector:
		if t.Elem != nil {
			dst = t.Elem.NamedRefs(dst)
		}
	case KindUnion:
		for _, m := range t.Members {
			dst = m.NamedRefs(dst)
		}
	}
	return dst
}

// String renders the reference in annotation style, e.g. "list[Modifier]",
// "float[3]", "enum['POINT', 'SUN']" or "Object | None".
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	if t.Optional {
		b.WriteString(" | None")
	}
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case KindPrimitive:
		if t.Name == PrimNone {
			b.WriteString("None")
			return
		}
		b.WriteString(t.Name)
	case KindNamed:
		b.WriteString(t.Name)
	case KindEnum:
		b.WriteString("enum[")
		for i, v := range t.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "'%s'", v)
		}
		b.WriteString("]")
	case KindVector:
		if t.Elem != nil {
			t.Elem.write(b)
		}
		fmt.Fprintf(b, "[%d]", t.Size)
	case KindCollection:
		b.WriteString(t.Name)
		b.WriteString("[")
		if t.Name == WrapDict && t.Key != nil {
			t.Key.write(b)
			b.WriteString(", ")
		}
		if t.Elem != nil {
			t.Elem.write(b)
		}
		b.WriteString("]")
	case KindUnion:
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString(" | ")
			}
			m.write(b)
		}
	default:
		b.WriteString("<invalid>")
	}
}
