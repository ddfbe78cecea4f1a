package typescript

import (
	"fmt"
	"strings"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/codegen/common"
)

// tsType maps a catalog type reference to a TypeScript type expression.
func tsType(t catalog.TypeRef) string {
	s := tsBase(t)
	if t.Optional {
		s += " | null"
	}
	return s
}

func tsBase(t catalog.TypeRef) string {
	switch t.Kind {
	case catalog.KindPrimitive:
		switch t.Name {
		case catalog.PrimBool:
			return "boolean"
		case catalog.PrimInt, catalog.PrimFloat:
			return "number"
		case catalog.PrimStr:
			return "string"
		case catalog.PrimBytes:
			return "Uint8Array"
		case catalog.PrimNone:
			return "null"
		default:
			return "any"
		}
	case catalog.KindNamed:
		return t.Name
	case catalog.KindEnum:
		if len(t.Values) == 0 {
			return "string"
		}
		quoted := make([]string, len(t.Values))
		for i, v := range t.Values {
			quoted[i] = fmt.Sprintf("'%s'", v)
		}
		return strings.Join(quoted, " | ")
	case catalog.KindVector:
		elem := "number"
		if t.Elem != nil {
			elem = tsType(*t.Elem)
		}
		parts := make([]string, t.Size)
		for i := range parts {
			parts[i] = elem
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case catalog.KindCollection:
		if !catalog.IsBuiltinWrap(t.Name) {
			return t.Name
		}
		if t.Name == catalog.WrapDict {
			key := "string"
			if t.Key != nil {
				key = tsType(*t.Key)
			}
			elem := "any"
			if t.Elem != nil {
				elem = tsType(*t.Elem)
			}
			return "Record<" + key + ", " + elem + ">"
		}
		elem := "any"
		if t.Elem != nil {
			elem = parenthesize(tsType(*t.Elem))
		}
		return elem + "[]"
	case catalog.KindUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = tsType(m)
		}
		return strings.Join(parts, " | ")
	}
	return "any"
}

// parenthesize wraps union expressions so the array suffix binds to the
// whole union.
func parenthesize(s string) string {
	if strings.Contains(s, " | ") {
		return "(" + s + ")"
	}
	return s
}

// jsdoc renders a doc string as a JSDoc comment at the given indent, or
// "" for an empty doc.
func jsdoc(doc, indent string) string {
	if doc == "" {
		return ""
	}
	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		return indent + "/** " + lines[0] + " */"
	}
	var b strings.Builder
	b.WriteString(indent + "/**")
	for _, line := range lines {
		b.WriteString("\n" + indent + " * " + line)
	}
	b.WriteString("\n" + indent + " */")
	return b.String()
}

func writeFileHeaderTS() string { return common.FileHeader("//", "typescript") }
