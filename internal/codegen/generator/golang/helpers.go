package golang

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/codegen/common"
)

// goType maps a catalog type reference to a Go type expression.
// Optional and union references widen to the base Go type; Python's
// None has no Go-side value, so optionality lives in the docs.
func goType(t catalog.TypeRef) *jen.Statement {
	switch t.Kind {
	case catalog.KindPrimitive:
		switch t.Name {
		case catalog.PrimBool:
			return jen.Bool()
		case catalog.PrimInt:
			return jen.Int()
		case catalog.PrimFloat:
			return jen.Float64()
		case catalog.PrimStr:
			return jen.String()
		case catalog.PrimBytes:
			return jen.Index().Byte()
		default:
			return jen.Any()
		}
	case catalog.KindNamed:
		return jen.Id(common.ExportName(t.Name))
	case catalog.KindEnum:
		return jen.String()
	case catalog.KindVector:
		if t.Elem == nil {
			return jen.Index(jen.Lit(t.Size)).Float64()
		}
		return jen.Index(jen.Lit(t.Size)).Add(goType(*t.Elem))
	case catalog.KindCollection:
		if !catalog.IsBuiltinWrap(t.Name) {
			// A named collection class; its element access is part
			// of that interface.
			return jen.Id(common.ExportName(t.Name))
		}
		if t.Name == catalog.WrapDict {
			key := jen.String()
			if t.Key != nil {
				key = goType(*t.Key)
			}
			elem := jen.Any()
			if t.Elem != nil {
				elem = goType(*t.Elem)
			}
			return jen.Map(key).Add(elem)
		}
		elem := jen.Any()
		if t.Elem != nil {
			elem = goType(*t.Elem)
		}
		return jen.Index().Add(elem)
	case catalog.KindUnion:
		return jen.Any()
	}
	return jen.Any()
}

// paramName maps a stub parameter name to a Go parameter name.
func paramName(name string) string {
	n := common.ToCamelCase(name)
	if token.IsKeyword(n) {
		n += "_"
	}
	return n
}

// docComment emits one comment line per doc line.
func docComment(g *jen.Group, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		g.Comment(line)
	}
}

// enumComment emits the allowed literals of an enum-typed attribute.
func enumComment(g *jen.Group, t catalog.TypeRef) {
	if t.Kind != catalog.KindEnum || len(t.Values) == 0 {
		return
	}
	quoted := make([]string, len(t.Values))
	for i, v := range t.Values {
		quoted[i] = fmt.Sprintf("'%s'", v)
	}
	g.Comment("One of: " + strings.Join(quoted, ", ") + ".")
}
