package pyi

import (
	"strings"

	"github.com/stubdex/stubdex/catalog"
)

type argKind int

const (
	argExpr argKind = iota
	argString
	argNumber
	argEllipsis
	argList
)

// typeArg is one subscript argument of a generic head. String and
// number arguments stay raw until the head decides whether they are
// enum literals or forward references.
type typeArg struct {
	kind argKind
	ref  catalog.TypeRef
	text string
}

// wrapHeads maps sequence-shaped generic heads onto catalog wraps.
var wrapHeads = map[string]string{
	"list":            catalog.WrapList,
	"List":            catalog.WrapList,
	"set":             catalog.WrapSet,
	"Set":             catalog.WrapSet,
	"frozenset":       catalog.WrapSet,
	"FrozenSet":       catalog.WrapSet,
	"Sequence":        catalog.WrapSequence,
	"MutableSequence": catalog.WrapSequence,
	"Iterable":        catalog.WrapSequence,
	"Iterator":        catalog.WrapSequence,
	"Collection":      catalog.WrapSequence,
}

var dictHeads = map[string]bool{
	"dict":           true,
	"Dict":           true,
	"Mapping":        true,
	"MutableMapping": true,
}

// primNames maps Python builtin names onto catalog primitives.
var primNames = map[string]string{
	"bool":       catalog.PrimBool,
	"int":        catalog.PrimInt,
	"float":      catalog.PrimFloat,
	"complex":    catalog.PrimFloat,
	"str":        catalog.PrimStr,
	"bytes":      catalog.PrimBytes,
	"bytearray":  catalog.PrimBytes,
	"memoryview": catalog.PrimBytes,
}

// anyHeads are annotations the catalog cannot express more precisely.
var anyHeads = map[string]bool{
	"Any":      true,
	"object":   true,
	"Callable": true,
	"type":     true,
	"Type":     true,
}

// parseTypeExpr parses a full annotation, including unions written
// with the | operator.
func (p *parser) parseTypeExpr() (catalog.TypeRef, error) {
	first, err := p.parseTypeAtom()
	if err != nil {
		return catalog.TypeRef{}, err
	}
	if p.tok != tokPipe {
		return first, nil
	}
	members := []catalog.TypeRef{first}
	for p.tok == tokPipe {
		p.next()
		m, err := p.parseTypeAtom()
		if err != nil {
			return catalog.TypeRef{}, err
		}
		members = append(members, m)
	}
	return foldUnion(members), nil
}

func (p *parser) parseTypeAtom() (catalog.TypeRef, error) {
	switch {
	case p.tok == tokString:
		text := p.lit
		p.next()
		return p.parseTypeString(text)
	case p.tok == tokEllipsis:
		p.next()
		return catalog.Prim(catalog.PrimAny), nil
	case p.tok == tokName:
		name, err := p.parseDottedName()
		if err != nil {
			return catalog.TypeRef{}, err
		}
		if name == "None" {
			return catalog.None(), nil
		}
		if p.tok == tokLbrack {
			args, err := p.parseTypeArgs()
			if err != nil {
				return catalog.TypeRef{}, err
			}
			return p.lowerGeneric(name, args)
		}
		return p.lowerName(name), nil
	}
	return catalog.TypeRef{}, p.errorf("expected type, found %s", p.describe())
}

func (p *parser) parseTypeArgs() ([]typeArg, error) {
	if err := p.expect(tokLbrack); err != nil {
		return nil, err
	}
	var args []typeArg
	for p.tok != tokRbrack {
		a, err := p.parseTypeArg()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok == tokComma {
			p.next()
			continue
		}
		break
	}
	if err := p.expect(tokRbrack); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseTypeArg() (typeArg, error) {
	switch {
	case p.tok == tokString:
		a := typeArg{kind: argString, text: p.lit}
		p.next()
		return a, nil
	case p.tok == tokNumber:
		a := typeArg{kind: argNumber, text: p.lit}
		p.next()
		return a, nil
	case p.tok == tokMinus:
		p.next()
		if p.tok != tokNumber {
			return typeArg{}, p.errorf("expected number after '-', found %s", p.describe())
		}
		a := typeArg{kind: argNumber, text: "-" + p.lit}
		p.next()
		return a, nil
	case p.tok == tokEllipsis:
		p.next()
		return typeArg{kind: argEllipsis}, nil
	case p.tok == tokLbrack:
		// parameter lists of Callable subscripts
		if _, err := p.parseTypeArgs(); err != nil {
			return typeArg{}, err
		}
		return typeArg{kind: argList}, nil
	case p.tok == tokName && (p.lit == "True" || p.lit == "False"):
		a := typeArg{kind: argString, text: p.lit}
		p.next()
		return a, nil
	}
	ref, err := p.parseTypeExpr()
	if err != nil {
		return typeArg{}, err
	}
	return typeArg{kind: argExpr, ref: ref}, nil
}

// parseTypeString parses a forward reference written as a string
// literal, reusing the alias and TypeVar context of the enclosing
// file.
func (p *parser) parseTypeString(text string) (catalog.TypeRef, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return catalog.TypeRef{}, p.errorf("empty type reference")
	}
	sub := &parser{
		s:        newScanner(p.s.file, []byte(text)),
		aliases:  p.aliases,
		typeVars: p.typeVars,
		class:    p.class,
	}
	sub.next()
	ref, err := sub.parseTypeExpr()
	if err != nil {
		return catalog.TypeRef{}, err
	}
	if sub.tok != tokNewline && sub.tok != tokEOF {
		return catalog.TypeRef{}, p.errorf("invalid type reference %q", text)
	}
	return ref, nil
}

// lowerName lowers an unsubscripted dotted name, already flattened to
// its final component.
func (p *parser) lowerName(name string) catalog.TypeRef {
	if t, ok := p.aliases[name]; ok {
		name = t
	}
	if p.typeVars[name] {
		return catalog.Prim(catalog.PrimAny)
	}
	if name == "Self" {
		if p.class != "" {
			return catalog.Named(p.class)
		}
		return catalog.Prim(catalog.PrimAny)
	}
	if anyHeads[name] {
		return catalog.Prim(catalog.PrimAny)
	}
	if prim, ok := primNames[name]; ok {
		return catalog.Prim(prim)
	}
	if wrap, ok := wrapHeads[name]; ok {
		return catalog.CollectionOf(wrap, catalog.Prim(catalog.PrimAny))
	}
	if dictHeads[name] {
		return catalog.DictOf(catalog.Prim(catalog.PrimAny), catalog.Prim(catalog.PrimAny))
	}
	if name == "tuple" || name == "Tuple" {
		return catalog.CollectionOf(catalog.WrapTuple, catalog.Prim(catalog.PrimAny))
	}
	return catalog.Named(name)
}

func (p *parser) lowerGeneric(head string, args []typeArg) (catalog.TypeRef, error) {
	if t, ok := p.aliases[head]; ok {
		head = t
	}
	switch {
	case wrapHeads[head] != "":
		if len(args) != 1 {
			return catalog.TypeRef{}, p.errorf("%s[] takes one type argument, got %d", head, len(args))
		}
		elem, err := p.argToRef(args[0])
		if err != nil {
			return catalog.TypeRef{}, err
		}
		return catalog.CollectionOf(wrapHeads[head], elem), nil

	case dictHeads[head]:
		if len(args) != 2 {
			return catalog.TypeRef{}, p.errorf("%s[] takes two type arguments, got %d", head, len(args))
		}
		key, err := p.argToRef(args[0])
		if err != nil {
			return catalog.TypeRef{}, err
		}
		value, err := p.argToRef(args[1])
		if err != nil {
			return catalog.TypeRef{}, err
		}
		return catalog.DictOf(key, value), nil

	case head == "tuple" || head == "Tuple":
		return p.lowerTuple(args)

	case head == "Optional":
		if len(args) != 1 {
			return catalog.TypeRef{}, p.errorf("Optional[] takes one type argument, got %d", len(args))
		}
		ref, err := p.argToRef(args[0])
		if err != nil {
			return catalog.TypeRef{}, err
		}
		ref.Optional = true
		return ref, nil

	case head == "Union":
		members := make([]catalog.TypeRef, 0, len(args))
		for _, a := range args {
			ref, err := p.argToRef(a)
			if err != nil {
				return catalog.TypeRef{}, err
			}
			members = append(members, ref)
		}
		if len(members) == 0 {
			return catalog.TypeRef{}, p.errorf("Union[] needs at least one member")
		}
		return foldUnion(members), nil

	case head == "Literal":
		values := make([]string, 0, len(args))
		for _, a := range args {
			switch a.kind {
			case argString, argNumber:
				values = append(values, a.text)
			case argExpr:
				if a.ref.IsNone() {
					values = append(values, "None")
					continue
				}
				return catalog.TypeRef{}, p.errorf("unsupported Literal value")
			default:
				return catalog.TypeRef{}, p.errorf("unsupported Literal value")
			}
		}
		return catalog.EnumOf(values...), nil

	case anyHeads[head]:
		return catalog.Prim(catalog.PrimAny), nil
	}

	if len(args) == 1 {
		elem, err := p.argToRef(args[0])
		if err != nil {
			return catalog.TypeRef{}, err
		}
		return catalog.CollectionOf(head, elem), nil
	}
	return catalog.Named(head), nil
}

// lowerTuple applies the tuple rules: a homogeneous numeric tuple of
// known arity is a vector, tuple[T, ...] is an unbounded tuple of T,
// and anything else is a tuple over the union of its element types.
func (p *parser) lowerTuple(args []typeArg) (catalog.TypeRef, error) {
	if len(args) == 0 {
		return catalog.CollectionOf(catalog.WrapTuple, catalog.Prim(catalog.PrimAny)), nil
	}

	if len(args) == 2 && args[1].kind == argEllipsis {
		elem, err := p.argToRef(args[0])
		if err != nil {
			return catalog.TypeRef{}, err
		}
		return catalog.CollectionOf(catalog.WrapTuple, elem), nil
	}

	refs := make([]catalog.TypeRef, 0, len(args))
	for _, a := range args {
		ref, err := p.argToRef(a)
		if err != nil {
			return catalog.TypeRef{}, err
		}
		refs = append(refs, ref)
	}

	if len(refs) >= 2 && isUniformNumeric(refs) {
		return catalog.VectorOf(refs[0], len(refs)), nil
	}

	distinct := dedupeRefs(refs)
	if len(distinct) == 1 {
		return catalog.CollectionOf(catalog.WrapTuple, distinct[0]), nil
	}
	return catalog.CollectionOf(catalog.WrapTuple, catalog.UnionOf(distinct...)), nil
}

func (p *parser) argToRef(a typeArg) (catalog.TypeRef, error) {
	switch a.kind {
	case argExpr:
		return a.ref, nil
	case argString:
		return p.parseTypeString(a.text)
	case argNumber:
		return catalog.TypeRef{}, p.errorf("unexpected number in type position")
	case argEllipsis:
		return catalog.TypeRef{}, p.errorf("unexpected '...' in type position")
	}
	return catalog.Prim(catalog.PrimAny), nil
}

func isUniformNumeric(refs []catalog.TypeRef) bool {
	first := refs[0]
	if first.Kind != catalog.KindPrimitive || !catalog.IsNumericPrimitive(first.Name) || first.Optional {
		return false
	}
	for _, r := range refs[1:] {
		if r.Kind != catalog.KindPrimitive || r.Name != first.Name || r.Optional {
			return false
		}
	}
	return true
}

func dedupeRefs(refs []catalog.TypeRef) []catalog.TypeRef {
	seen := map[string]bool{}
	out := refs[:0]
	for _, r := range refs {
		key := r.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// foldUnion collapses union members: none members set the Optional
// flag, a single remaining member stands alone.
func foldUnion(members []catalog.TypeRef) catalog.TypeRef {
	kept := make([]catalog.TypeRef, 0, len(members))
	optional := false
	for _, m := range members {
		if m.IsNone() {
			optional = true
			continue
		}
		kept = append(kept, m)
	}
	switch len(kept) {
	case 0:
		return catalog.None()
	case 1:
		r := kept[0]
		r.Optional = r.Optional || optional
		return r
	}
	kept = dedupeRefs(kept)
	if len(kept) == 1 {
		r := kept[0]
		r.Optional = r.Optional || optional
		return r
	}
	u := catalog.UnionOf(kept...)
	u.Optional = optional
	return u
}
