package pyi

import (
	"fmt"
	"strings"

	"github.com/stubdex/stubdex/catalog"
)

// parser consumes the token stream of one stub file and collects the
// type declarations it defines. Module-level functions and bare
// assignments are parsed and dropped; only classes become catalog
// declarations.
type parser struct {
	s     *scanner
	decls []*catalog.Declaration

	// aliases maps names bound by from-imports to their source name,
	// already flattened to the final dotted component.
	aliases map[string]string

	// typeVars holds names bound to TypeVar() calls. References to
	// them in annotations are generic placeholders, not types.
	typeVars map[string]bool

	// class is the name of the class currently being parsed, for
	// lowering Self annotations.
	class string

	tok token
	lit string
	pos Pos
}

// Parse parses a single stub file and returns the type declarations it
// defines, in source order.
func Parse(file string, src []byte) ([]*catalog.Declaration, error) {
	p := &parser{
		s:        newScanner(file, src),
		aliases:  map[string]string{},
		typeVars: map[string]bool{},
	}
	p.next()
	if err := p.parseFile(); err != nil {
		return nil, err
	}
	return p.decls, nil
}

func (p *parser) next() {
	p.s.next()
	p.tok = p.s.tok
	p.lit = p.s.lit
	p.pos = p.s.pos
}

func (p *parser) errorf(format string, args ...any) error {
	if p.s.err != nil {
		return p.s.err
	}
	return &ParseError{File: p.s.file, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(t token) error {
	if p.tok != t {
		return p.errorf("expected %s, found %s", t, p.describe())
	}
	p.next()
	return nil
}

func (p *parser) describe() string {
	if p.tok == tokName || p.tok == tokNumber {
		return fmt.Sprintf("%q", p.lit)
	}
	return p.tok.String()
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok == tokName && p.lit == kw
}

func (p *parser) parseFile() error {
	if p.tok == tokString {
		p.next()
		if err := p.expect(tokNewline); err != nil {
			return err
		}
	}
	for p.tok != tokEOF {
		switch {
		case p.tok == tokNewline:
			p.next()
		case p.isKeyword("import"):
			if err := p.skipToNewline(); err != nil {
				return err
			}
		case p.isKeyword("from"):
			if err := p.parseFrom(); err != nil {
				return err
			}
		case p.isKeyword("class"):
			if err := p.parseClass(); err != nil {
				return err
			}
		case p.tok == tokAt:
			decos, err := p.parseDecorators()
			if err != nil {
				return err
			}
			if p.isKeyword("class") {
				if err := p.parseClass(); err != nil {
					return err
				}
				break
			}
			var discard catalog.Declaration
			if err := p.parseDef(&discard, decos); err != nil {
				return err
			}
		case p.isKeyword("def"):
			var discard catalog.Declaration
			if err := p.parseDef(&discard, nil); err != nil {
				return err
			}
		case p.tok == tokName:
			if err := p.parseModuleAssign(); err != nil {
				return err
			}
		case p.tok == tokString:
			p.next()
			if err := p.expect(tokNewline); err != nil {
				return err
			}
		default:
			return p.errorf("unexpected %s at module level", p.describe())
		}
	}
	if p.s.err != nil {
		return p.s.err
	}
	return nil
}

// parseFrom handles from-imports and records local aliases so that
// annotations using the bound names resolve to the source type.
func (p *parser) parseFrom() error {
	p.next()
	for p.tok == tokDot || p.tok == tokEllipsis {
		p.next()
	}
	if p.tok == tokName && p.lit != "import" {
		if _, err := p.parseDottedName(); err != nil {
			return err
		}
	}
	if !p.isKeyword("import") {
		return p.errorf("expected \"import\", found %s", p.describe())
	}
	p.next()
	if p.tok == tokStar {
		p.next()
		return p.expect(tokNewline)
	}
	paren := p.tok == tokLparen
	if paren {
		p.next()
	}
	for {
		if p.tok != tokName {
			return p.errorf("expected imported name, found %s", p.describe())
		}
		name := p.lit
		local := name
		p.next()
		if p.isKeyword("as") {
			p.next()
			if p.tok != tokName {
				return p.errorf("expected alias name, found %s", p.describe())
			}
			local = p.lit
			p.next()
		}
		if local != name {
			p.aliases[local] = name
		}
		if p.tok == tokComma {
			p.next()
			if paren && p.tok == tokRparen {
				break
			}
			continue
		}
		break
	}
	if paren {
		if err := p.expect(tokRparen); err != nil {
			return err
		}
	}
	return p.expect(tokNewline)
}

// parseModuleAssign handles module-level NAME statements: TypeVar
// bindings are recorded, plain aliases mapped, everything else is
// skipped.
func (p *parser) parseModuleAssign() error {
	name := p.lit
	p.next()
	if p.tok == tokEqual {
		p.next()
		if p.tok == tokName {
			target, err := p.parseDottedName()
			if err != nil {
				return err
			}
			switch {
			case isTypeVarCtor(target) && p.tok == tokLparen:
				p.typeVars[name] = true
				return p.skipToNewline()
			case p.tok == tokNewline:
				p.aliases[name] = target
				p.next()
				return nil
			}
		}
		return p.skipToNewline()
	}
	return p.skipToNewline()
}

func isTypeVarCtor(name string) bool {
	return name == "TypeVar" || name == "ParamSpec" || name == "TypeVarTuple"
}

func (p *parser) skipToNewline() error {
	for p.tok != tokNewline && p.tok != tokEOF {
		p.next()
	}
	if p.s.err != nil {
		return p.s.err
	}
	if p.tok == tokNewline {
		p.next()
	}
	return nil
}

// parseDottedName reads a dotted name and returns its final component.
func (p *parser) parseDottedName() (string, error) {
	if p.tok != tokName {
		return "", p.errorf("expected name, found %s", p.describe())
	}
	name := p.lit
	p.next()
	for p.tok == tokDot {
		p.next()
		if p.tok != tokName {
			return "", p.errorf("expected name after '.', found %s", p.describe())
		}
		name = p.lit
		p.next()
	}
	return name, nil
}

func (p *parser) parseDecorators() ([]string, error) {
	var decos []string
	for p.tok == tokAt {
		p.next()
		if p.tok != tokName {
			return nil, p.errorf("expected decorator name, found %s", p.describe())
		}
		name := p.lit
		p.next()
		for p.tok == tokDot {
			p.next()
			if p.tok != tokName {
				return nil, p.errorf("expected name after '.', found %s", p.describe())
			}
			name = p.lit
			p.next()
		}
		if p.tok == tokLparen {
			depth := 1
			p.next()
			for depth > 0 {
				switch p.tok {
				case tokLparen, tokLbrack, tokLbrace:
					depth++
				case tokRparen, tokRbrack, tokRbrace:
					depth--
				case tokEOF:
					return nil, p.errorf("unterminated decorator arguments")
				}
				p.next()
			}
		}
		decos = append(decos, name)
		if err := p.expect(tokNewline); err != nil {
			return nil, err
		}
	}
	return decos, nil
}

func hasDecorator(decos []string, name string) bool {
	for _, d := range decos {
		if d == name {
			return true
		}
	}
	return false
}

// droppedBases are class bases carrying Python typing machinery rather
// than catalog supertypes.
var droppedBases = map[string]bool{
	"object":   true,
	"Generic":  true,
	"Protocol": true,
	"ABC":      true,
}

func (p *parser) parseClass() error {
	start := p.pos
	p.next()
	if p.tok != tokName {
		return p.errorf("expected class name, found %s", p.describe())
	}
	d := &catalog.Declaration{
		Name:   p.lit,
		Attrs:  map[string]catalog.Attribute{},
		Source: catalog.Source{File: p.s.file, Line: start.Line},
	}
	p.next()

	if p.tok == tokLparen {
		p.next()
		for p.tok != tokRparen {
			if p.tok == tokName {
				// keyword arguments such as metaclass=... are not
				// supertypes
				save := p.lit
				p.next()
				if p.tok == tokEqual {
					p.next()
					if err := p.skipBracketed(tokRparen); err != nil {
						return err
					}
					if p.tok == tokComma {
						p.next()
					}
					continue
				}
				base := save
				for p.tok == tokDot {
					p.next()
					if p.tok != tokName {
						return p.errorf("expected name after '.', found %s", p.describe())
					}
					base = p.lit
					p.next()
				}
				if p.tok == tokLbrack {
					if err := p.skipSubscript(); err != nil {
						return err
					}
				}
				if t, ok := p.aliases[base]; ok {
					base = t
				}
				if !droppedBases[base] {
					d.Supertypes = append(d.Supertypes, base)
				}
			} else {
				return p.errorf("expected base class name, found %s", p.describe())
			}
			if p.tok == tokComma {
				p.next()
				continue
			}
			break
		}
		if err := p.expect(tokRparen); err != nil {
			return err
		}
	}

	if err := p.expect(tokColon); err != nil {
		return err
	}

	prevClass := p.class
	p.class = d.Name
	defer func() { p.class = prevClass }()

	// inline suite: class Foo(Base): ...
	if p.tok == tokEllipsis || p.isKeyword("pass") {
		p.next()
		if err := p.expect(tokNewline); err != nil {
			return err
		}
		p.decls = append(p.decls, d)
		return nil
	}

	if err := p.expect(tokNewline); err != nil {
		return err
	}
	if err := p.expect(tokIndent); err != nil {
		return err
	}
	if err := p.parseClassBody(d); err != nil {
		return err
	}
	if err := p.expect(tokDedent); err != nil {
		return err
	}
	p.decls = append(p.decls, d)
	return nil
}

// skipBracketed consumes tokens until the given closer at the current
// nesting depth, leaving the closer for the caller.
func (p *parser) skipBracketed(closer token) error {
	depth := 0
	for {
		switch p.tok {
		case tokLparen, tokLbrack, tokLbrace:
			depth++
		case tokRparen, tokRbrack, tokRbrace:
			if depth == 0 {
				if p.tok != closer && p.tok != tokComma {
					return p.errorf("unexpected %s", p.describe())
				}
				return nil
			}
			depth--
		case tokComma:
			if depth == 0 {
				return nil
			}
		case tokEOF:
			return p.errorf("unexpected end of file")
		}
		p.next()
	}
}

func (p *parser) skipSubscript() error {
	depth := 0
	for {
		switch p.tok {
		case tokLbrack, tokLparen, tokLbrace:
			depth++
		case tokRbrack, tokRparen, tokRbrace:
			depth--
			if depth == 0 {
				p.next()
				return nil
			}
		case tokEOF:
			return p.errorf("unterminated subscript")
		}
		p.next()
	}
}

func (p *parser) parseClassBody(d *catalog.Declaration) error {
	// class docstring
	if p.tok == tokString {
		d.Doc = cleanDoc(p.lit)
		p.next()
		if err := p.expect(tokNewline); err != nil {
			return err
		}
	}

	lastAttr := ""
	for p.tok != tokDedent && p.tok != tokEOF {
		switch {
		case p.tok == tokString:
			// attribute docstrings follow the annotated assignment
			doc := cleanDoc(p.lit)
			p.next()
			if err := p.expect(tokNewline); err != nil {
				return err
			}
			if lastAttr != "" {
				a := d.Attrs[lastAttr]
				if a.Doc == "" {
					a.Doc = doc
					d.Attrs[lastAttr] = a
				}
			}
			lastAttr = ""
		case p.tok == tokEllipsis || p.isKeyword("pass"):
			p.next()
			if err := p.expect(tokNewline); err != nil {
				return err
			}
			lastAttr = ""
		case p.tok == tokAt:
			decos, err := p.parseDecorators()
			if err != nil {
				return err
			}
			if p.isKeyword("class") {
				if err := p.parseClass(); err != nil {
					return err
				}
				lastAttr = ""
				break
			}
			if err := p.parseDef(d, decos); err != nil {
				return err
			}
			lastAttr = ""
		case p.isKeyword("def"):
			if err := p.parseDef(d, nil); err != nil {
				return err
			}
			lastAttr = ""
		case p.isKeyword("class"):
			if err := p.parseClass(); err != nil {
				return err
			}
			lastAttr = ""
		case p.tok == tokName:
			name := p.lit
			p.next()
			if p.tok == tokColon {
				p.next()
				ref, err := p.parseTypeExpr()
				if err != nil {
					return err
				}
				if p.tok == tokEqual {
					p.next()
					if _, err := p.parseDefaultValue(); err != nil {
						return err
					}
				}
				if err := p.expect(tokNewline); err != nil {
					return err
				}
				if _, exists := d.Attrs[name]; !exists {
					d.Attrs[name] = catalog.Attribute{Type: ref}
				}
				lastAttr = name
				break
			}
			// untyped class variable, not part of the catalog
			if err := p.skipToNewline(); err != nil {
				return err
			}
			lastAttr = ""
		default:
			return p.errorf("unexpected %s in class body", p.describe())
		}
	}
	return nil
}

func (p *parser) parseDef(d *catalog.Declaration, decos []string) error {
	p.next()
	if p.tok != tokName {
		return p.errorf("expected method name, found %s", p.describe())
	}
	m := catalog.Method{
		Name:     p.lit,
		Kind:     catalog.MethodInstance,
		Overload: hasDecorator(decos, "overload"),
	}
	p.next()

	isProperty := hasDecorator(decos, "property")
	isSetter := hasDecorator(decos, "setter")
	switch {
	case hasDecorator(decos, "staticmethod"):
		m.Kind = catalog.MethodStatic
	case hasDecorator(decos, "classmethod"):
		m.Kind = catalog.MethodClass
	}

	if err := p.expect(tokLparen); err != nil {
		return err
	}
	if err := p.parseParams(&m); err != nil {
		return err
	}
	if err := p.expect(tokRparen); err != nil {
		return err
	}

	m.Return = catalog.None()
	if p.tok == tokArrow {
		p.next()
		ref, err := p.parseTypeExpr()
		if err != nil {
			return err
		}
		m.Return = ref
	}
	if err := p.expect(tokColon); err != nil {
		return err
	}

	doc, err := p.parseDefSuite()
	if err != nil {
		return err
	}
	m.Doc = doc

	switch {
	case isProperty:
		if _, exists := d.Attrs[m.Name]; !exists {
			d.Attrs[m.Name] = catalog.Attribute{Type: m.Return, Doc: m.Doc, ReadOnly: true}
		}
	case isSetter:
		if a, exists := d.Attrs[m.Name]; exists {
			a.ReadOnly = false
			d.Attrs[m.Name] = a
		}
	default:
		d.Methods = append(d.Methods, m)
	}
	return nil
}

// parseDefSuite consumes a stub function body and returns its
// docstring, if any.
func (p *parser) parseDefSuite() (string, error) {
	// inline body: def f() -> int: ...
	if p.tok == tokEllipsis || p.isKeyword("pass") {
		p.next()
		return "", p.expect(tokNewline)
	}
	if err := p.expect(tokNewline); err != nil {
		return "", err
	}
	if err := p.expect(tokIndent); err != nil {
		return "", err
	}
	doc := ""
	if p.tok == tokString {
		doc = cleanDoc(p.lit)
		p.next()
		if err := p.expect(tokNewline); err != nil {
			return "", err
		}
	}
	for p.tok != tokDedent && p.tok != tokEOF {
		if err := p.skipToNewline(); err != nil {
			return "", err
		}
	}
	return doc, p.expect(tokDedent)
}

func (p *parser) parseParams(m *catalog.Method) error {
	first := true
	for p.tok != tokRparen {
		if p.tok == tokEOF {
			return p.errorf("unterminated parameter list")
		}
		// bare markers for positional-only and keyword-only sections
		if p.tok == tokSlash {
			p.next()
			if p.tok == tokComma {
				p.next()
			}
			continue
		}
		star := ""
		if p.tok == tokStar || p.tok == tokStarStar {
			star = p.lit
			p.next()
			if p.tok == tokComma || p.tok == tokRparen {
				// bare * separator
				if p.tok == tokComma {
					p.next()
				}
				continue
			}
		}
		if p.tok != tokName {
			return p.errorf("expected parameter name, found %s", p.describe())
		}
		param := catalog.Param{Name: star + p.lit}
		bare := p.lit
		p.next()

		if p.tok == tokColon {
			p.next()
			ref, err := p.parseTypeExpr()
			if err != nil {
				return err
			}
			param.Type = ref
		}
		if p.tok == tokEqual {
			p.next()
			def, err := p.parseDefaultValue()
			if err != nil {
				return err
			}
			param.Default = def
		}

		// the receiver is implicit in the catalog
		receiver := first && star == "" && (bare == "self" || bare == "cls")
		if receiver {
			if bare == "cls" && m.Kind == catalog.MethodInstance {
				m.Kind = catalog.MethodClass
			}
		} else {
			m.Params = append(m.Params, param)
		}
		first = false

		if p.tok == tokComma {
			p.next()
			continue
		}
		break
	}
	return nil
}

// parseDefaultValue consumes a default-value expression and returns a
// compact textual rendering of it. Defaults stay opaque text in the
// catalog.
func (p *parser) parseDefaultValue() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		switch p.tok {
		case tokComma:
			if depth == 0 {
				return b.String(), nil
			}
			b.WriteString(", ")
		case tokRparen, tokRbrack, tokRbrace:
			if depth == 0 {
				return b.String(), nil
			}
			depth--
			b.WriteString(p.lit)
		case tokLparen, tokLbrack, tokLbrace:
			depth++
			b.WriteString(p.lit)
		case tokString:
			b.WriteString("'")
			b.WriteString(p.lit)
			b.WriteString("'")
		case tokNewline:
			if depth == 0 {
				return b.String(), nil
			}
			return "", p.errorf("unterminated default value")
		case tokEOF:
			return "", p.errorf("unterminated default value")
		default:
			b.WriteString(p.lit)
		}
		p.next()
	}
}

// cleanDoc normalizes a docstring: indentation is stripped the way
// PEP 257 trims it, reST field lines such as :type: and :param: are
// dropped together with their wrapped continuations, and surrounding
// blank lines are removed.
func cleanDoc(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}

	// common indentation of all lines after the first
	margin := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if margin < 0 || n < margin {
			margin = n
		}
	}
	if margin > 0 {
		for i, l := range lines[1:] {
			if len(l) >= margin {
				lines[i+1] = l[margin:]
			}
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " \t")

	var out []string
	inField := false
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		indented := len(l) > 0 && (l[0] == ' ' || l[0] == '\t')
		if strings.HasPrefix(trimmed, ":") && strings.Contains(trimmed[1:], ":") {
			inField = true
			continue
		}
		if inField {
			if trimmed == "" || indented {
				continue
			}
			inField = false
		}
		out = append(out, l)
	}

	for len(out) > 0 && strings.TrimSpace(out[0]) == "" {
		out = out[1:]
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
