package catalog

import "fmt"

// FindingKind classifies a validation finding.
type FindingKind string

const (
	// FindingUnknownSupertype marks a supertype name with no declaration.
	FindingUnknownSupertype FindingKind = "unknown-supertype"
	// FindingUnknownType marks an attribute/param/return reference to a
	// name that is neither a primitive, a builtin wrap, nor a declaration.
	FindingUnknownType FindingKind = "unknown-type"
	// FindingSupertypeCycle marks a declaration that (transitively)
	// inherits from itself.
	FindingSupertypeCycle FindingKind = "supertype-cycle"
	// FindingDuplicateMethod marks a method name declared twice on the
	// same type without an overload marker.
	FindingDuplicateMethod FindingKind = "duplicate-method"
	// FindingInvalidVector marks a vector whose element is not a numeric
	// primitive.
	FindingInvalidVector FindingKind = "invalid-vector"
)

// Finding is one validation result. Type is the declaration it was found
// on, Member the attribute or method involved ("" for type-level
// findings) and Ref the offending reference.
type Finding struct {
	Kind   FindingKind `json:"kind"`
	Type   string      `json:"type"`
	Member string      `json:"member,omitempty"`
	Ref    string      `json:"ref,omitempty"`
	Detail string      `json:"detail"`
}

func (f Finding) String() string {
	if f.Member != "" {
		return fmt.Sprintf("%s: %s.%s: %s", f.Kind, f.Type, f.Member, f.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", f.Kind, f.Type, f.Detail)
}

// Validate checks the closure property over the whole catalog: every
// supertype resolves, every named type reference resolves, the supertype
// graph is acyclic, and method names are unique per declaration unless
// marked as overloads. The result is deterministic for a given catalog.
func (c *Catalog) Validate() []Finding {
	var findings []Finding

	for _, name := range c.names {
		d := c.decls[name]

		for _, super := range d.Supertypes {
			if !c.Has(super) {
				findings = append(findings, Finding{
					Kind:   FindingUnknownSupertype,
					Type:   d.Name,
					Ref:    super,
					Detail: fmt.Sprintf("supertype %q is not declared", super),
				})
			}
		}

		for _, attrName := range d.AttrNames() {
			findings = c.checkRef(findings, d.Name, attrName, d.Attrs[attrName].Type)
		}
		methodSeen := map[string]bool{}
		for i := range d.Methods {
			m := &d.Methods[i]
			if methodSeen[m.Name] && !m.Overload {
				findings = append(findings, Finding{
					Kind:   FindingDuplicateMethod,
					Type:   d.Name,
					Member: m.Name,
					Detail: "method declared more than once without an overload marker",
				})
			}
			methodSeen[m.Name] = true
			for _, p := range m.Params {
				findings = c.checkRef(findings, d.Name, m.Name, p.Type)
			}
			findings = c.checkRef(findings, d.Name, m.Name, m.Return)
		}
	}

	findings = append(findings, c.findCycles()...)
	return findings
}

// checkRef validates one type reference tree.
func (c *Catalog) checkRef(findings []Finding, typeName, member string, ref TypeRef) []Finding {
	switch ref.Kind {
	case KindVector:
		if ref.Elem == nil || ref.Elem.Kind != KindPrimitive || !IsNumericPrimitive(ref.Elem.Name) {
			findings = append(findings, Finding{
				Kind:   FindingInvalidVector,
				Type:   typeName,
				Member: member,
				Ref:    ref.String(),
				Detail: "vector element must be a numeric primitive",
			})
		}
		return findings
	case KindCollection:
		if !IsBuiltinWrap(ref.Name) && !c.Has(ref.Name) {
			findings = append(findings, Finding{
				Kind:   FindingUnknownType,
				Type:   typeName,
				Member: member,
				Ref:    ref.Name,
				Detail: fmt.Sprintf("collection class %q is not declared", ref.Name),
			})
		}
		if ref.Key != nil {
			findings = c.checkRef(findings, typeName, member, *ref.Key)
		}
		if ref.Elem != nil {
			findings = c.checkRef(findings, typeName, member, *ref.Elem)
		}
		return findings
	case KindNamed:
		if !c.Has(ref.Name) {
			findings = append(findings, Finding{
				Kind:   FindingUnknownType,
				Type:   typeName,
				Member: member,
				Ref:    ref.Name,
				Detail: fmt.Sprintf("reference to %q does not resolve", ref.Name),
			})
		}
		return findings
	case KindUnion:
		for _, m := range ref.Members {
			findings = c.checkRef(findings, typeName, member, m)
		}
		return findings
	default:
		return findings
	}
}

// findCycles reports every declaration whose supertype chain reaches
// itself, in sorted name order.
func (c *Catalog) findCycles() []Finding {
	var findings []Finding
	for _, name := range c.names {
		if c.reachesSelf(name) {
			findings = append(findings, Finding{
				Kind:   FindingSupertypeCycle,
				Type:   name,
				Detail: "supertype chain loops back to this declaration",
			})
		}
	}
	return findings
}

// reachesSelf reports whether name is reachable from its own supertypes.
func (c *Catalog) reachesSelf(name string) bool {
	visited := map[string]bool{}
	var visit func(n string) bool
	visit = func(n string) bool {
		d, ok := c.decls[n]
		if !ok {
			return false
		}
		for _, super := range d.Supertypes {
			if super == name {
				return true
			}
			if visited[super] {
				continue
			}
			visited[super] = true
			if visit(super) {
				return true
			}
		}
		return false
	}
	return visit(name)
}
