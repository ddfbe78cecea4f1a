package catalog

import "sort"

// Member resolution walks a declaration and then its supertypes depth
// first, left to right, with a visited set so diamond hierarchies are
// visited once. A declaration's own members shadow inherited ones and an
// earlier supertype wins over a later one. Supertype names that do not
// resolve are skipped here; Validate reports them.

// MemberAttr is an attribute together with the declaration it came from.
type MemberAttr struct {
	Attribute
	Name   string `json:"name"`
	Origin string `json:"origin"`
}

// MemberMethod is a method together with the declaration it came from.
type MemberMethod struct {
	Method
	Origin string `json:"origin"`
}

// MemberSet is the union member view of a declaration: everything it
// declares plus everything its transitive supertypes declare.
type MemberSet struct {
	Attrs   []MemberAttr   `json:"attributes,omitempty"`
	Methods []MemberMethod `json:"methods,omitempty"`
}

// ResolveAttr finds the attribute as seen on typeName, searching the
// declaration itself and then its supertypes. The unknown type and the
// unknown member case both fail with a not-found error.
func (c *Catalog) ResolveAttr(typeName, attr string) (Attribute, error) {
	var (
		found Attribute
		ok    bool
	)
	err := c.walkChain(typeName, func(d *Declaration) bool {
		found, ok = d.Attr(attr)
		return ok
	})
	if err != nil {
		return Attribute{}, err
	}
	if !ok {
		return Attribute{}, errMemberNotFound(typeName, attr)
	}
	return found, nil
}

// ResolveMethod finds the method as seen on typeName, searching the
// declaration itself and then its supertypes.
func (c *Catalog) ResolveMethod(typeName, method string) (*Method, error) {
	var found *Method
	err := c.walkChain(typeName, func(d *Declaration) bool {
		m, ok := d.Method(method)
		if ok {
			found = m
		}
		return ok
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errMemberNotFound(typeName, method)
	}
	return found, nil
}

// Members returns the full member view of typeName. Attributes are sorted
// by name; methods keep resolution order.
func (c *Catalog) Members(typeName string) (*MemberSet, error) {
	set := &MemberSet{}
	seenAttr := map[string]bool{}
	seenMethod := map[string]bool{}
	err := c.walkChain(typeName, func(d *Declaration) bool {
		for _, name := range d.AttrNames() {
			if seenAttr[name] {
				continue
			}
			seenAttr[name] = true
			set.Attrs = append(set.Attrs, MemberAttr{Attribute: d.Attrs[name], Name: name, Origin: d.Name})
		}
		for i := range d.Methods {
			m := &d.Methods[i]
			if seenMethod[m.Name] && !m.Overload {
				continue
			}
			seenMethod[m.Name] = true
			set.Methods = append(set.Methods, MemberMethod{Method: *m, Origin: d.Name})
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(set.Attrs, func(i, j int) bool { return set.Attrs[i].Name < set.Attrs[j].Name })
	return set, nil
}

// Supertypes returns the transitive supertype names of typeName in
// resolution order, without typeName itself. Unresolvable supertype names
// are included so callers see the declared hierarchy as-is.
func (c *Catalog) Supertypes(typeName string) ([]string, error) {
	if _, ok := c.decls[typeName]; !ok {
		return nil, errTypeNotFound(typeName)
	}
	var order []string
	visited := map[string]bool{typeName: true}
	var visit func(names []string)
	visit = func(names []string) {
		for _, name := range names {
			if visited[name] {
				continue
			}
			visited[name] = true
			order = append(order, name)
			if d, ok := c.decls[name]; ok {
				visit(d.Supertypes)
			}
		}
	}
	visit(c.decls[typeName].Supertypes)
	return order, nil
}

// walkChain visits typeName and its transitive supertypes in resolution
// order until fn returns true. It fails with a not-found error if
// typeName itself is unknown.
func (c *Catalog) walkChain(typeName string, fn func(*Declaration) bool) error {
	d, ok := c.decls[typeName]
	if !ok {
		return errTypeNotFound(typeName)
	}
	visited := map[string]bool{}
	var visit func(d *Declaration) bool
	visit = func(d *Declaration) bool {
		if visited[d.Name] {
			return false
		}
		visited[d.Name] = true
		if fn(d) {
			return true
		}
		for _, super := range d.Supertypes {
			sd, ok := c.decls[super]
			if !ok {
				continue
			}
			if visit(sd) {
				return true
			}
		}
		return false
	}
	visit(d)
	return nil
}
