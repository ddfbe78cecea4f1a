package catalog

import "sort"

// Attribute is one typed attribute of a declaration.
type Attribute struct {
	Type TypeRef `json:"type"`
	Doc  string  `json:"doc,omitempty"`
	// ReadOnly marks attributes the host exposes without a setter
	// (property getters in the stub source).
	ReadOnly bool `json:"readonly,omitempty"`
}

// MethodKind distinguishes how a method binds.
type MethodKind string

const (
	MethodInstance MethodKind = "instance"
	MethodClass    MethodKind = "classmethod"
	MethodStatic   MethodKind = "staticmethod"
)

// Param is one method parameter. Default holds the literal default text
// from the stub source ("" means the parameter is required).
type Param struct {
	Name    string  `json:"name"`
	Type    TypeRef `json:"type"`
	Default string  `json:"default,omitempty"`
}

// Method is one method signature of a declaration. The receiver (self or
// cls) is not part of Params.
type Method struct {
	Name     string     `json:"name"`
	Kind     MethodKind `json:"kind"`
	Params   []Param    `json:"params,omitempty"`
	Return   TypeRef    `json:"return"`
	Doc      string     `json:"doc,omitempty"`
	Overload bool       `json:"overload,omitempty"`
}

// Source records where a declaration came from.
type Source struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// Declaration is the declared shape of one type: its supertypes in
// declaration order, its attributes, and its methods in declaration order.
// Declarations are immutable once added to a catalog.
type Declaration struct {
	Name       string               `json:"name"`
	Doc        string               `json:"doc,omitempty"`
	Supertypes []string             `json:"supertypes,omitempty"`
	Attrs      map[string]Attribute `json:"attributes,omitempty"`
	Methods    []Method             `json:"methods,omitempty"`
	Source     Source               `json:"source,omitzero"`
}

// Attr returns the declaration's own attribute with the given name.
// Inherited attributes are resolved by Catalog.ResolveAttr.
func (d *Declaration) Attr(name string) (Attribute, bool) {
	a, ok := d.Attrs[name]
	return a, ok
}

// Method returns the declaration's own first method with the given name.
func (d *Declaration) Method(name string) (*Method, bool) {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return &d.Methods[i], true
		}
	}
	return nil, false
}

// AttrNames returns the declaration's own attribute names, sorted.
func (d *Declaration) AttrNames() []string {
	names := make([]string, 0, len(d.Attrs))
	for name := range d.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
