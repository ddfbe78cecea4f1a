package catalog

import "sort"

// Catalog is the immutable set of all declarations, indexed by name.
type Catalog struct {
	decls map[string]*Declaration
	names []string // sorted
}

// Builder accumulates declarations and detects name conflicts.
type Builder struct {
	decls map[string]*Declaration
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{decls: make(map[string]*Declaration)}
}

// Add registers a declaration. Adding a name that is already present
// fails with a conflict error naming the re-declaring source file.
func (b *Builder) Add(d *Declaration) error {
	if d.Name == "" {
		return errInvalidf("declaration without a name (%s:%d)", d.Source.File, d.Source.Line)
	}
	if _, ok := b.decls[d.Name]; ok {
		return errDuplicateType(d.Name, d.Source.File)
	}
	b.decls[d.Name] = d
	return nil
}

// Len returns the number of declarations added so far.
func (b *Builder) Len() int { return len(b.decls) }

// Build freezes the accumulated declarations into a Catalog.
func (b *Builder) Build() *Catalog {
	names := make([]string, 0, len(b.decls))
	for name := range b.decls {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Catalog{decls: b.decls, names: names}
}

// New builds a catalog directly from a declaration list.
func New(decls []*Declaration) (*Catalog, error) {
	b := NewBuilder()
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Lookup returns the declaration with the given name. An unknown name
// fails with a not-found error; the catalog never substitutes a
// placeholder for a missing declaration.
func (c *Catalog) Lookup(name string) (*Declaration, error) {
	d, ok := c.decls[name]
	if !ok {
		return nil, errTypeNotFound(name)
	}
	return d, nil
}

// Has reports whether a declaration with the given name exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.decls[name]
	return ok
}

// Len returns the number of declarations.
func (c *Catalog) Len() int { return len(c.decls) }

// Names returns all declaration names in sorted order. The returned slice
// must not be modified.
func (c *Catalog) Names() []string { return c.names }

// Walk calls fn for every declaration in sorted name order and stops at
// the first error.
func (c *Catalog) Walk(fn func(*Declaration) error) error {
	for _, name := range c.names {
		if err := fn(c.decls[name]); err != nil {
			return err
		}
	}
	return nil
}
