package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DocSchema is the current catalog document schema version.
const DocSchema = 1

// Document is the stable textual form of a catalog: the schema version
// plus every declaration keyed by type name. encoding/json emits map keys
// sorted, so the encoded form is deterministic for a given catalog.
type Document struct {
	Schema int                     `json:"schema"`
	Types  map[string]*Declaration `json:"types"`
}

// NewDocument snapshots a catalog into its document form.
func NewDocument(c *Catalog) *Document {
	doc := &Document{Schema: DocSchema, Types: make(map[string]*Declaration, c.Len())}
	_ = c.Walk(func(d *Declaration) error {
		doc.Types[d.Name] = d
		return nil
	})
	return doc
}

// Build turns a decoded document back into a catalog. The map key and the
// embedded declaration name must agree; an empty embedded name is filled
// from the key for hand-written documents.
func (doc *Document) Build() (*Catalog, error) {
	if doc.Schema != DocSchema {
		return nil, errInvalidf("unsupported catalog schema %d (want %d)", doc.Schema, DocSchema)
	}
	b := NewBuilder()
	for name, d := range doc.Types {
		if d == nil {
			return nil, errInvalidf("type %q: empty declaration", name)
		}
		if d.Name == "" {
			d.Name = name
		}
		if d.Name != name {
			return nil, errInvalidf("type %q: declaration names itself %q", name, d.Name)
		}
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// EncodeJSON writes the catalog document as indented JSON.
func EncodeJSON(w io.Writer, c *Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(c)); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// MarshalJSONBytes returns the catalog document as indented JSON bytes.
func MarshalJSONBytes(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeJSON parses a catalog document and builds the catalog.
func DecodeJSON(r io.Reader) (*Catalog, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errInvalidf("decode catalog: %v", err)
	}
	return doc.Build()
}

// DecodeJSONBytes parses a catalog document held in memory.
func DecodeJSONBytes(data []byte) (*Catalog, error) {
	return DecodeJSON(bytes.NewReader(data))
}

// MarshalDecl returns one declaration as JSON, the same shape used inside
// the document's types map.
func MarshalDecl(d *Declaration) ([]byte, error) {
	out, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode declaration %q: %w", d.Name, err)
	}
	return out, nil
}
