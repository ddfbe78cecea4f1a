// Package jsonschema emits one JSON Schema document describing the
// catalog's data shapes. Attribute types map to schema keywords;
// method signatures ride along under the "x-methods" extension keyword
// so the document stays a complete rendition of the catalog.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/codegen/common"
	"github.com/stubdex/stubdex/internal/codegen/generator"
	"github.com/stubdex/stubdex/internal/codegen/meta"
)

const schemaDialect = "https://json-schema.org/draft/2020-12/schema"

func init() {
	generator.Register("jsonschema", Generate)
}

func Generate(logger *slog.Logger, outputDir string, md *meta.Metadata) error {
	version, err := common.GetVersion()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	defs := make(map[string]any, md.Catalog.Len())
	err = md.Catalog.Walk(func(d *catalog.Declaration) error {
		defs[d.Name] = declSchema(d)
		return nil
	})
	if err != nil {
		return err
	}

	doc := map[string]any{
		"$schema":     schemaDialect,
		"title":       "stubdex catalog",
		"description": fmt.Sprintf("Data shapes of %d scripting-API declarations (stubdex %s).", md.Catalog.Len(), version),
		"$defs":       defs,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	data = append(data, '\n')

	outputFile := filepath.Join(outputDir, "catalog.schema.json")
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputFile, err)
	}

	logger.Info("Generated JSON Schema", "file", outputFile, "types", md.Catalog.Len())
	return nil
}

func declSchema(d *catalog.Declaration) map[string]any {
	own := map[string]any{"type": "object"}
	if len(d.Attrs) > 0 {
		props := make(map[string]any, len(d.Attrs))
		for _, name := range d.AttrNames() {
			props[name] = attrSchema(d.Attrs[name])
		}
		own["properties"] = props
	}

	def := own
	if len(d.Supertypes) > 0 {
		allOf := make([]any, 0, len(d.Supertypes)+1)
		for _, super := range d.Supertypes {
			allOf = append(allOf, map[string]any{"$ref": "#/$defs/" + super})
		}
		allOf = append(allOf, own)
		def = map[string]any{"allOf": allOf}
	}

	if d.Doc != "" {
		def["description"] = d.Doc
	}
	if len(d.Methods) > 0 {
		def["x-methods"] = d.Methods
	}
	return def
}

func attrSchema(attr catalog.Attribute) map[string]any {
	s := typeSchema(attr.Type)
	if attr.Doc != "" {
		s["description"] = attr.Doc
	}
	if attr.ReadOnly {
		s["readOnly"] = true
	}
	return s
}

func typeSchema(t catalog.TypeRef) map[string]any {
	s := baseSchema(t)
	if t.Optional {
		s = map[string]any{"anyOf": []any{s, map[string]any{"type": "null"}}}
	}
	return s
}

func baseSchema(t catalog.TypeRef) map[string]any {
	switch t.Kind {
	case catalog.KindPrimitive:
		switch t.Name {
		case catalog.PrimBool:
			return map[string]any{"type": "boolean"}
		case catalog.PrimInt:
			return map[string]any{"type": "integer"}
		case catalog.PrimFloat:
			return map[string]any{"type": "number"}
		case catalog.PrimStr:
			return map[string]any{"type": "string"}
		case catalog.PrimBytes:
			return map[string]any{"type": "string", "contentEncoding": "base64"}
		case catalog.PrimNone:
			return map[string]any{"type": "null"}
		default:
			// any: the empty schema accepts everything.
			return map[string]any{}
		}
	case catalog.KindNamed:
		return map[string]any{"$ref": "#/$defs/" + t.Name}
	case catalog.KindEnum:
		return map[string]any{"type": "string", "enum": t.Values}
	case catalog.KindVector:
		items := map[string]any{"type": "number"}
		if t.Elem != nil {
			items = typeSchema(*t.Elem)
		}
		return map[string]any{
			"type":     "array",
			"items":    items,
			"minItems": t.Size,
			"maxItems": t.Size,
		}
	case catalog.KindCollection:
		if !catalog.IsBuiltinWrap(t.Name) {
			return map[string]any{"$ref": "#/$defs/" + t.Name}
		}
		elem := map[string]any{}
		if t.Elem != nil {
			elem = typeSchema(*t.Elem)
		}
		if t.Name == catalog.WrapDict {
			return map[string]any{"type": "object", "additionalProperties": elem}
		}
		s := map[string]any{"type": "array", "items": elem}
		if t.Name == catalog.WrapSet {
			s["uniqueItems"] = true
		}
		return s
	case catalog.KindUnion:
		members := make([]any, len(t.Members))
		for i, m := range t.Members {
			members[i] = typeSchema(m)
		}
		return map[string]any{"anyOf": members}
	}
	return map[string]any{}
}
