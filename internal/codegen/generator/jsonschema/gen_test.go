package jsonschema

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stubdex/stubdex/catalog"
	"github.com/stubdex/stubdex/internal/codegen/meta"
)

func testMetadata(t *testing.T) *meta.Metadata {
	t.Helper()
	b := catalog.NewBuilder()
	decls := []*catalog.Declaration{
		{
			Name: "bpy_struct",
			Doc:  "Built-in base class for all classes in bpy.types.",
			Methods: []catalog.Method{
				{Name: "as_pointer", Kind: catalog.MethodInstance, Return: catalog.Prim(catalog.PrimInt)},
			},
		},
		{
			Name:       "Modifier",
			Supertypes: []string{"bpy_struct"},
			Attrs: map[string]catalog.Attribute{
				"name": {Type: catalog.Prim(catalog.PrimStr), Doc: "Modifier name"},
				"type": {Type: catalog.EnumOf("ARRAY", "BEVEL"), ReadOnly: true},
			},
		},
		{
			Name:       "ArrayModifier",
			Supertypes: []string{"Modifier", "bpy_struct"},
			Attrs: map[string]catalog.Attribute{
				"count":  {Type: catalog.Prim(catalog.PrimInt), Doc: "Number of duplicates to make"},
				"offset": {Type: catalog.VectorOf(catalog.Prim(catalog.PrimFloat), 3)},
			},
		},
	}
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			t.Fatalf("add %s: %v", d.Name, err)
		}
	}
	return &meta.Metadata{Catalog: b.Build(), SourceDir: "testdata"}
}

func TestGenerate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	outputDir := t.TempDir()

	if err := Generate(logger, outputDir, testMetadata(t)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, "catalog.schema.json"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}

	if doc["$schema"] != schemaDialect {
		t.Errorf("$schema = %v, want %v", doc["$schema"], schemaDialect)
	}

	defs, ok := doc["$defs"].(map[string]any)
	if !ok {
		t.Fatalf("$defs missing or wrong shape: %T", doc["$defs"])
	}
	if len(defs) != 3 {
		t.Errorf("expected 3 definitions, got %d", len(defs))
	}

	array, ok := defs["ArrayModifier"].(map[string]any)
	if !ok {
		t.Fatal("ArrayModifier definition missing")
	}
	allOf, ok := array["allOf"].([]any)
	if !ok || len(allOf) != 3 {
		t.Fatalf("ArrayModifier allOf = %v, want supertype refs plus own schema", array["allOf"])
	}
	if ref := allOf[0].(map[string]any)["$ref"]; ref != "#/$defs/Modifier" {
		t.Errorf("first supertype ref = %v, want #/$defs/Modifier", ref)
	}
	if ref := allOf[1].(map[string]any)["$ref"]; ref != "#/$defs/bpy_struct" {
		t.Errorf("second supertype ref = %v, want #/$defs/bpy_struct", ref)
	}

	own := allOf[2].(map[string]any)
	props := own["properties"].(map[string]any)
	count := props["count"].(map[string]any)
	if count["type"] != "integer" {
		t.Errorf("count schema = %v, want integer", count)
	}
	if count["description"] != "Number of duplicates to make" {
		t.Errorf("count description = %v", count["description"])
	}
	offset := props["offset"].(map[string]any)
	if offset["type"] != "array" || offset["minItems"] != float64(3) || offset["maxItems"] != float64(3) {
		t.Errorf("offset schema = %v, want fixed 3-element array", offset)
	}

	modifier := defs["Modifier"].(map[string]any)
	modProps := modifier["allOf"].([]any)[1].(map[string]any)["properties"].(map[string]any)
	typeAttr := modProps["type"].(map[string]any)
	enum, ok := typeAttr["enum"].([]any)
	if !ok || len(enum) != 2 || enum[0] != "ARRAY" || enum[1] != "BEVEL" {
		t.Errorf("type enum = %v, want [ARRAY BEVEL]", typeAttr["enum"])
	}
	if typeAttr["readOnly"] != true {
		t.Errorf("type readOnly = %v, want true", typeAttr["readOnly"])
	}

	base := defs["bpy_struct"].(map[string]any)
	if base["description"] != "Built-in base class for all classes in bpy.types." {
		t.Errorf("bpy_struct description = %v", base["description"])
	}
	methods, ok := base["x-methods"].([]any)
	if !ok || len(methods) != 1 {
		t.Fatalf("bpy_struct x-methods = %v, want one entry", base["x-methods"])
	}
	if m := methods[0].(map[string]any); m["name"] != "as_pointer" || m["kind"] != "instance" {
		t.Errorf("x-methods entry = %v", methods[0])
	}
}
