package common

import "testing"

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ArrayModifier": "array_modifier",
		"bpy_struct":    "bpy_struct",
		"XMLParser":     "xml_parser",
		"Vector":        "vector",
		"":              "",
	}
	for in, want := range cases {
		if got := ToSnakeCase(in); got != want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToCamelCase(t *testing.T) {
	cases := map[string]string{
		"data_path": "dataPath",
		"id":        "id",
		"frame":     "frame",
		"":          "",
	}
	for in, want := range cases {
		if got := ToCamelCase(in); got != want {
			t.Errorf("ToCamelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExportName(t *testing.T) {
	cases := map[string]string{
		"bpy_struct":          "BpyStruct",
		"ArrayModifier":       "ArrayModifier",
		"bl_rna_get_subclass": "BlRnaGetSubclass",
		"bpy_prop_collection": "BpyPropCollection",
		"count":               "Count",
		"2d_cursor":           "Num2dCursor",
		"":                    "",
	}
	for in, want := range cases {
		if got := ExportName(in); got != want {
			t.Errorf("ExportName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGeneratedBanner(t *testing.T) {
	want := "Code generated by stubdex (go backend). DO NOT EDIT."
	if got := GeneratedBanner("go"); got != want {
		t.Errorf("GeneratedBanner = %q, want %q", got, want)
	}
	if got := FileHeader("//", "typescript"); got != "// Code generated by stubdex (typescript backend). DO NOT EDIT." {
		t.Errorf("FileHeader = %q", got)
	}
}
