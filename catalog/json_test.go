package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// catalogDiff compares two catalogs structurally through their document
// form.
func catalogDiff(a, b *Catalog) string {
	return cmp.Diff(NewDocument(a), NewDocument(b), cmpopts.EquateEmpty())
}

func TestJSONRoundTrip(t *testing.T) {
	c := testCatalog(t)

	var buf bytes.Buffer
	if err := EncodeJSON(&buf, c); err != nil {
		t.Fatalf("encode: %v", err)
	}

	back, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if diff := catalogDiff(c, back); diff != "" {
		t.Errorf("round-trip changed the catalog (-orig +back):\n%s", diff)
	}
}

func TestJSONDeterministic(t *testing.T) {
	c := testCatalog(t)

	first, err := MarshalJSONBytes(c)
	if err != nil {
		t.Fatal(err)
	}
	second, err := MarshalJSONBytes(c)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two encodings of the same catalog differ")
	}
}

func TestDecodeFillsNameFromKey(t *testing.T) {
	doc := `{"schema": 1, "types": {"Thing": {"attributes": {"n": {"type": {"kind": "primitive", "name": "int"}}}}}}`

	c, err := DecodeJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	d, err := c.Lookup("Thing")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if d.Name != "Thing" {
		t.Errorf("name = %q, want filled from map key", d.Name)
	}
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrong schema", `{"schema": 99, "types": {}}`},
		{"name mismatch", `{"schema": 1, "types": {"A": {"name": "B"}}}`},
		{"not json", `schema: 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("decode succeeded")
			}
			if !IsInvalid(err) && !IsConflict(err) {
				t.Errorf("error is not typed: %v", err)
			}
		})
	}
}

func TestLoadTwiceStructurallyEqual(t *testing.T) {
	data, err := MarshalJSONBytes(testCatalog(t))
	if err != nil {
		t.Fatal(err)
	}

	first, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	second, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if diff := catalogDiff(first, second); diff != "" {
		t.Errorf("two loads of the same document differ:\n%s", diff)
	}
	if first.Len() != second.Len() || first.Len() != 4 {
		t.Errorf("lengths: %d vs %d", first.Len(), second.Len())
	}
}

func TestTypeRefStrings(t *testing.T) {
	tests := []struct {
		ref  TypeRef
		want string
	}{
		{Prim(PrimInt), "int"},
		{None(), "None"},
		{Named("Modifier"), "Modifier"},
		{EnumOf("POINT", "SUN"), "enum['POINT', 'SUN']"},
		{VectorOf(Prim(PrimFloat), 3), "float[3]"},
		{CollectionOf(WrapList, Named("Modifier")), "list[Modifier]"},
		{DictOf(Prim(PrimStr), Named("Object")), "dict[str, Object]"},
		{UnionOf(Prim(PrimInt), Prim(PrimStr)), "int | str"},
		{TypeRef{Kind: KindNamed, Name: "Object", Optional: true}, "Object | None"},
	}
	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
