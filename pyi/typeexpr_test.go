package pyi

import (
	"testing"

	"github.com/stubdex/stubdex/catalog"
)

func lowerAnnotation(t *testing.T, src string) catalog.TypeRef {
	t.Helper()
	p := &parser{
		s:        newScanner("test.pyi", []byte(src)),
		aliases:  map[string]string{},
		typeVars: map[string]bool{"_T": true},
		class:    "Host",
	}
	p.next()
	ref, err := p.parseTypeExpr()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return ref
}

func TestLowerAnnotations(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"str", "str"},
		{"bytearray", "bytes"},
		{"None", "None"},
		{"typing.Any", "any"},

		{"list[Modifier]", "list[Modifier]"},
		{"typing.List[int]", "list[int]"},
		{"set[str]", "set[str]"},
		{"frozenset[int]", "set[int]"},
		{"collections.abc.Sequence[float]", "sequence[float]"},
		{"Iterator[Object]", "sequence[Object]"},
		{"dict[str, Object]", "dict[str, Object]"},
		{"typing.Mapping[str, int]", "dict[str, int]"},
		{"list", "list[any]"},

		{"tuple[float, float, float]", "float[3]"},
		{"tuple[int, int]", "int[2]"},
		{"tuple[bool, bool]", "bool[2]"},
		{"tuple[int, ...]", "tuple[int]"},
		{"tuple[str, int]", "tuple[str | int]"},
		{"tuple[str, str]", "tuple[str]"},
		{"tuple", "tuple[any]"},

		{"typing.Optional[str]", "str | None"},
		{"str | None", "str | None"},
		{"typing.Union[int, float]", "int | float"},
		{"typing.Union[int, None]", "int | None"},
		{"int | float | None", "int | float | None"},
		{"Object | None", "Object | None"},

		{"typing.Literal['POINT', 'SUN']", "enum['POINT', 'SUN']"},
		{"Literal[1, 2, 3]", "enum['1', '2', '3']"},

		{"bpy_prop_collection[Modifier]", "bpy_prop_collection[Modifier]"},
		{"Callable[[int], None]", "any"},
		{"type[Modifier]", "any"},
		{"_T", "any"},
		{"Self", "Host"},
		{"'Object'", "Object"},
		{"list['Modifier']", "list[Modifier]"},
		{"mathutils.Vector", "Vector"},
	}
	for _, tt := range cases {
		t.Run(tt.src, func(t *testing.T) {
			got := lowerAnnotation(t, tt.src)
			if got.String() != tt.want {
				t.Errorf("lowered %q to %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestLowerVectorShape(t *testing.T) {
	ref := lowerAnnotation(t, "tuple[float, float, float]")
	if ref.Kind != catalog.KindVector {
		t.Fatalf("kind = %s, want vector", ref.Kind)
	}
	if ref.Size != 3 {
		t.Errorf("size = %d, want 3", ref.Size)
	}
	if ref.Elem == nil || ref.Elem.Name != catalog.PrimFloat {
		t.Errorf("elem = %+v, want float primitive", ref.Elem)
	}
}

func TestLowerMixedNumericTupleIsNotVector(t *testing.T) {
	ref := lowerAnnotation(t, "tuple[int, float]")
	if ref.Kind == catalog.KindVector {
		t.Fatal("mixed numeric tuple must not lower to a vector")
	}
	if ref.String() != "tuple[int | float]" {
		t.Errorf("got %s, want tuple[int | float]", ref)
	}
}

func TestLowerEnumValues(t *testing.T) {
	ref := lowerAnnotation(t, "typing.Literal['DATA_TRANSFER', 'MESH_CACHE', 'ARRAY']")
	if ref.Kind != catalog.KindEnum {
		t.Fatalf("kind = %s, want enum", ref.Kind)
	}
	want := []string{"DATA_TRANSFER", "MESH_CACHE", "ARRAY"}
	if len(ref.Values) != len(want) {
		t.Fatalf("values = %v, want %v", ref.Values, want)
	}
	for i := range want {
		if ref.Values[i] != want[i] {
			t.Errorf("value %d = %q, want %q", i, ref.Values[i], want[i])
		}
	}
}

func TestLowerUnionDedupes(t *testing.T) {
	ref := lowerAnnotation(t, "typing.Union[int, int, None]")
	if ref.Kind != catalog.KindPrimitive || ref.Name != catalog.PrimInt || !ref.Optional {
		t.Errorf("got %s (%+v), want optional int", ref, ref)
	}
}
