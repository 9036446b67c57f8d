package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/mambacheck/internal/ast"
)

func TestBuiltinCatalogDecodes(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	names := make(map[string]ClassSpec)
	for _, cls := range c.Classes {
		names[cls.Name] = cls
	}
	for _, want := range []string{
		"object", "int", "float", "complex", "str", "bool", "None",
		"collection", "collection_iter", "list", "set", "tuple", "dict",
		"dict_keys", "dict_values", "range", "slice",
		"BaseException", "Exception", "ValueError", "StopIteration",
	} {
		_, ok := names[want]
		require.True(t, ok, "missing built-in class %s", want)
	}

	require.Equal(t, []string{"T"}, names["list"].Generic)
	require.Equal(t, []string{"K", "V"}, names["dict"].Generic)
	require.Equal(t, []string{"float", "complex"}, names["int"].Promotes)
	require.True(t, names["float"].Primitive)
	require.Equal(t, "str", c.Aliases["String"])
}

func TestBuiltinProgram(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	prog, err := c.Program()
	require.NoError(t, err)
	require.Equal(t, ModuleName, prog.Module)

	var float *ast.ClassDef
	aliases := 0
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.ClassDef:
			if s.Name.Value == "float" {
				float = s
			}
		case *ast.TypeAliasStmt:
			aliases++
		}
	}
	require.NotNil(t, float)
	require.Equal(t, len(c.Aliases), aliases)

	var add *ast.FunctionDef
	for _, m := range float.Methods() {
		if m.Name.Value == "__add__" {
			add = m
		}
	}
	require.NotNil(t, add, "float.__add__ missing: %s", spew.Sdump(float.Methods()))
	require.Len(t, add.Params, 2)
	require.Equal(t, "self", add.Params[0].Name.Value)
	require.Nil(t, add.Params[0].Type)
	require.Equal(t, "float", add.Params[1].Type.String())
	require.Equal(t, "float", add.ReturnType.String())
	require.NotZero(t, add.Token.Line, "positions are assigned")
}

func TestParseType(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"list[T]", "list[T]"},
		{"dict[str, list[int]]", "dict[str, list[int]]"},
		{"Optional[int]", "Optional[int]"},
		{"int | str | None", "int | str | None"},
		{"Callable[[int, str], bool]", "Callable[[int, str], bool]"},
		{"Callable[[], None]", "Callable[[], None]"},
		{"Callable[[int], Callable[[str], bool]]", "Callable[[int], Callable[[str], bool]]"},
		{"  Tuple[ int ,str ]", "Tuple[int, str]"},
		{"mod.Thing", "mod.Thing"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseType(tt.src)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, src := range []string{"", "list[", "list[int", "int]", "Callable[int, str]", "[int]", "int |"} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseType(src)
			require.Error(t, err)
		})
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing class name", "classes:\n  - generic: [T]\n"},
		{"duplicate class", "classes:\n  - name: A\n  - name: A\n"},
		{"promotes on non-primitive", "classes:\n  - name: A\n    promotes: [B]\n"},
		{"variadic not last", "functions:\n  - name: f\n    params:\n      - {name: a, type: int, variadic: true}\n      - {name: b, type: int}\n"},
		{"param without type", "functions:\n  - name: f\n    params: [{name: a}]\n"},
		{"bad yaml", "classes: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.yaml")
			require.Error(t, err)
		})
	}
}

func TestLoadAllMergesExtraStubs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vector.yaml")
	src := `
classes:
  - name: Vector
    generic: [T]
    methods:
      - {name: dot, params: [{name: other, type: "Vector[T]"}], returns: T}
functions:
  - {name: zeros, params: [{name: n, type: int}], returns: "Vector[float]"}
aliases:
  Vec: Vector
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	c, err := LoadAll([]string{path})
	require.NoError(t, err)
	require.Equal(t, "Vector", c.Classes[len(c.Classes)-1].Name)
	require.Equal(t, "zeros", c.Functions[len(c.Functions)-1].Name)
	require.Equal(t, "Vector", c.Aliases["Vec"])

	_, err = c.Program()
	require.NoError(t, err)
}

func TestMergeRejectsRedeclaration(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	other, err := Parse([]byte("classes:\n  - name: int\n"), "dup.yaml")
	require.NoError(t, err)
	require.Error(t, c.Merge(other))
}
