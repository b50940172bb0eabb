package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobpanov/compiler-explorer/internal/zb64"
)

func TestMigrateBareV1(t *testing.T) {
	m, err := Migrate(map[string]any{"version": float64(1)})
	require.NoError(t, err)

	s, err := fromValue(m)
	require.NoError(t, err)
	require.Len(t, s.Content, 1)

	row := s.Content[0]
	assert.Equal(t, NodeRow, row.Type)
	require.Len(t, row.Content, 2)

	editor, err := row.Content[0].EditorState()
	require.NoError(t, err)
	assert.Equal(t, "", editor.Source)
	assert.True(t, editor.Options.CompileOnChange)
	assert.False(t, editor.Options.ColouriseAsm)

	compiler, err := row.Content[1].CompilerState()
	require.NoError(t, err)
	assert.Equal(t, "", compiler.Compiler)
	assert.Equal(t, "", compiler.Options)
	assert.Empty(t, compiler.Filters)
}

func TestMigrateV2CarriesCompilerConfig(t *testing.T) {
	m, err := Migrate(map[string]any{
		"version":  float64(2),
		"source":   "int square(int n) { return n * n; }",
		"options":  "-O1",
		"compiler": "g142",
		"filterAsm": map[string]any{
			"colouriseAsm": true,
			"intel":        true,
		},
	})
	require.NoError(t, err)

	s, err := fromValue(m)
	require.NoError(t, err)
	row := s.Content[0]

	editor, err := row.Content[0].EditorState()
	require.NoError(t, err)
	assert.Equal(t, "int square(int n) { return n * n; }", editor.Source)
	assert.True(t, editor.Options.CompileOnChange)
	assert.True(t, editor.Options.ColouriseAsm, "colourise flag moves onto the editor")

	compiler, err := row.Content[1].CompilerState()
	require.NoError(t, err)
	assert.Equal(t, "g142", compiler.Compiler)
	assert.Equal(t, "-O1", compiler.Options)
	assert.Equal(t, map[string]bool{"intel": true}, compiler.Filters,
		"colourise flag is stripped from the compiler filters")
}

func TestMigrateDecompressesSourcez(t *testing.T) {
	m, err := Migrate(map[string]any{
		"version":   float64(3),
		"filterAsm": map[string]any{},
		"compilers": []any{
			map[string]any{
				"sourcez":  zb64.Compress("int x = 42;"),
				"compiler": "cg142",
				"options":  "",
			},
		},
	})
	require.NoError(t, err)

	s, err := fromValue(m)
	require.NoError(t, err)
	editor, err := s.Content[0].Content[0].EditorState()
	require.NoError(t, err)
	assert.Equal(t, "int x = 42;", editor.Source)
}

func TestMigrateCorruptSourcez(t *testing.T) {
	_, err := Migrate(map[string]any{
		"version":   float64(3),
		"filterAsm": map[string]any{},
		"compilers": []any{map[string]any{"sourcez": "!!corrupt!!"}},
	})
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
}

// A v1 value run through the whole chain and a v3 value built by hand
// from the intermediate steps must land on the identical v4 result.
func TestMigrateMonotonic(t *testing.T) {
	fromV1, err := Migrate(map[string]any{
		"version":  float64(1),
		"source":   "pub fn square(n: i32) -> i32 { n * n }",
		"options":  "-C opt-level=3",
		"compiler": "r1830",
	})
	require.NoError(t, err)

	fromV3, err := Migrate(map[string]any{
		"version":   float64(3),
		"filterAsm": map[string]any{},
		"compilers": []any{
			map[string]any{
				"source":   "pub fn square(n: i32) -> i32 { n * n }",
				"options":  "-C opt-level=3",
				"compiler": "r1830",
			},
		},
	})
	require.NoError(t, err)

	if diff := cmp.Diff(fromV1, fromV3); diff != "" {
		t.Errorf("migration results diverge (-v1 +v3):\n%s", diff)
	}
}

func TestMigrateCurrentVersionUnchanged(t *testing.T) {
	canonical := map[string]any{
		"version": float64(4),
		"content": []any{
			map[string]any{
				"type": "row",
				"content": []any{
					map[string]any{
						"type":           "component",
						"componentName":  "codeEditor",
						"componentState": map[string]any{"source": "int main() {}"},
					},
				},
			},
		},
	}
	got, err := Migrate(canonical)
	require.NoError(t, err)
	if diff := cmp.Diff(canonical, got); diff != "" {
		t.Errorf("current-version value changed (-in +out):\n%s", diff)
	}
}

func TestMigrateExpandsMinifiedKeys(t *testing.T) {
	minified := minifyKeys(map[string]any{
		"content": []any{
			map[string]any{"type": "component", "componentName": "compiler",
				"componentState": map[string]any{"compiler": "g142", "options": ""}},
		},
	}).(map[string]any)
	minified["version"] = float64(4)

	got, err := Migrate(minified)
	require.NoError(t, err)
	s, err := fromValue(got)
	require.NoError(t, err)
	cs, err := s.Content[0].CompilerState()
	require.NoError(t, err)
	assert.Equal(t, "g142", cs.Compiler)
}

func TestMigrateLeavesInputIntact(t *testing.T) {
	in := map[string]any{
		"version":  float64(1),
		"source":   "int main() {}",
		"options":  "-O1",
		"compiler": "g142",
	}
	want := map[string]any{
		"version":  float64(1),
		"source":   "int main() {}",
		"options":  "-O1",
		"compiler": "g142",
	}

	_, err := Migrate(in)
	require.NoError(t, err)
	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("input mutated by migration (-want +got):\n%s", diff)
	}
}

func TestMigrateRejections(t *testing.T) {
	cases := []struct {
		name string
		in   any
	}{
		{"not an object", []any{"version"}},
		{"missing version", map[string]any{"content": []any{}}},
		{"non-integer version", map[string]any{"version": "four"}},
		{"fractional version", map[string]any{"version": 2.5}},
		{"version zero", map[string]any{"version": float64(0)}},
		{"future version", map[string]any{"version": float64(99)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Migrate(c.in)
			var perr *ProtocolError
			require.ErrorAs(t, err, &perr)
		})
	}
}
