package state

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacobpanov/compiler-explorer/internal/rison"
	"github.com/jacobpanov/compiler-explorer/internal/zb64"
)

func sampleState(source string) *SessionState {
	return &SessionState{
		Version: CurrentVersion,
		Content: []*LayoutNode{
			{
				Type: NodeRow,
				Content: []*LayoutNode{
					{
						Type:          NodeComponent,
						ComponentName: ComponentEditor,
						ComponentState: map[string]any{
							"source": source,
							"lang":   "c++",
							"options": map[string]any{
								"compileOnChange": true,
								"colouriseAsm":    false,
							},
						},
					},
					{
						Type:          NodeComponent,
						ComponentName: ComponentCompiler,
						ComponentState: map[string]any{
							"compiler": "g142",
							"options":  "-O3 -std=c++20",
							"filters": map[string]any{
								"intel":  true,
								"labels": true,
							},
						},
					},
				},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	s := sampleState("int square(int num) {\n    return num * num;\n}\n")

	fragment, err := SerialiseState(s)
	require.NoError(t, err)

	back, err := DeserialiseState(fragment)
	require.NoError(t, err)
	if diff := cmp.Diff(s, back); diff != "" {
		t.Errorf("round trip not lossless (-in +out):\n%s", diff)
	}
}

func TestRoundTripDeepNesting(t *testing.T) {
	s := &SessionState{
		Version: CurrentVersion,
		Content: []*LayoutNode{
			{
				Type: NodeColumn,
				Content: []*LayoutNode{
					sampleState("top").Content[0],
					sampleState("bottom").Content[0],
				},
			},
		},
	}
	fragment, err := SerialiseState(s)
	require.NoError(t, err)
	back, err := DeserialiseState(fragment)
	require.NoError(t, err)
	if diff := cmp.Diff(s, back); diff != "" {
		t.Errorf("round trip not lossless (-in +out):\n%s", diff)
	}
}

func TestSerialiseMinifiesKeys(t *testing.T) {
	fragment, err := SerialiseState(sampleState("int main() {}"))
	require.NoError(t, err)
	if !strings.HasPrefix(fragment, "(z:") {
		assert.NotContains(t, fragment, "componentState")
		assert.NotContains(t, fragment, "componentName")
		assert.Contains(t, fragment, "version:4")
	}
}

func TestSerialiseCompressesLargeStates(t *testing.T) {
	s := sampleState(strings.Repeat("int square(int num) { return num * num; }\n", 300))
	fragment, err := SerialiseState(s)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fragment, "(z:"), "large repetitive state should compress")

	back, err := DeserialiseState(fragment)
	require.NoError(t, err)
	editor, err := back.Content[0].Content[0].EditorState()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("int square(int num) { return num * num; }\n", 300), editor.Source)
}

// The encoder must pick the compressed form exactly when it is at most
// 80% of the uncompressed length. Rebuild both candidate forms here and
// check the choice against the measured lengths.
func TestCompactionThreshold(t *testing.T) {
	for _, s := range []*SessionState{
		sampleState("int main() {}"),
		sampleState(strings.Repeat("void f(int);\n", 50)),
		sampleState(strings.Repeat("int square(int num) { return num * num; }\n", 300)),
	} {
		fragment, err := SerialiseState(s)
		require.NoError(t, err)

		m, err := s.toValue()
		require.NoError(t, err)
		minified := minifyKeys(m).(map[string]any)
		minified["version"] = CurrentVersion
		encoded, err := rison.Encode(minified)
		require.NoError(t, err)
		uncompressed := rison.Quote(encoded)

		wrapped, err := rison.Encode(map[string]any{"z": zb64.Compress(uncompressed)})
		require.NoError(t, err)
		compressed := rison.Quote(wrapped)

		if float64(len(compressed)) <= 0.8*float64(len(uncompressed)) {
			assert.Equal(t, compressed, fragment, "compressed form meets the savings threshold")
		} else {
			assert.Equal(t, uncompressed, fragment, "savings below threshold keeps the uncompressed form")
		}
	}
}

func TestDeserialiseLegacyJSON(t *testing.T) {
	// Prehistoric links: a URL-encoded JSON object literal, invalid as
	// structured text, must decode via the fallback.
	for _, text := range []string{
		`{"version":1}`,
		`%7B%22version%22%3A1%7D`,
	} {
		s, err := DeserialiseState(text)
		require.NoError(t, err, "decode %q", text)
		assert.Equal(t, CurrentVersion, s.Version)
		require.Len(t, s.Content, 1)
		assert.Equal(t, NodeRow, s.Content[0].Type)
	}
}

func TestDeserialiseSurfacesFirstError(t *testing.T) {
	// Invalid as structured text and as legacy JSON: the structured-text
	// error wins, since that path runs first.
	for _, text := range []string{"(((", "%GG", "!z"} {
		_, err := DeserialiseState(text)
		var derr *DecodeError
		require.ErrorAs(t, err, &derr, "decode %q", text)
	}
}

func TestDeserialiseCorruptWrapper(t *testing.T) {
	for _, text := range []string{
		"(z:'')",       // decompresses to nothing
		"(z:AAAAAAAA)", // not a valid compressed stream
	} {
		_, err := DeserialiseState(text)
		var derr *DecodeError
		require.ErrorAs(t, err, &derr, "decode %q", text)
	}
}

func TestDeserialiseFutureVersion(t *testing.T) {
	_, err := DeserialiseState("(version:99)")
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 99, perr.Version)
}

func TestDeserialiseMissingContent(t *testing.T) {
	_, err := DeserialiseState("(version:4)")
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
}

func TestCompilersCollector(t *testing.T) {
	s := sampleState("int main() {}")
	refs := s.Compilers()
	require.Len(t, refs, 1)
	assert.Equal(t, "g142", refs[0].Compiler)
	assert.Equal(t, "-O3 -std=c++20", refs[0].Options)
	assert.Equal(t, map[string]bool{"intel": true, "labels": true}, refs[0].Filters)
}
