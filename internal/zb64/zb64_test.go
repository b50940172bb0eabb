package zb64

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"",
		"x",
		"(version:4,content:!())",
		strings.Repeat("int main() { return 0; }\n", 500),
		"héllo wörld ünïcode",
	} {
		packed := Compress(s)
		back, err := Decompress(packed)
		require.NoError(t, err, "decompress %q", s)
		assert.Equal(t, s, back)
	}
}

func TestOutputIsURLSafe(t *testing.T) {
	packed := Compress(strings.Repeat("some repetitive session state text ", 100))
	assert.NotContains(t, packed, "+")
	assert.NotContains(t, packed, "/")
	assert.NotContains(t, packed, "=")
}

func TestCompactsRepetitiveText(t *testing.T) {
	plain := strings.Repeat("void f();\n", 400)
	packed := Compress(plain)
	assert.Less(t, len(packed), len(plain)/2)
}

func TestDecompressRejectsCorruption(t *testing.T) {
	// invalid base64 alphabet
	_, err := Decompress("!!not-base64!!")
	assert.Error(t, err)

	// valid base64, garbage zstd stream
	_, err = Decompress("AAAAAAAA")
	assert.Error(t, err)
}
