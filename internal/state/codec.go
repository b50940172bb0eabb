package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/jacobpanov/compiler-explorer/internal/rison"
	"github.com/jacobpanov/compiler-explorer/internal/zb64"
)

// compressedField is the sole field of the wrapper object that carries a
// compressed payload on the wire.
const compressedField = "z"

// minimalSavings is the fraction a compressed payload must shave off the
// uncompressed length before it is worth the decode-side complexity.
// Below that, the uncompressed form wins.
const minimalSavings = 0.2

// SerialiseState encodes a current-version session state into a URL-safe
// string. The layout tree is minified and encoded directly; if wrapping a
// compressed copy in a one-field object yields a materially shorter
// string, that form is returned instead.
func SerialiseState(s *SessionState) (string, error) {
	m, err := s.toValue()
	if err != nil {
		return "", err
	}
	minified := minifyKeys(m).(map[string]any)
	minified["version"] = CurrentVersion

	encoded, err := rison.Encode(minified)
	if err != nil {
		return "", err
	}
	uncompressed := rison.Quote(encoded)

	wrapped, err := rison.Encode(map[string]any{
		compressedField: zb64.Compress(uncompressed),
	})
	if err != nil {
		return "", err
	}
	compressed := rison.Quote(wrapped)

	if float64(len(compressed)) <= (1-minimalSavings)*float64(len(uncompressed)) {
		return compressed, nil
	}
	return uncompressed, nil
}

// DeserialiseState decodes a URL-safe string into a current-version
// session state. Interpretations are tried in a fixed order: the
// structured-text form (unwrapping and decompressing the one-field
// compressed wrapper when present), then a legacy URL-decoded JSON object
// literal for links that predate the structured-text format. If both
// fail, the structured-text error is surfaced, since that path failed
// first. Whatever value is obtained then runs through migration, so the
// result is always the current shape, never partially migrated.
func DeserialiseState(text string) (*SessionState, error) {
	value, err := decodeText(text)
	if err == nil {
		value, err = unwrapCompressed(value)
	}
	if err != nil {
		legacy, legacyErr := decodeLegacy(text)
		if legacyErr != nil {
			return nil, err
		}
		value = legacy
	}
	migrated, err := Migrate(value)
	if err != nil {
		return nil, err
	}
	return fromValue(migrated)
}

// decodeText runs the structured-text codec over a quoted wire string.
func decodeText(text string) (any, error) {
	plain, err := rison.Unquote(text)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	value, err := rison.Decode(plain)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return value, nil
}

// unwrapCompressed detects the compressed-payload wrapper and re-decodes
// its decompressed contents. A wrapper that decompresses to an empty
// string is corruption, not an empty state.
func unwrapCompressed(value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	packed, ok := m[compressedField].(string)
	if !ok {
		return value, nil
	}
	plain, err := zb64.Decompress(packed)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if plain == "" {
		return nil, &DecodeError{Err: errors.New("compressed payload decompressed to nothing")}
	}
	return decodeText(plain)
}

// decodeLegacy parses prehistoric links: a URL-encoded JSON object
// literal, from before the structured-text format existed.
func decodeLegacy(text string) (any, error) {
	plain, err := url.QueryUnescape(text)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(plain), &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("legacy payload is not an object")
	}
	return m, nil
}
