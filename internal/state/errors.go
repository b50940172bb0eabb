package state

import "fmt"

// ProtocolError reports a state value whose version field is missing,
// non-integer, or outside the supported range. It is always fatal to the
// decode attempt; the decoder never guesses a version from shape.
type ProtocolError struct {
	Version int
	Reason  string
}

func (e *ProtocolError) Error() string {
	if e.Reason != "" {
		return "state: " + e.Reason
	}
	return fmt.Sprintf("state: unsupported version %d", e.Version)
}

// DecodeError reports a malformed wire payload: structured-text parse
// failure, decompression corruption, or a migrated value that fails
// validation. The decoder attempts the legacy object-literal fallback once
// before surfacing this.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "state: decode failed: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
