// Package zb64 is a reversible string-compaction codec producing output in
// a URL-safe alphabet: zstd over unpadded base64url. It is the optional
// size-reduction half of the two-tier wire format; callers measure whether
// the result is actually smaller and skip it when it is not.
package zb64

import (
	"encoding/base64"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// encoder and decoder are reused across calls to avoid repeated
// initialization overhead; both are safe for concurrent use.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("zb64: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("zb64: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress returns the compacted, URL-safe form of s.
func Compress(s string) string {
	packed := encoder.EncodeAll([]byte(s), nil)
	return base64.RawURLEncoding.EncodeToString(packed)
}

// Decompress reverses Compress. Any corruption in the base64 text or the
// compressed stream is reported as an error; it never silently yields a
// truncated result.
func Decompress(s string) (string, error) {
	packed, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("zb64: invalid base64 text: %w", err)
	}
	plain, err := decoder.DecodeAll(packed, nil)
	if err != nil {
		return "", fmt.Errorf("zb64: corrupt compressed stream: %w", err)
	}
	return string(plain), nil
}
