package shortener

import (
	"encoding/binary"

	"github.com/jxskiss/base62"
	"lukechampine.com/blake3"
)

const (
	saltLen         = 32
	digestPrefixLen = 5
)

// zeroSalt keys the first derivation attempt. Starting from a fixed salt
// makes identical (url, timestamp) payloads derive identical identifiers, so
// a repeated submission lands on its earlier entry instead of a new one.
var zeroSalt [saltLen]byte

// deriveID derives a candidate identifier from the raw request payload: the
// first five bytes of a keyed BLAKE3 digest over the URL and timestamp are
// read as a little-endian integer and base62 encoded.
func deriveID(salt *[saltLen]byte, rawURL, rawTimestamp string) string {
	h := blake3.New(32, salt[:])
	_, _ = h.Write([]byte(rawURL))
	_, _ = h.Write([]byte(rawTimestamp))
	digest := h.Sum(nil)

	// Only the low five bytes are populated, so the 128-bit little-endian
	// read collapses to a uint64.
	var buf [8]byte
	copy(buf[:digestPrefixLen], digest[:digestPrefixLen])

	return string(base62.FormatUint(binary.LittleEndian.Uint64(buf[:])))
}
