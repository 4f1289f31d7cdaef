package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// ContentHash returns the BLAKE3 digest of data as a hex string. It is
// used to tag stored payloads in metadata events so that two writes of
// the same content are recognizable across log lines.
func ContentHash(data []byte) string {
	digest := blake3.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// ShortContentHash returns the first 16 hex characters of ContentHash,
// enough to correlate events without flooding the log.
func ShortContentHash(data []byte) string {
	return ContentHash(data)[:16]
}
