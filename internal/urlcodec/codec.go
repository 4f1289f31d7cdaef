package urlcodec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

/*
Responsibilities
- Map a validated HTTPS URL to a flat object-store key
- Map a key back to the exact URL string it was derived from

Encoding Characteristics
- Total and deterministic over the URL's exact bytes
- Injective: distinct URLs never share a key
- Reversible without out-of-band metadata
- Alphabet restricted to url-safe base64 (no '/', no control bytes)

Padding is stripped on encode and recomputed on decode from the
encoded length, so a key has exactly one canonical spelling.
*/

// StorageSuffix marks a key as holding a compressed artifact. It is
// appended after encoding and stripped before decoding.
const StorageSuffix = ".gz"

// Encode derives the storage key for a URL. The caller is expected to
// have validated the URL already (urlutil.ValidateHTTPS); Encode itself
// is total over arbitrary strings.
func Encode(rawURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rawURL)) + StorageSuffix
}

// EncodePath derives the path segment used in service URLs: the same
// encoding as Encode without the storage suffix.
func EncodePath(rawURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rawURL))
}

// Decode reverses Encode. The key must carry the storage suffix; the
// remainder is decoded as unpadded url-safe base64. Keys that cannot be
// an output of Encode produce a CodecError; the decoded string is NOT
// validated as a URL here. That gate belongs to the caller.
func Decode(key string) (string, *CodecError) {
	trimmed, found := strings.CutSuffix(key, StorageSuffix)
	if !found {
		return "", &CodecError{
			Message: fmt.Sprintf("key %q does not end with %q", key, StorageSuffix),
			Cause:   ErrCauseMissingSuffix,
		}
	}
	return DecodePath(trimmed)
}

// DecodePath reverses EncodePath. Padding characters are tolerated on
// input (stripped before decoding) so that externally padded spellings
// of the same key still round-trip, but Encode never emits them.
func DecodePath(encoded string) (string, *CodecError) {
	encoded = strings.TrimRight(encoded, "=")

	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", &CodecError{
			Message: fmt.Sprintf("cannot decode %q: %v", encoded, err),
			Cause:   ErrCauseNotBase64,
		}
	}
	return string(decoded), nil
}
