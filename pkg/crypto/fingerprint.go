package crypto

import (
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// partSeparator cannot appear in form input after trimming, so joined parts
// never collide across boundaries.
const partSeparator = "\x00"

// Fingerprint returns the hex BLAKE2b-256 digest of parts. A non-empty key
// produces a keyed MAC so digests cannot be precomputed without the secret.
func Fingerprint(key []byte, parts ...string) string {
	h := newHash(key)
	for i, part := range parts {
		if i > 0 {
			_, _ = h.Write([]byte(partSeparator))
		}
		_, _ = h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShortFingerprint truncates Fingerprint to n hex characters for use in cache keys.
func ShortFingerprint(key []byte, n int, parts ...string) string {
	full := Fingerprint(key, parts...)
	if n <= 0 || n >= len(full) {
		return full
	}
	return full[:n]
}

func newHash(key []byte) hash.Hash {
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// Unreachable: key length is bounded above.
		panic(err)
	}
	return h
}
