package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(nil, "127.0.0.1", "curl/8.0")
	b := Fingerprint(nil, "127.0.0.1", "curl/8.0")
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestFingerprintSeparatesParts(t *testing.T) {
	require.NotEqual(t, Fingerprint(nil, "ab", "c"), Fingerprint(nil, "a", "bc"))
}

func TestFingerprintKeyed(t *testing.T) {
	plain := Fingerprint(nil, "message")
	keyed := Fingerprint([]byte("secret"), "message")
	require.NotEqual(t, plain, keyed)

	longKey := []byte(strings.Repeat("k", 100))
	require.Len(t, Fingerprint(longKey, "message"), 64)
}

func TestShortFingerprint(t *testing.T) {
	full := Fingerprint(nil, "x")
	require.Equal(t, full[:16], ShortFingerprint(nil, 16, "x"))
	require.Equal(t, full, ShortFingerprint(nil, 0, "x"))
	require.Equal(t, full, ShortFingerprint(nil, 500, "x"))
}
