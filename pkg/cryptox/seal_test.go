package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealRoundTrip(t *testing.T) {
	sealed, err := Seal("eyJhbGciOi.sensitive.token")
	require.NoError(t, err)
	require.NotContains(t, sealed, "sensitive")

	opened, err := Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "eyJhbGciOi.sensitive.token", opened)
}

func TestSealUsesFreshNonce(t *testing.T) {
	a, err := Seal("same value")
	require.NoError(t, err)
	b, err := Seal("same value")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestOpenRejectsTampering(t *testing.T) {
	sealed, err := Seal("value")
	require.NoError(t, err)

	tampered := []byte(sealed)
	tampered[len(tampered)-1] ^= 'x'
	_, err = Open(string(tampered))
	require.Error(t, err)

	_, err = Open("%%%not-base64%%%")
	require.Error(t, err)

	_, err = Open("c2hvcnQ") // valid base64, shorter than a nonce
	require.Error(t, err)
}
