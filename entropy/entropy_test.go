package entropy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRandomness32Bytes(t *testing.T) {
	random, err := GetRandom(nil, 32)
	require.NoError(t, err)
	require.Len(t, random, 32)
}

func TestNoDuplicates(t *testing.T) {
	random1, err := GetRandom(nil, 32)
	require.NoError(t, err)
	random2, err := GetRandom(nil, 32)
	require.NoError(t, err)
	require.False(t, bytes.Equal(random1, random2),
		"randomness was the same for two samples")
}

func TestGetRandomFallsBackOnShortRead(t *testing.T) {
	// a source unable to deliver the requested amount triggers the fallback
	short := strings.NewReader("a")
	random, err := GetRandom(short, 32)
	require.NoError(t, err)
	require.Len(t, random, 32)
}

func TestStreamIsUsable(t *testing.T) {
	stream := Stream(nil)
	require.NotNil(t, stream)

	seeded := Stream(strings.NewReader("some user entropy, any length"))
	require.NotNil(t, seeded)
}
