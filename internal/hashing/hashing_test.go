package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumMatchesSHA256(t *testing.T) {
	want := sha256.Sum256([]byte("20210001Anna"))
	require.Equal(t, hex.EncodeToString(want[:]), Sum("20210001Anna"))
	assert.Equal(t, Sum("abc"), SumBytes([]byte("abc")))
	assert.Len(t, Sum(""), HexSize)
}

func TestSumIsDeterministic(t *testing.T) {
	assert.Equal(t, Sum("degree"), Sum("degree"))
	assert.NotEqual(t, Sum("degree"), Sum("degrees"))
}

func TestHasPrefixZeros(t *testing.T) {
	cases := []struct {
		hash string
		n    int
		want bool
	}{
		{"abc", 0, true},
		{"abc", -1, true},
		{"00abc", 2, true},
		{"00abc", 3, false},
		{"0", 2, false},
		{ZeroHash, HexSize, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HasPrefixZeros(c.hash, c.n), "%q/%d", c.hash, c.n)
	}
}

func TestIsHex(t *testing.T) {
	assert.True(t, IsHex(Sum("x")))
	assert.True(t, IsHex(ZeroHash))
	assert.False(t, IsHex("xyz"))
	assert.False(t, IsHex(Sum("x")[:10]))
}
