// Package hashing provides the content digests used across the ledger:
// transaction integrity hashes, block hashes and document fingerprints.
package hashing

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HexSize is the length of an encoded digest.
const HexSize = chainhash.HashSize * 2

// ZeroHash is the previous-hash sentinel carried by the genesis block.
var ZeroHash = strings.Repeat("0", HexSize)

// Sum returns the lowercase hex SHA-256 digest of s.
func Sum(s string) string {
	return SumBytes([]byte(s))
}

// SumBytes returns the lowercase hex SHA-256 digest of b.
func SumBytes(b []byte) string {
	return hex.EncodeToString(chainhash.HashB(b))
}

// HasPrefixZeros reports whether the first n characters of h are all '0'.
// A non-positive n is always satisfied.
func HasPrefixZeros(h string, n int) bool {
	if n <= 0 {
		return true
	}
	if len(h) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if h[i] != '0' {
			return false
		}
	}
	return true
}

// IsHex reports whether s looks like an encoded digest.
func IsHex(s string) bool {
	if len(s) != HexSize {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
