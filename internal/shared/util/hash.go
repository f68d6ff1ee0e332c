package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns a hex sha256 over parts. Each part is length-prefixed so
// ("ab","c") and ("a","bc") hash differently.
func HashKey(parts ...[]byte) string {
	h := sha256.New()
	var prefix [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range prefix {
			prefix[i] = byte(n >> (56 - 8*i))
		}
		h.Write(prefix[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
