package utils

import "github.com/segmentio/fasthash/fnv1a"

func U64ToBytes(u uint64) []byte {
	return []byte{
		byte(u >> 56), byte(u >> 48), byte(u >> 40), byte(u >> 32),
		byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u),
	}
}

// FingerprintString returns the 64-bit FNV-1a hash of s.
func FingerprintString(s string) uint64 {
	return fnv1a.HashString64(s)
}

// FingerprintStrings hashes parts in order. Part boundaries are significant:
// ("ab", "c") and ("a", "bc") hash differently.
func FingerprintStrings(parts ...string) uint64 {
	h := fnv1a.Init64
	for _, p := range parts {
		h = fnv1a.AddUint64(h, uint64(len(p)))
		h = fnv1a.AddString64(h, p)
	}
	return h
}
