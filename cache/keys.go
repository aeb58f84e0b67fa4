package cache

import (
	"encoding/binary"
	"time"

	"github.com/Konsultn-Engineering/sqlgen/utils"
)

// Kind tells apart the artifacts cached for one source file.
type Kind uint8

const (
	KindHostFile Kind = iota
	KindGenerated
)

type FixedKey [24]byte

// GenerateFixedKey builds the key of a source file at a given modification
// time. A file that changes on disk gets a new key; entries under the old
// one age out of the cache.
func GenerateFixedKey(kind Kind, path string, modTime time.Time) FixedKey {
	var key FixedKey

	// Layout:
	// [0]:      Kind (1 byte)
	// [1-8]:    Path fingerprint (8 bytes)
	// [9-16]:   Modification time, Unix nanoseconds (8 bytes)
	// [17-23]:  Reserved

	key[0] = byte(kind)
	binary.BigEndian.PutUint64(key[1:9], utils.FingerprintString(path))
	binary.BigEndian.PutUint64(key[9:17], uint64(modTime.UnixNano()))

	return key
}

func (k FixedKey) Kind() Kind {
	return Kind(k[0])
}
