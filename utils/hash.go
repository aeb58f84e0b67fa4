package utils

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/segmentio/fasthash/fnv1a"
	"github.com/zeebo/blake3"
)

func Mix64(a, b uint64) uint64 {
	return fnv1a.AddUint64(fnv1a.AddUint64(fnv1a.Init64, a), b)
}

// SourceHash returns the hex encoded blake3 digest of data. Generated files
// record it to identify the template content they were built from.
func SourceHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileHash is SourceHash over the content of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
