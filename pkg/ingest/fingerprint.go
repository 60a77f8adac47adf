package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Fingerprint returns a stable hex digest over the given inputs, in order.
// Callers compare fingerprints to decide whether a stored snapshot is stale
// relative to its source files.
func Fingerprint(inputs ...[]byte) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write(input)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintFile fingerprints a file's contents.
func FingerprintFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Fingerprint(data), nil
}
