// Package cache decides when generated files and parsed schemas can be
// reused. Outputs are compared by content hash so unchanged builders are
// never rewritten.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// FileHasher fingerprints files and generated sources with SHA-256
type FileHasher struct{}

// NewFileHasher returns a hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile returns the hex digest of the file at path
func (fh *FileHasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	digest, err := sum(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return digest, nil
}

// HashContent returns the hex digest of content
func (fh *FileHasher) HashContent(content []byte) string {
	digest := sha256.Sum256(content)
	return hex.EncodeToString(digest[:])
}

// Unchanged reports whether the file at path already holds content.
// A missing file counts as changed.
func (fh *FileHasher) Unchanged(path string, content []byte) (bool, error) {
	onDisk, err := fh.HashFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	return onDisk == fh.HashContent(content), nil
}

func sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
