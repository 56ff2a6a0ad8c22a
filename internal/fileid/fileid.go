// Package fileid derives the identity of an indexed file: its store key (path relative
// to the indexed root) and its content hash.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// HashLen is the length of a content hash string.
const HashLen = sha256.Size * 2

// HashReader returns the lower-case hex SHA-256 of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the lower-case hex SHA-256 of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashFile streams the file at path through SHA-256.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}

// Key returns the store key for absPath: the path relative to root, slash-separated.
// Same file under the same root always yields the same key.
func Key(root, absPath string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(absPath))
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is not inside %s", absPath, root)
	}
	return filepath.ToSlash(rel), nil
}

// Abs joins a store key back onto root.
func Abs(root, key string) string {
	return filepath.Join(root, filepath.FromSlash(key))
}

// Ext returns the lower-case extension of path without the leading dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Hidden reports whether any element of the slash-separated key starts with a dot.
func Hidden(key string) bool {
	for _, part := range strings.Split(key, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
