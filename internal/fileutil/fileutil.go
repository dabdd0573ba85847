// Package fileutil provides small filesystem helpers shared across packages.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// fingerprintHeadBytes is how much of the file participates in the content
// hash. Hashing the whole file would dominate runtime for large videos; the
// head plus the size catches every realistic re-encode or replacement.
const fingerprintHeadBytes = 1 << 20

// CopyFile streams src to dst with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Fingerprint derives a stable identity for a media file from its size and
// the SHA-256 of its first megabyte.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.CopyN(hasher, file, fingerprintHeadBytes); err != nil && err != io.EOF {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	fmt.Fprintf(hasher, ":%d", info.Size())
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
