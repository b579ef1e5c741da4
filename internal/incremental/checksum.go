// Package incremental persists per-file content checksums so unchanged pages
// can be skipped on the next build.
package incremental

import (
	"crypto/md5" // #nosec G501 -- project key only, not a security boundary.
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"path/filepath"
)

// Index maps absolute source paths to lowercase hex SHA-256 digests.
type Index map[string]string

// Checksum returns the hex SHA-256 digest of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a copy of the index.
func (ix Index) Clone() Index {
	out := make(Index, len(ix))
	maps.Copy(out, ix)
	return out
}

// Unchanged reports whether path was recorded with the same checksum.
func (ix Index) Unchanged(path, checksum string) bool {
	prev, ok := ix[path]
	return ok && prev == checksum
}

// ProjectKey derives the state file stem for a content root: the MD5 hex of
// its resolved absolute path.
func ProjectKey(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	sum := md5.Sum([]byte(abs)) // #nosec G401
	return hex.EncodeToString(sum[:]), nil
}
