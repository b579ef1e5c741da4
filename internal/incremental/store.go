package incremental

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
)

// Store loads and saves checksum indexes per project.
type Store interface {
	Load(root string) (Index, error)
	Save(root string, index Index) error
}

// FileStore keeps one indented JSON file per project under dir.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the state file used for root.
func (s *FileStore) Path(root string) (string, error) {
	key, err := ProjectKey(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Load returns the saved index for root. A missing file yields an empty index.
func (s *FileStore) Load(root string) (Index, error) {
	path, err := s.Path(root)
	if err != nil {
		return Index{}, cacheErr(err, "resolve checksum file", root)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Index{}, nil
		}
		return Index{}, cacheErr(err, "read checksum file", path)
	}
	index := Index{}
	if err := json.Unmarshal(data, &index); err != nil {
		return Index{}, cacheErr(err, "decode checksum file", path)
	}
	return index, nil
}

// Save atomically replaces the index for root.
func (s *FileStore) Save(root string, index Index) error {
	path, err := s.Path(root)
	if err != nil {
		return cacheErr(err, "resolve checksum file", root)
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return cacheErr(err, "create cache directory", s.dir)
	}
	if index == nil {
		index = Index{}
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return cacheErr(err, "encode checksums", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return cacheErr(err, "write checksum file", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return cacheErr(err, "replace checksum file", path)
	}
	return nil
}

func cacheErr(err error, msg, path string) error {
	return ferrors.WrapError(err, ferrors.CategoryCache, fmt.Sprintf("%s failed", msg)).
		WithSeverity(ferrors.SeverityWarning).
		WithContext("path", path).
		Build()
}

// MemoryStore keeps indexes in memory; used when persistence is disabled.
type MemoryStore struct {
	indexes map[string]Index
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indexes: make(map[string]Index)}
}

func (m *MemoryStore) Load(root string) (Index, error) {
	if ix, ok := m.indexes[root]; ok {
		return ix.Clone(), nil
	}
	return Index{}, nil
}

func (m *MemoryStore) Save(root string, index Index) error {
	m.indexes[root] = index.Clone()
	return nil
}
