package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/courseforge/internal/config"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// TreeLoader builds a content tree from a root directory.
type TreeLoader interface {
	Load(root string) (*Tree, error)
}

// Loader mirrors the filesystem into a Tree, honouring `source` redirects
// declared in directory config files. It never reads file contents.
type Loader struct {
	logger *slog.Logger
}

// NewLoader returns a filesystem tree loader.
func NewLoader() *Loader {
	return &Loader{logger: slog.Default()}
}

// Load builds the tree rooted at root.
func (l *Loader) Load(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot resolve content root").
			WithContext("root", root).
			Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "content root not accessible").
			WithContext("root", abs).
			Fatal().
			Build()
	}
	if !info.IsDir() {
		return nil, ferrors.FileSystemError("content root is not a directory").
			WithCause(fmt.Errorf("%w: %s", ErrNotDirectory, abs)).
			WithContext("root", abs).
			Fatal().
			Build()
	}

	rootNode := NewDir(abs)
	if err := l.loadDir(rootNode, nil); err != nil {
		return nil, err
	}
	return &Tree{Root: rootNode}, nil
}

// loadDir resolves dir's discovery path and attaches its children. chain holds
// the resolved discovery paths of the directories currently being listed.
func (l *Loader) loadDir(dir *Node, chain []string) error {
	if err := resolveDiscovery(dir); err != nil {
		return err
	}

	resolved, err := filepath.EvalSymlinks(dir.DiscoveryPath)
	if err != nil {
		resolved = dir.DiscoveryPath
	}
	if slices.Contains(chain, resolved) {
		return ferrors.ContentError("source redirect cycle").
			WithCause(fmt.Errorf("%w: %s", ErrRedirectCycle, dir.DiscoveryPath)).
			WithContext("dir", dir.SourcePath).
			WithContext("discovery_path", dir.DiscoveryPath).
			Build()
	}
	chain = append(chain, resolved)

	entries, err := os.ReadDir(dir.DiscoveryPath)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot list directory").
			WithContext("dir", dir.DiscoveryPath).
			Fatal().
			Build()
	}
	// os.ReadDir already sorts by name.
	for _, entry := range entries {
		name := entry.Name()
		if name == config.FileName || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir.DiscoveryPath, name)
		info, err := os.Stat(path)
		if err != nil {
			l.logger.Warn("Skipping unreadable entry", logfields.Path(path), logfields.Error(err))
			continue
		}
		if !info.IsDir() {
			dir.AddChild(NewFile(path))
			continue
		}
		child := NewDir(path)
		dir.AddChild(child)
		if err := l.loadDir(child, chain); err != nil {
			return err
		}
	}
	return nil
}

// resolveDiscovery applies a `source` key from dir's config.yaml.
func resolveDiscovery(dir *Node) error {
	cfg, found := config.LoadDir(dir.SourcePath)
	if !found {
		return nil
	}
	source := cfg.Source()
	if source == "" {
		return nil
	}
	target := source
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir.SourcePath, source)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		cause := fmt.Errorf("%w: %s -> %s", ErrInvalidSourceRedirect, dir.SourcePath, target)
		if err != nil {
			cause = fmt.Errorf("%w: %s -> %s: %w", ErrInvalidSourceRedirect, dir.SourcePath, target, err)
		}
		return ferrors.ConfigError("invalid source redirect").
			WithCause(cause).
			WithContext("dir", dir.SourcePath).
			WithContext("source", source).
			WithContext("discovery_path", target).
			Build()
	}
	dir.DiscoveryPath = target
	return nil
}
