package output

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// Template files that are never copied to the site.
var skippedAssetExts = []string{".html", ".md"}

const (
	faviconFile     = "favicon.svg"
	faviconFallback = "img/dark-favicon.svg"
)

// CopyAssets mirrors templateDir into the output root, minifying CSS, JS and
// SVG files. Templates and markdown are skipped. When the site has no
// favicon.svg the template's img/dark-favicon.svg is used.
func (w *FSWriter) CopyAssets(templateDir string) (int, error) {
	copied := 0
	err := filepath.WalkDir(templateDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == templateDir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || skipAsset(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(templateDir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := w.writeFile(filepath.ToSlash(rel), w.minify(rel, data)); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to copy template assets").
			WithContext("template_dir", templateDir).
			Build()
	}

	if !w.Exists(faviconFile) && w.Exists(faviconFallback) {
		data, err := os.ReadFile(w.abs(faviconFallback))
		if err == nil {
			err = w.writeFile(faviconFile, data)
		}
		if err != nil {
			slog.Warn("Failed to install fallback favicon", logfields.Error(err))
		}
	}
	return copied, nil
}

func skipAsset(name string) bool {
	for _, ext := range skippedAssetExts {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return true
		}
	}
	return false
}
