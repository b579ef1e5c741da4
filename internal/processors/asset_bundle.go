package processors

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"git.home.luguber.info/inful/courseforge/internal/assets"
	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// Bundle locations relative to the output root.
const (
	JSBundle  = "js/bundle.min.js"
	CSSBundle = "css/bundle.min.css"
)

var (
	jsPriority = map[string]int{
		"katex.min.js": 0, "auto-render.min.js": 1, "rough.min.js": 2,
		"apply_sketch.js": 3, "navigation.js": 4, "ui.js": 5,
	}
	cssPriority = map[string]int{"katex.min.css": 0, "base.css": 1}

	localScript = regexp.MustCompile(`(?i)<script\s+[^>]*?src=["'](/js/[^"':\s]+)["'][^>]*>\s*</script>`)
	localStyle  = regexp.MustCompile(`(?i)<link\s+[^>]*?href=["'](/css/[^"':\s]+)["'][^>]*>`)
)

// AssetBundle concatenates the template's js/ and css/ files into minified
// bundles, written on first use, and collapses the page's local script and
// stylesheet tags into a single tag each.
type AssetBundle struct {
	templateDir string
	outputDir   string
	minifier    *assets.Minifier

	once   sync.Once
	hasJS  bool
	hasCSS bool
}

// NewAssetBundle returns a bundler reading from templateDir and writing under outputDir.
func NewAssetBundle(templateDir, outputDir string, m *assets.Minifier) *AssetBundle {
	return &AssetBundle{templateDir: templateDir, outputDir: outputDir, minifier: m}
}

func (a *AssetBundle) Name() string { return "asset-bundle" }

func (a *AssetBundle) Process(_ context.Context, _ *content.Node, text string) (string, error) {
	a.once.Do(a.writeBundles)
	if a.hasJS {
		text = collapseTags(localScript, text, fmt.Sprintf(`<script src="/%s"></script>`, JSBundle))
	}
	if a.hasCSS {
		text = collapseTags(localStyle, text, fmt.Sprintf(`<link rel="stylesheet" href="/%s">`, CSSBundle))
	}
	return text, nil
}

// collapseTags replaces the first match of re with replacement and drops the rest.
func collapseTags(re *regexp.Regexp, text, replacement string) string {
	first := true
	return re.ReplaceAllStringFunc(text, func(string) string {
		if first {
			first = false
			return replacement
		}
		return ""
	})
}

func (a *AssetBundle) writeBundles() {
	js := a.concat("js", ".js", jsPriority)
	css := a.concat("css", ".css", cssPriority)
	if js != "" {
		a.hasJS = a.writeBundle(JSBundle, assets.MediaJS, js)
	}
	if css != "" {
		a.hasCSS = a.writeBundle(CSSBundle, assets.MediaCSS, css)
	}
}

func (a *AssetBundle) concat(sub, ext string, priority map[string]int) string {
	dir := filepath.Join(a.templateDir, sub)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	rank := func(name string) int {
		if p, ok := priority[name]; ok {
			return p
		}
		return 100
	}
	slices.SortFunc(names, func(x, y string) int {
		if c := cmp.Compare(rank(x), rank(y)); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})

	var b strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("Skipping unreadable asset in bundle", logfields.File(name), logfields.Error(err))
			continue
		}
		fmt.Fprintf(&b, "\n/* --- BUNDLED: %s --- */\n%s\n", name, data)
	}
	return b.String()
}

func (a *AssetBundle) writeBundle(rel, mediatype, src string) bool {
	out, err := a.minifier.String(mediatype, src)
	if err != nil {
		slog.Warn("Bundle minification failed, writing unminified", logfields.File(rel), logfields.Error(err))
		out = src
	}
	dst := filepath.Join(a.outputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		slog.Warn("Cannot create bundle directory, keeping original tags", logfields.Path(dst), logfields.Error(err))
		return false
	}
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		slog.Warn("Cannot write bundle, keeping original tags", logfields.Path(dst), logfields.Error(err))
		return false
	}
	return true
}

// HTMLMinify minifies the final page.
type HTMLMinify struct {
	minifier *assets.Minifier
}

// NewHTMLMinify returns a page minifier.
func NewHTMLMinify(m *assets.Minifier) *HTMLMinify { return &HTMLMinify{minifier: m} }

func (h *HTMLMinify) Name() string { return "html-minify" }

func (h *HTMLMinify) Process(_ context.Context, _ *content.Node, text string) (string, error) {
	return h.minifier.String(assets.MediaHTML, text)
}
