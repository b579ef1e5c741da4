// Package assets minifies stylesheets, scripts, SVG and HTML.
package assets

import (
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

// Media types handled by Minifier.
const (
	MediaCSS  = "text/css"
	MediaJS   = "application/javascript"
	MediaSVG  = "image/svg+xml"
	MediaHTML = "text/html"
)

// Minifier wraps a configured tdewolff minifier.
type Minifier struct {
	m *minify.M
}

// NewMinifier returns a minifier for CSS, JavaScript, SVG and HTML. HTML
// minification keeps document, end tags and attribute quotes so output stays
// readable by strict parsers.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc(MediaCSS, css.Minify)
	m.AddFunc(MediaSVG, svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	m.Add(MediaHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &Minifier{m: m}
}

// MediaTypeForExt maps a file extension to a minifiable media type, or "".
func MediaTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".css":
		return MediaCSS
	case ".js":
		return MediaJS
	case ".svg":
		return MediaSVG
	case ".html", ".htm":
		return MediaHTML
	default:
		return ""
	}
}

// Bytes minifies data as mediatype.
func (m *Minifier) Bytes(mediatype string, data []byte) ([]byte, error) {
	return m.m.Bytes(mediatype, data)
}

// String minifies s as mediatype.
func (m *Minifier) String(mediatype, s string) (string, error) {
	return m.m.String(mediatype, s)
}

// File minifies data according to the extension of name. ok is false when
// the extension is not minifiable or minification failed; data is then
// returned unchanged.
func (m *Minifier) File(name string, data []byte) (out []byte, ok bool, err error) {
	mt := MediaTypeForExt(extOf(name))
	if mt == "" || mt == MediaHTML {
		return data, false, nil
	}
	minified, err := m.m.Bytes(mt, data)
	if err != nil {
		return data, false, err
	}
	return minified, true, nil
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
