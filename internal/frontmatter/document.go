package frontmatter

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// Recognised front matter keys.
const (
	KeyTitle = "title"
	KeyDate  = "date"
	KeyType  = "type"
	KeyPrev  = "prev"
	KeyNext  = "next"
)

// TypeSlide selects the slide rendering path.
const TypeSlide = "slide"

// Document is a loaded markdown source.
type Document struct {
	// Raw holds the file bytes exactly as read; checksums are computed over it.
	Raw      []byte
	Content  string
	Metadata map[string]any
}

// Loader reads markdown documents.
type Loader interface {
	Load(path string) (*Document, error)
}

// FileLoader loads documents from the local filesystem.
type FileLoader struct{}

// NewFileLoader returns a filesystem document loader.
func NewFileLoader() *FileLoader { return &FileLoader{} }

// Load reads path and splits front matter from body. Malformed front matter
// is logged and the whole file is treated as body.
func (FileLoader) Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown %s: %w", path, err)
	}
	return Parse(path, raw), nil
}

// Parse builds a Document from raw bytes. path is only used for diagnostics.
func Parse(path string, raw []byte) *Document {
	doc := &Document{Raw: raw, Metadata: map[string]any{}}

	fm, body, had, err := Split(raw)
	if err != nil {
		slog.Warn("Malformed front matter, treating file as body", logfields.Path(path), logfields.Error(err))
		doc.Content = string(raw)
		return doc
	}
	if !had {
		doc.Content = string(body)
		return doc
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		slog.Warn("Invalid front matter YAML, treating file as body", logfields.Path(path), logfields.Error(err))
		doc.Content = string(raw)
		return doc
	}
	doc.Metadata = fields
	doc.Content = string(body)
	return doc
}

// Type returns the declared page type, or "".
func (d *Document) Type() string {
	s, _ := d.Metadata[KeyType].(string)
	return s
}
