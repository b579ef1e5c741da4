package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SiteAssertions checks the state of a generated output tree.
type SiteAssertions struct {
	t       testing.TB
	baseDir string
}

// NewSiteAssertions returns assertions rooted at baseDir.
func NewSiteAssertions(t testing.TB, baseDir string) *SiteAssertions {
	return &SiteAssertions{t: t, baseDir: baseDir}
}

func (sa *SiteAssertions) path(rel string) string {
	return filepath.Join(sa.baseDir, filepath.FromSlash(rel))
}

// AssertFileExists validates that a file exists
func (sa *SiteAssertions) AssertFileExists(rels ...string) *SiteAssertions {
	sa.t.Helper()
	for _, rel := range rels {
		if st, err := os.Stat(sa.path(rel)); err != nil {
			sa.t.Errorf("Expected file to exist: %s", rel)
		} else if st.IsDir() {
			sa.t.Errorf("Expected %s to be a file, but it's a directory", rel)
		}
	}
	return sa
}

// AssertNotExists validates that nothing exists at rel
func (sa *SiteAssertions) AssertNotExists(rel string) *SiteAssertions {
	sa.t.Helper()
	if _, err := os.Stat(sa.path(rel)); err == nil {
		sa.t.Errorf("Expected %s to not exist", rel)
	}
	return sa
}

// AssertFileContains validates that a file contains every expected fragment
func (sa *SiteAssertions) AssertFileContains(rel string, fragments ...string) *SiteAssertions {
	sa.t.Helper()
	content, ok := sa.read(rel)
	if !ok {
		return sa
	}
	for _, f := range fragments {
		if !strings.Contains(content, f) {
			sa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", rel, f, content)
		}
	}
	return sa
}

// AssertFileNotContains validates that a file contains none of the fragments
func (sa *SiteAssertions) AssertFileNotContains(rel string, fragments ...string) *SiteAssertions {
	sa.t.Helper()
	content, ok := sa.read(rel)
	if !ok {
		return sa
	}
	for _, f := range fragments {
		if strings.Contains(content, f) {
			sa.t.Errorf("Expected file %s not to contain %q", rel, f)
		}
	}
	return sa
}

// AssertInOrder validates that the fragments all occur in the file, each
// after the previous one.
func (sa *SiteAssertions) AssertInOrder(rel string, fragments ...string) *SiteAssertions {
	sa.t.Helper()
	content, ok := sa.read(rel)
	if !ok {
		return sa
	}
	offset := 0
	for _, f := range fragments {
		idx := strings.Index(content[offset:], f)
		if idx < 0 {
			sa.t.Errorf("Expected %q after offset %d in %s\nActual content:\n%s", f, offset, rel, content)
			return sa
		}
		offset += idx + len(f)
	}
	return sa
}

// Content reads and returns the content of a file
func (sa *SiteAssertions) Content(rel string) string {
	sa.t.Helper()
	content, err := os.ReadFile(sa.path(rel))
	if err != nil {
		sa.t.Fatalf("Failed to read file %s: %v", rel, err)
	}
	return string(content)
}

func (sa *SiteAssertions) read(rel string) (string, bool) {
	sa.t.Helper()
	content, err := os.ReadFile(sa.path(rel))
	if err != nil {
		sa.t.Errorf("Failed to read file %s: %v", rel, err)
		return "", false
	}
	return string(content), true
}
