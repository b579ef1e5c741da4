package processors

import (
	"context"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/markdown"
)

// InternalLinks rewrites links between source files to the generated pages.
// Targets found in the content tree get a relative path built from output
// slugs; other links only have `.md` (or a missing extension) replaced by
// `.html` and their path segments URL-encoded.
type InternalLinks struct{}

func (InternalLinks) Name() string { return "internal-links" }

func (InternalLinks) Process(_ context.Context, node *content.Node, text string) (string, error) {
	var edits []markdown.Edit
	for _, l := range markdown.ScanLinks(text) {
		if l.Image {
			continue
		}
		href := strings.TrimSpace(l.Destination)
		if href == "" || strings.HasPrefix(href, "#") || markdown.IsExternal(href) {
			continue
		}
		rewritten := rewriteHref(node, href)
		if rewritten == l.Destination {
			continue
		}
		edits = append(edits, markdown.Edit{Start: l.DestStart, End: l.DestEnd, Replacement: rewritten})
	}
	return markdown.ApplyEdits(text, edits)
}

func rewriteHref(node *content.Node, href string) string {
	target, fragment, hasFragment := strings.Cut(href, "#")
	suffix := ""
	if hasFragment {
		suffix = "#" + fragment
	}

	if !strings.HasPrefix(target, "/") {
		if resolved := resolveTarget(node, target); resolved != nil {
			return relativeHref(node, resolved) + suffix
		}
	}

	switch {
	case strings.HasSuffix(strings.ToLower(target), content.MarkdownExt):
		target = target[:len(target)-len(content.MarkdownExt)] + ".html"
	case target != "" && !strings.HasSuffix(target, "/") && path.Ext(target) == "":
		target += ".html"
	}
	return encodePath(target) + suffix
}

func resolveTarget(node *content.Node, target string) *content.Node {
	dir := node
	if node.IsFile {
		dir = node.Parent()
	}
	if dir == nil {
		return nil
	}
	decoded, err := url.PathUnescape(target)
	if err != nil {
		decoded = target
	}
	found := content.Resolve(dir, decoded)
	if found == nil || found == dir {
		return nil
	}
	return found
}

// relativeHref computes the link from node's output directory to target's page.
func relativeHref(node, target *content.Node) string {
	from := node.AncestorSlugs()
	if !node.IsFile {
		from = append(from, node.Slug())
	}
	to := append(target.AncestorSlugs(), target.Slug())

	common := 0
	for common < len(from) && common < len(to) && from[common] == to[common] {
		common++
	}
	parts := make([]string, 0, len(from)-common+len(to)-common+1)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)

	rel := strings.Join(parts, "/")
	switch {
	case target.IsMarkdown():
		return rel + ".html"
	case target.IsFile:
		return rel + target.Extension
	default:
		return rel + "/contents.html"
	}
}

func encodePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		if s == "" || s == "." || s == ".." {
			continue
		}
		if decoded, err := url.PathUnescape(s); err == nil {
			s = decoded
		}
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
