package build

import (
	"context"
	"fmt"
	"html/template"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/courseforge/internal/config"
	"git.home.luguber.info/inful/courseforge/internal/content"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/frontmatter"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/markdown"
	"git.home.luguber.info/inful/courseforge/internal/observability"
	"git.home.luguber.info/inful/courseforge/internal/output"
	"git.home.luguber.info/inful/courseforge/internal/templates"
)

// DateLayout formats page dates.
const DateLayout = "2006-01-02"

// hideNav is the prev/next front matter value that removes the link.
const hideNav = "none"

// pageKind selects the render path from front matter.
func pageKind(doc *frontmatter.Document) markdown.Kind {
	return markdown.ParseKind(doc.Type())
}

// renderPage runs the full page pipeline for a loaded markdown node and
// writes the result. want falls back to KindStandard when unsupported. It
// returns the output path and the render kind used.
func (r *buildRun) renderPage(ctx context.Context, node *content.Node, doc *frontmatter.Document, renderCfg config.DirConfig, want markdown.Kind) (string, markdown.Kind, error) {
	b := r.builder
	text, err := b.pre.Run(ctx, node, doc.Content)
	if err != nil {
		return "", 0, err
	}

	kind := markdown.Resolve(b.markdown, want)
	body, err := b.markdown.Render(kind, text)
	if err != nil {
		return "", kind, renderErr(err, "markdown render failed", node)
	}

	data := r.pageData(node, doc, body, kind, renderCfg)
	page, err := b.templates.RenderPage(kind, data)
	if err != nil {
		return "", kind, renderErr(err, "page template failed", node)
	}

	page, err = r.post.Run(ctx, node, page)
	if err != nil {
		return "", kind, err
	}
	rel, err := b.writer.WritePage(node, page)
	return rel, kind, err
}

func renderErr(err error, msg string, node *content.Node) error {
	return ferrors.WrapError(err, ferrors.CategoryRender, msg).
		WithContext("path", node.SourcePath).
		Fatal().
		Build()
}

func (r *buildRun) pageData(node *content.Node, doc *frontmatter.Document, body string, kind markdown.Kind, renderCfg config.DirConfig) templates.PageData {
	data := templates.PageData{
		Title:       pageTitle(node),
		Content:     template.HTML(body),
		Kind:        kind.String(),
		Date:        r.pageDate(node),
		Breadcrumbs: trail(node.AncestorSlugs(), node.Parent(), r.homeTitle()),
		Metadata:    doc.Metadata,
		Config:      renderCfg,
	}
	if kind == markdown.KindStandard {
		data.Chapter, data.HasChapter = content.ChapterNumber(node.Name)
		data.Prev, data.Next = chapterNav(node)
	}
	if fp, err := frontmatter.Fingerprint(doc.Metadata, doc.Content); err == nil {
		data.Fingerprint = fp
	} else {
		observability.WarnContext(context.Background(), "Fingerprint failed", logfields.Path(node.SourcePath), logfields.Error(err))
	}
	return data
}

func pageTitle(node *content.Node) string {
	if t := node.MetaString(frontmatter.KeyTitle); t != "" {
		return t
	}
	return content.DisplayName(node.Name)
}

// pageDate prefers front matter and falls back to the date resolver.
func (r *buildRun) pageDate(node *content.Node) string {
	switch v := node.Metadata[frontmatter.KeyDate].(type) {
	case time.Time:
		return v.Format(DateLayout)
	case nil:
	default:
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	if when, ok := r.builder.dates.LastModified(node.SourcePath); ok {
		return when.Format(DateLayout)
	}
	return ""
}

// chapterNav links the neighbouring markdown files of node in filename
// order. Front matter prev/next replace the computed link; "none" hides it.
func chapterNav(node *content.Node) (prev, next *templates.NavLink) {
	var siblings []*content.Node
	if p := node.Parent(); p != nil {
		siblings = p.MarkdownFiles()
	}
	for i, s := range siblings {
		if s != node {
			continue
		}
		if i > 0 {
			prev = siblingLink(siblings[i-1])
		}
		if i < len(siblings)-1 {
			next = siblingLink(siblings[i+1])
		}
	}
	return navOverride(node, frontmatter.KeyPrev, prev), navOverride(node, frontmatter.KeyNext, next)
}

func siblingLink(n *content.Node) *templates.NavLink {
	return &templates.NavLink{Title: content.DisplayName(n.Name), Href: n.Slug() + output.PageExt}
}

func navOverride(node *content.Node, key string, computed *templates.NavLink) *templates.NavLink {
	v := node.MetaString(key)
	switch {
	case v == "":
		return computed
	case strings.EqualFold(v, hideNav):
		return nil
	}
	stem := strings.TrimSuffix(path.Base(v), path.Ext(v))
	return &templates.NavLink{Title: content.DisplayName(stem), Href: v}
}

// trail links the site index and the contents page of start and each of
// its ancestor directories, as seen from the output directory from.
func trail(from []string, start *content.Node, home string) []templates.NavLink {
	var chain []*content.Node
	for p := start; p != nil && !p.IsRoot(); p = p.Parent() {
		if !p.IsSlidesDir() {
			chain = append([]*content.Node{p}, chain...)
		}
	}
	crumbs := []templates.NavLink{{Title: home, Href: relHref(from, output.IndexFile)}}
	for _, p := range chain {
		target := landingTarget(p)
		if target == "" {
			continue
		}
		crumbs = append(crumbs, templates.NavLink{Title: content.DisplayName(p.Name), Href: relHref(from, target)})
	}
	return crumbs
}

func (r *buildRun) homeTitle() string {
	return r.global.String(config.KeySiteName)
}

// relHref returns target (relative to the output root) as seen from the
// output directory fromDir.
func relHref(fromDir []string, target string) string {
	common := 0
	parts := strings.Split(target, "/")
	for common < len(fromDir) && common < len(parts)-1 && fromDir[common] == parts[common] {
		common++
	}
	up := strings.Repeat("../", len(fromDir)-common)
	return up + strings.Join(parts[common:], "/")
}
