package build

import (
	"context"
	"path"
	"slices"

	"git.home.luguber.info/inful/courseforge/internal/config"
	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/observability"
	"git.home.luguber.info/inful/courseforge/internal/output"
	"git.home.luguber.info/inful/courseforge/internal/templates"
)

// contentsTarget is the contents page of dir relative to the output root.
func contentsTarget(dir *content.Node) string {
	return path.Join(append(dir.AncestorSlugs(), dir.Slug(), output.ContentsFile)...)
}

// contentsDir is the output directory holding dir's pages.
func contentsDir(dir *content.Node) []string {
	return append(dir.AncestorSlugs(), dir.Slug())
}

// landingTarget is the page a link to dir should open, relative to the output
// root: its contents page when it lists markdown, else its slide deck index,
// else the landing page of the first subdirectory that has one. It is empty
// when nothing below dir is rendered.
func landingTarget(dir *content.Node) string {
	if canonical := dir.AliasTo(); canonical != nil {
		dir = canonical
	}
	if dir.ContainsMarkdown(false) {
		return contentsTarget(dir)
	}
	if slides := dir.SlidesDir(); slides != nil && len(slides.MarkdownFiles()) > 0 {
		return path.Join(append(contentsDir(dir), output.SlidesIndexFile)...)
	}
	for _, c := range dir.Children() {
		if c.IsFile || c.IsSlidesDir() {
			continue
		}
		if target := landingTarget(c); target != "" {
			return target
		}
	}
	return ""
}

// dirTitle is the local config name of dir, else its display name.
func dirTitle(dir *content.Node, local config.DirConfig) string {
	if name := local.String(config.KeyName); name != "" {
		return name
	}
	return content.DisplayName(dir.Name)
}

// writeContents renders the table of contents of a directory.
func (r *buildRun) writeContents(ctx context.Context, dir *content.Node, renderCfg config.DirConfig) error {
	b := r.builder
	local, _ := config.LoadDir(dir.SourcePath)
	if local == nil {
		local = config.DirConfig{}
	}

	data := templates.ContentsData{
		Title:       dirTitle(dir, local),
		Groups:      contentsGroups(dir, local),
		Breadcrumbs: trail(contentsDir(dir), dir.Parent(), r.homeTitle()),
		Config:      renderCfg,
	}
	if slides := dir.SlidesDir(); slides != nil && len(slides.MarkdownFiles()) > 0 {
		data.SlidesHref = output.SlidesIndexFile
	}

	page, err := b.templates.RenderContents(data)
	if err != nil {
		return renderErr(err, "contents template failed", dir)
	}
	page, err = r.post.Run(ctx, dir, page)
	if err != nil {
		return err
	}
	rel, err := b.writer.WriteContents(dir, page)
	if err != nil {
		return err
	}
	r.report.ContentsPages++
	observability.DebugContext(ctx, "Wrote contents page", logfields.Path(dir.SourcePath), logfields.Output(rel))
	return nil
}

// contentsEntries lists the markdown files and content subdirectories of dir.
func contentsEntries(dir *content.Node) []*content.Node {
	var out []*content.Node
	for _, c := range dir.Children() {
		switch {
		case c.IsMarkdown():
			out = append(out, c)
		case c.IsFile || c.IsSlidesDir():
		case landingTarget(c) != "":
			out = append(out, c)
		}
	}
	return out
}

func contentsEntry(dir, n *content.Node) templates.ContentsEntry {
	e := templates.ContentsEntry{Title: content.DisplayName(n.Name)}
	if n.IsFile {
		e.Href = n.Slug() + output.PageExt
		e.Chapter, e.HasChapter = content.ChapterNumber(n.Name)
		return e
	}
	e.IsDir = true
	e.Href = relHref(contentsDir(dir), landingTarget(n))
	return e
}

// contentsGroups arranges entries by the configured parts. An item matches
// a child by file name, name or slug. Unclaimed entries go to a trailing
// group titled by the appendices title, or to a single untitled group when
// no parts are configured.
func contentsGroups(dir *content.Node, local config.DirConfig) []templates.ContentsGroup {
	entries := contentsEntries(dir)
	parts := local.Groups()
	if len(parts) == 0 {
		if len(entries) == 0 {
			return nil
		}
		g := templates.ContentsGroup{}
		for _, n := range entries {
			g.Entries = append(g.Entries, contentsEntry(dir, n))
		}
		return []templates.ContentsGroup{g}
	}

	claimed := make(map[*content.Node]bool)
	groups := make([]templates.ContentsGroup, 0, len(parts)+1)
	for _, part := range parts {
		g := templates.ContentsGroup{Title: part.Title}
		for _, item := range part.Items {
			idx := slices.IndexFunc(entries, func(n *content.Node) bool { return matchesItem(n, item) })
			if idx < 0 || claimed[entries[idx]] {
				continue
			}
			claimed[entries[idx]] = true
			g.Entries = append(g.Entries, contentsEntry(dir, entries[idx]))
		}
		groups = append(groups, g)
	}

	rest := templates.ContentsGroup{Title: local.AppendicesTitle()}
	for _, n := range entries {
		if !claimed[n] {
			rest.Entries = append(rest.Entries, contentsEntry(dir, n))
		}
	}
	if len(rest.Entries) > 0 {
		groups = append(groups, rest)
	}
	return groups
}

func matchesItem(n *content.Node, item string) bool {
	return item == n.Name+n.Extension || item == n.Name || item == n.Slug()
}
