package build

import (
	"cmp"
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

// sortSlides orders slide files by leading number, then name.
func sortSlides(files []*content.Node) []*content.Node {
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b *content.Node) int {
		if c := cmp.Compare(content.SlideOrder(a.Name), content.SlideOrder(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return sorted
}

// renderSlideDeck renders every page of the slides directory of course and
// then the deck index.
func (r *buildRun) renderSlideDeck(ctx context.Context, course, slides *content.Node, renderCfg config.DirConfig) error {
	b := r.builder
	files := sortSlides(slides.MarkdownFiles())
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.visitMarkdown(ctx, f, renderCfg, true); err != nil {
			return err
		}
	}

	data := templates.SlidesIndexData{
		Title:       content.DisplayName(course.Name),
		Breadcrumbs: trail(contentsDir(course), course, r.homeTitle()),
		Config:      renderCfg,
	}
	for _, f := range files {
		data.Slides = append(data.Slides, templates.NavLink{
			Title: pageTitle(f),
			Href:  path.Join(slides.Slug(), f.Slug()+output.PageExt),
		})
	}

	page, err := b.templates.RenderSlidesIndex(data)
	if err != nil {
		return renderErr(err, "slides index template failed", slides)
	}
	page, err = r.post.Run(ctx, slides, page)
	if err != nil {
		return err
	}
	rel, err := b.writer.WriteSlidesIndex(slides, page)
	if err != nil {
		return err
	}
	r.report.Slides++
	observability.InfoContext(ctx, "Wrote slide deck", logfields.Path(slides.SourcePath), logfields.Output(rel), logfields.Count(len(files)))
	return nil
}
