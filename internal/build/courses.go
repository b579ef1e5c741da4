package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/courseforge/internal/config"
	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/observability"
	"git.home.luguber.info/inful/courseforge/internal/templates"
)

// collectCourses returns the index entries for the top-level directories.
func collectCourses(root *content.Node) []templates.CourseEntry {
	var courses []templates.CourseEntry
	for _, dir := range root.Children() {
		if dir.IsFile || dir.IsSlidesDir() {
			continue
		}
		href := landingTarget(dir)
		if href == "" {
			continue
		}
		local, _ := config.LoadDir(dir.SourcePath)
		if local.Hidden() {
			slog.Debug("Hidden course", logfields.Path(dir.SourcePath))
			continue
		}
		courses = append(courses, templates.CourseEntry{
			Name:  dirTitle(dir, local),
			Href:  href,
			Alias: dir.IsAlias(),
		})
	}
	return courses
}

// writeIndex renders the site index listing every course.
func (r *buildRun) writeIndex(ctx context.Context) error {
	b := r.builder
	courses := collectCourses(r.tree.Root)
	data := templates.IndexData{
		SiteName:     r.global.String(config.KeySiteName),
		CoursesTitle: r.global.String(config.KeyCoursesTitle),
		Courses:      courses,
		Config:       r.global,
	}

	page, err := b.templates.RenderIndex(data)
	if err != nil {
		return renderErr(err, "index template failed", r.tree.Root)
	}
	page, err = r.post.Run(ctx, r.tree.Root, page)
	if err != nil {
		return err
	}
	rel, err := b.writer.WriteIndex(page)
	if err != nil {
		return err
	}
	r.report.Courses = len(courses)
	b.recorder.SetCourses(len(courses))
	observability.InfoContext(ctx, "Wrote index", logfields.Output(rel), logfields.Count(len(courses)))
	return nil
}
