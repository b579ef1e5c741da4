package templates

import "html/template"

// NavLink is a titled href.
type NavLink struct {
	Title string
	Href  string
}

// PageData feeds base.html and slide.html.
type PageData struct {
	Title       string
	Content     template.HTML
	Kind        string
	Chapter     int
	HasChapter  bool
	Date        string
	Fingerprint string
	Prev        *NavLink
	Next        *NavLink
	// Breadcrumbs lead from the site index to the page's parent.
	Breadcrumbs []NavLink
	// Metadata is the page front matter.
	Metadata map[string]any
	// Config is the global config merged with the nearest directory config.
	Config map[string]any
}

// ContentsEntry is one line of a table of contents.
type ContentsEntry struct {
	Title      string
	Href       string
	Chapter    int
	HasChapter bool
	IsDir      bool
}

// ContentsGroup is a titled section of a table of contents.
type ContentsGroup struct {
	Title   string
	Entries []ContentsEntry
}

// ContentsData feeds contents.html.
type ContentsData struct {
	Title       string
	Groups      []ContentsGroup
	SlidesHref  string
	Breadcrumbs []NavLink
	Config      map[string]any
}

// CourseEntry is one course on the site index.
type CourseEntry struct {
	Name  string
	Href  string
	Alias bool
}

// IndexData feeds index.html.
type IndexData struct {
	SiteName     string
	CoursesTitle string
	Courses      []CourseEntry
	Config       map[string]any
}

// SlidesIndexData feeds slides.html.
type SlidesIndexData struct {
	Title       string
	Slides      []NavLink
	Breadcrumbs []NavLink
	Config      map[string]any
}
