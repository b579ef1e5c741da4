package processors

import (
	"bytes"
	"context"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/markdown"
)

// DownloadMarker is appended to markdown links pointing at downloadable files
// and turned into a CSS class after rendering.
const DownloadMarker = "{.download-link}"

// DownloadClass is the class given to download anchors.
const DownloadClass = "download-link"

var downloadExtensions = []string{
	".zip", ".rar", ".tar", ".gz", ".7z", ".pdf", ".exe",
	".dmg", ".bin", ".deb", ".rpm", ".appimage",
}

// DownloadLinkMarker tags markdown links to binary downloads with DownloadMarker.
type DownloadLinkMarker struct{}

func (DownloadLinkMarker) Name() string { return "download-link-marker" }

func (DownloadLinkMarker) Process(_ context.Context, _ *content.Node, text string) (string, error) {
	var edits []markdown.Edit
	for _, l := range markdown.ScanLinks(text) {
		if l.Image || !isDownload(l.Destination) {
			continue
		}
		if strings.HasPrefix(text[l.End:], DownloadMarker) {
			continue
		}
		edits = append(edits, markdown.Edit{Start: l.End, End: l.End, Replacement: DownloadMarker})
	}
	return markdown.ApplyEdits(text, edits)
}

func isDownload(href string) bool {
	href, _, _ = strings.Cut(href, "#")
	href, _, _ = strings.Cut(href, "?")
	return slices.Contains(downloadExtensions, strings.ToLower(path.Ext(href)))
}

// DownloadLinks converts anchors followed by DownloadMarker into anchors with
// the download class, removing the marker text.
type DownloadLinks struct{}

func (DownloadLinks) Name() string { return "download-links" }

func (DownloadLinks) Process(_ context.Context, _ *content.Node, text string) (string, error) {
	if !strings.Contains(text, DownloadMarker) {
		return text, nil
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return "", err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "a" {
				markDownload(c)
			}
			walk(c)
		}
	}
	walk(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func markDownload(a *html.Node) {
	next := a.NextSibling
	if next == nil || next.Type != html.TextNode || !strings.HasPrefix(next.Data, DownloadMarker) {
		return
	}
	next.Data = strings.TrimPrefix(next.Data, DownloadMarker)
	for i, attr := range a.Attr {
		if attr.Key == "class" {
			if !slices.Contains(strings.Fields(attr.Val), DownloadClass) {
				a.Attr[i].Val = strings.TrimSpace(attr.Val + " " + DownloadClass)
			}
			return
		}
	}
	a.Attr = append(a.Attr, html.Attribute{Key: "class", Val: DownloadClass})
}
