// Package render turns a Markdown report into the HTML email document:
// title extraction, an anchored table of contents for the section
// headings, and a compact inline style.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"diy-research-agent/internal/domain/model"
)

// MaxEmailSize caps the rendered HTML; oversized reports are a rendering
// bug, not something to ship to a mailbox.
const MaxEmailSize = 500_000

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		ghtml.WithHardWraps(),
	),
)

// TOCEntry is one anchor of the rendered table of contents.
type TOCEntry struct {
	Title  string
	Anchor string
	Level  int
}

// Email renders the report into a full HTML document.
func Email(report *model.Report) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(report.MarkdownReport), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	title := Title(report.MarkdownReport)
	toc := renderTOC(TOC(report.MarkdownReport))

	doc := fmt.Sprintf(`<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>%s</style>
  </head>
  <body>
    <div class="email-container">
      <header>
        <h1>%s</h1>
        <p class="intro">Premium DIY-Report &ndash; automatisch generiert, bitte lokal pruefen.</p>
      </header>
      %s
      <div class="content">
%s      </div>
    </div>
  </body>
</html>`, styles, html.EscapeString(title), toc, body.String())

	if len(doc) > MaxEmailSize {
		return "", fmt.Errorf("rendered email exceeds %d bytes", MaxEmailSize)
	}
	return doc, nil
}

// Subject derives the mail subject from the short summary's first
// sentence, falling back to the report title.
func Subject(report *model.Report) string {
	headline := strings.TrimSpace(strings.SplitN(report.ShortSummary, ".", 2)[0])
	if headline == "" {
		headline = Title(report.MarkdownReport)
	}
	return "Premium DIY-Report: " + headline
}

// Title returns the first h1 of the Markdown, or a default.
func Title(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return "DIY-Projekt"
}

// TOC collects h2/h3 headings with slug anchors matching goldmark's
// auto heading IDs.
func TOC(markdown string) []TOCEntry {
	var entries []TOCEntry
	for _, line := range strings.Split(markdown, "\n") {
		switch {
		case strings.HasPrefix(line, "### "):
			text := strings.TrimSpace(line[4:])
			entries = append(entries, TOCEntry{Title: text, Anchor: Slugify(text), Level: 3})
		case strings.HasPrefix(line, "## "):
			text := strings.TrimSpace(line[3:])
			entries = append(entries, TOCEntry{Title: text, Anchor: Slugify(text), Level: 2})
		}
	}
	return entries
}

var slugRx = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases and strips a heading down to an anchor id.
func Slugify(text string) string {
	slug := strings.Trim(slugRx.ReplaceAllString(strings.ToLower(text), "-"), "-")
	if slug == "" {
		return "section"
	}
	return slug
}

func renderTOC(entries []TOCEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<nav class="toc"><h2>Inhalt</h2><ul>`)
	for _, e := range entries {
		class := "toc-item"
		if e.Level == 3 {
			class = "toc-subitem"
		}
		fmt.Fprintf(&b, `<li class=%q><a href="#%s">%s</a></li>`, class, e.Anchor, html.EscapeString(e.Title))
	}
	b.WriteString("</ul></nav>")
	return b.String()
}

const styles = `
body { font-family: -apple-system, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: #222; }
.email-container { max-width: 720px; margin: 0 auto; padding: 16px; }
header h1 { margin-bottom: 4px; }
.intro { color: #666; font-size: 14px; }
.toc { background: #f6f6f6; border-radius: 6px; padding: 12px 16px; margin: 16px 0; }
.toc ul { margin: 0; padding-left: 18px; }
.toc-subitem { margin-left: 14px; font-size: 14px; }
.content table { border-collapse: collapse; width: 100%; }
.content th, .content td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
`
