package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

var (
	imageTagRegex = regexp.MustCompile(`(?is)<img\s+[^>]*>`)
	loadingAttr   = regexp.MustCompile(`(?i)\sloading\s*=`)
)

// Render converts markdown to HTML. Raw HTML in the source is escaped.
func Render(markdownText string) string {
	text := strings.TrimSpace(markdownText)
	if text == "" {
		return ""
	}

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return template.HTMLEscapeString(text)
	}
	return lazyImages(out.String())
}

func lazyImages(html string) string {
	return imageTagRegex.ReplaceAllStringFunc(html, func(tag string) string {
		if loadingAttr.MatchString(tag) {
			return tag
		}
		return strings.Replace(tag, "<img ", `<img loading="lazy" `, 1)
	})
}
