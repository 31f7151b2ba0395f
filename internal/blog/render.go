package blog

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// renderer converts Markdown to the HTML WordPress stores. Raw HTML
// passes through unchanged; blog authors embed it deliberately.
var renderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
	),
	goldmark.WithParserOptions(
		parser.WithAttribute(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// Rendered converts the document body to HTML. Every local image
// reference with an entry in UploadedImages is substituted with its
// remote asset URL first. References without an entry pass through
// untouched: that signals the upload step has not run for them, which
// higher-level validation catches, not the renderer.
func (b *Blog) Rendered() (string, error) {
	content := b.Content
	if len(b.UploadedImages) > 0 {
		content = RewriteImageRefs(content, b.UploadedImages)
	}

	var buf bytes.Buffer
	if err := renderer.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return buf.String(), nil
}
