package blog

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendered_BasicMarkdown(t *testing.T) {
	b := &Blog{Content: "# Heading\n\nSome **bold** prose.\n"}

	html, err := b.Rendered()
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRendered_SubstitutesUploadedImages(t *testing.T) {
	b := &Blog{
		Content: "![diagram](images/arch.png)\n",
		UploadedImages: map[string]string{
			"images/arch.png": "https://example.com/wp-content/uploads/arch.png",
		},
	}

	html, err := b.Rendered()
	require.NoError(t, err)

	assert.Contains(t, html, `src="https://example.com/wp-content/uploads/arch.png"`)
	assert.NotContains(t, html, "images/arch.png")
}

func TestRendered_RawHTMLPassesThrough(t *testing.T) {
	b := &Blog{Content: "before\n\n<iframe src=\"https://example.com/embed\"></iframe>\n"}

	html, err := b.Rendered()
	require.NoError(t, err)
	assert.Contains(t, html, "<iframe")
}

func TestRendered_GFMTable(t *testing.T) {
	b := &Blog{Content: "| a | b |\n| --- | --- |\n| 1 | 2 |\n"}

	html, err := b.Rendered()
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
}

func TestSetContentFromHTML_FencedCodeWithLanguage(t *testing.T) {
	b := &Blog{}

	err := b.SetContentFromHTML(
		`<p>intro</p><pre><code class="language-python">x = 1</code></pre>`)
	require.NoError(t, err)

	assert.Contains(t, b.Content, "intro")
	assert.Contains(t, b.Content, "```python\nx = 1\n```")
}

func TestSetContentFromHTML_FenceWithoutLanguage(t *testing.T) {
	b := &Blog{}

	err := b.SetContentFromHTML(`<pre><code>plain code</code></pre>`)
	require.NoError(t, err)
	assert.Contains(t, b.Content, "```\nplain code\n```")
}

func TestSetContentFromHTML_ParagraphsAndLinks(t *testing.T) {
	b := &Blog{}

	err := b.SetContentFromHTML(`<p>read <a href="https://example.com/docs">the docs</a></p>`)
	require.NoError(t, err)
	assert.Contains(t, b.Content, "[the docs](https://example.com/docs)")
}

// htmlOutline reduces rendered HTML to a per-block list of node name
// plus whitespace-normalized inner HTML, so two renderings compare on
// structure rather than formatting.
func htmlOutline(t *testing.T, rendered string) []string {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	require.NoError(t, err)

	var outline []string

	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		inner, err := s.Html()
		require.NoError(t, err)

		outline = append(outline, goquery.NodeName(s)+": "+strings.Join(strings.Fields(inner), " "))
	})

	return outline
}

func TestRendered_StableAcrossHTMLIngest(t *testing.T) {
	b := &Blog{Content: "## Why it works\n\n" +
		"Build with [Go](https://go.dev) and ship *fast*.\n\n" +
		"- first step\n- second step\n\n" +
		"```go\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```\n\n" +
		"Done.\n"}

	first, err := b.Rendered()
	require.NoError(t, err)

	// Download applies this same sequence to stored content: ingest the
	// rendered HTML back to Markdown and normalize blank lines.
	require.NoError(t, b.SetContentFromHTML(first))
	b.RemoveEmptyLines()

	assert.Contains(t, b.Content, "```go\n")

	second, err := b.Rendered()
	require.NoError(t, err)

	assert.Equal(t, htmlOutline(t, first), htmlOutline(t, second))
	assert.Contains(t, second, "fmt.Println(&quot;hi&quot;)")
}
