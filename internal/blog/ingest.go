package blog

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// newHTMLConverter builds the HTML to Markdown converter used to
// ingest remote post content. Code blocks always come out fenced, with
// the fence language recovered from the rendered code element.
func newHTMLConverter() *md.Converter {
	converter := md.NewConverter("", true, &md.Options{
		CodeBlockStyle: "fenced",
		Fence:          "```",
	})

	converter.AddRules(md.Rule{
		Filter: []string{"pre"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			lang := codeBlockLanguage(selec)

			text := selec.Text()
			if code := selec.Find("code").First(); code.Length() > 0 {
				text = code.Text()
			}

			fenced := "\n\n```" + lang + "\n" + strings.TrimRight(text, "\n") + "\n```\n\n"

			return md.String(fenced)
		},
	})

	return converter
}

// codeBlockLanguage recovers the fence language from the code element
// inside a rendered block: a class of the form language-X maps to the
// fence tag X, anything else to the empty string.
func codeBlockLanguage(pre *goquery.Selection) string {
	code := pre.Find("code").First()
	if code.Length() == 0 {
		return ""
	}

	class, _ := code.Attr("class")
	for _, c := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok {
			return lang
		}
	}

	return ""
}

// SetContentFromHTML replaces the document body with the Markdown
// conversion of the given HTML, as stored by the remote side.
func (b *Blog) SetContentFromHTML(html string) error {
	markdown, err := newHTMLConverter().ConvertString(html)
	if err != nil {
		return fmt.Errorf("converting HTML to markdown: %w", err)
	}

	b.Content = markdown

	return nil
}
