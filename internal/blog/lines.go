package blog

import (
	"regexp"
	"strings"
)

// blockMarkers are the prefixes of lines that need a preceding blank
// line to start a new block: headings, list items, strikeout and
// fences.
var blockMarkers = []string{"#", "-", "*", "1.", "~", "`"}

// RemoveEmptyLines deletes the excess blank lines that HTML to
// Markdown conversion introduces between prose lines. A blank line is
// kept when it is structurally significant: inside a fenced code block
// (unless the next line closes the fence), immediately before a line
// starting a heading, list or fence, and around Setext-style heading
// underlines (a line of -- or == two lines below or one line above).
func RemoveEmptyLines(content string) string {
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var result []string

	inCodeBlock := false

	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
		}

		if line != "\n" {
			result = append(result, line)
			continue
		}

		if inCodeBlock {
			if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "```") {
				result = append(result, line)
			}

			continue
		}

		if i+1 < len(lines) && startsBlock(lines[i+1]) {
			result = append(result, line)
			continue
		}

		if i+2 < len(lines) && isSetextUnderline(lines[i+2]) {
			result = append(result, line)
			continue
		}

		if i > 0 && isSetextUnderline(lines[i-1]) {
			result = append(result, line)
		}
	}

	return strings.Join(result, "")
}

func startsBlock(line string) bool {
	for _, marker := range blockMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}

	return false
}

func isSetextUnderline(line string) bool {
	return strings.HasPrefix(line, "--") || strings.HasPrefix(line, "==")
}

var (
	codeBlockPattern = regexp.MustCompile("(?ms)(^```.*?$)(.*?)(^```$)")
	spanTagPattern   = regexp.MustCompile(`</?span[^>]*?>`)
)

// RemoveSpanTagsFromCode strips stray span markup from fenced code
// blocks. A WordPress content-filter upgrade once corrupted stored
// code blocks to contain their rendered HTML; this undoes that. Blocks
// fenced as html keep their span tags, which are legitimate content
// there.
func RemoveSpanTagsFromCode(markdown string) string {
	if !strings.Contains(markdown, "</span>") {
		return markdown
	}

	return codeBlockPattern.ReplaceAllStringFunc(markdown, func(block string) string {
		if strings.HasPrefix(block, "```html") {
			return block
		}

		m := codeBlockPattern.FindStringSubmatch(block)

		return m[1] + spanTagPattern.ReplaceAllString(m[2], "") + m[3]
	})
}

// HasSpanCorruption reports whether the document body still carries
// span markup, meaning span cleanup should run and the original be
// kept aside.
func (b *Blog) HasSpanCorruption() bool {
	return strings.Contains(b.Content, "</span>")
}

// RemoveSpanTags applies span cleanup to the document body.
func (b *Blog) RemoveSpanTags() {
	b.Content = RemoveSpanTagsFromCode(b.Content)
}

// RemoveEmptyLines applies blank-line normalization to the document
// body.
func (b *Blog) RemoveEmptyLines() {
	b.Content = RemoveEmptyLines(b.Content)
}
