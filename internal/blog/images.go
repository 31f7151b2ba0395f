package blog

import (
	"net/url"
	"regexp"
	"sort"

	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

// markdownImagePattern matches a Markdown image reference
// ![alt](url "optional caption"), capturing alt text, URL and the
// optional caption separately so captions survive rewrites.
var markdownImagePattern = regexp.MustCompile(`!\[(?P<alt>[^\]]*)\]\((?P<url>.*?)(?P<caption>\s*"[^"]*?")?\)`)

const (
	imageMatchAlt = iota + 1
	imageMatchURL
	imageMatchCaption
)

// LocalImageRefs returns the distinct image references whose scheme is
// empty or file, meaning relative or local paths that must be uploaded
// before the content can render remotely.
func (b *Blog) LocalImageRefs() []string {
	seen := map[string]struct{}{}

	for _, m := range markdownImagePattern.FindAllStringSubmatch(b.Content, -1) {
		u, err := url.Parse(m[imageMatchURL])
		if err != nil {
			continue
		}

		if u.Scheme == "" || u.Scheme == "file" {
			seen[u.Path] = struct{}{}
		}
	}

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}

	sort.Strings(refs)

	return refs
}

// RemoteImageRefs returns the distinct http(s) image references owned
// by the endpoint whose path indicates a media upload. These are the
// images that must be pulled locally on download.
func (b *Blog) RemoteImageRefs(endpoint *wordpress.Endpoint) []*url.URL {
	seen := map[string]*url.URL{}

	for _, m := range markdownImagePattern.FindAllStringSubmatch(b.Content, -1) {
		u, err := url.Parse(m[imageMatchURL])
		if err != nil {
			continue
		}

		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}

		if !endpoint.IsHostFor(u) || len(u.Path) < len(wordpress.UploadsPathPrefix) ||
			u.Path[:len(wordpress.UploadsPathPrefix)] != wordpress.UploadsPathPrefix {
			continue
		}

		seen[u.String()] = u
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	refs := make([]*url.URL, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, seen[k])
	}

	return refs
}

// RewriteImageRefs substitutes image reference URLs through the given
// map, preserving alt text and caption. References not present in the
// map are left untouched.
func RewriteImageRefs(content string, replacements map[string]string) string {
	return markdownImagePattern.ReplaceAllStringFunc(content, func(match string) string {
		m := markdownImagePattern.FindStringSubmatch(match)

		target, ok := replacements[m[imageMatchURL]]
		if !ok {
			return match
		}

		return "![" + m[imageMatchAlt] + "](" + target + m[imageMatchCaption] + ")"
	})
}
