package wordpress

import (
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// wpDateLayout is the naive ISO layout WordPress uses for date and
// date_gmt fields (no timezone designator).
const wpDateLayout = "2006-01-02T15:04:05"

// Post is a value view over a raw post payload as returned by the API.
// The wrapped payload is never mutated; accessors derive their values
// on demand. Updates are expressed as property maps handed to
// Client.Update, with DateProperties keeping paired fields consistent.
type Post struct {
	raw gjson.Result
	seo SEOSchema
}

// NewPost wraps a raw post payload. The SEO schema decides how plugin
// metadata accessors behave; a nil schema defaults to Yoast.
func NewPost(raw []byte, seo SEOSchema) Post {
	if seo == nil {
		seo = YoastSchema{}
	}

	return Post{raw: gjson.ParseBytes(raw), seo: seo}
}

// ID returns the numeric post id.
func (p Post) ID() int64 { return p.raw.Get("id").Int() }

// Slug returns the canonical slug, falling back to the generated slug
// proposal for drafts that have not been assigned one yet.
func (p Post) Slug() string {
	if s := p.raw.Get("slug").String(); s != "" {
		return s
	}

	return p.raw.Get("generated_slug").String()
}

// Link returns the public permalink.
func (p Post) Link() string { return p.raw.Get("link").String() }

// GUID returns the self-link URL identifying this post. This is the
// canonical identity a local document stores once published; it is a
// resource locator, not a UUID.
func (p Post) GUID() string {
	return p.raw.Get("_links.self.0.href").String()
}

// Title returns the rendered title with HTML entities decoded. The
// dash entity WordPress substitutes for plain hyphens maps back to a
// hyphen before the generic unescape, so local titles compare equal to
// their stored form.
func (p Post) Title() string {
	title := strings.ReplaceAll(p.raw.Get("title.rendered").String(), "&#8211;", "-")

	return html.UnescapeString(title)
}

// FeaturedMedia returns the featured media id, 0 when unset.
func (p Post) FeaturedMedia() int64 { return p.raw.Get("featured_media").Int() }

// Content returns the rendered HTML content.
func (p Post) Content() string { return p.raw.Get("content.rendered").String() }

// RawContent returns the stored raw content. Only present when the
// post was fetched in edit context.
func (p Post) RawContent() string { return p.raw.Get("content.raw").String() }

// Author returns the numeric author id.
func (p Post) Author() int64 { return p.raw.Get("author").Int() }

// Status returns the publication status.
func (p Post) Status() string { return p.raw.Get("status").String() }

// Excerpt returns the rendered excerpt.
func (p Post) Excerpt() string { return p.raw.Get("excerpt.rendered").String() }

// Categories returns the numeric category ids.
func (p Post) Categories() []int64 { return p.intList("categories") }

// Tags returns the numeric tag ids.
func (p Post) Tags() []int64 { return p.intList("tags") }

// Terms returns the numeric term ids of an arbitrary taxonomy field.
func (p Post) Terms(taxonomy string) []int64 { return p.intList(taxonomy) }

func (p Post) intList(field string) []int64 {
	values := p.raw.Get(field).Array()
	if len(values) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(values))
	for _, v := range values {
		ids = append(ids, v.Int())
	}

	return ids
}

// Date returns the publication time. The date_gmt field is interpreted
// as UTC and exposed in the local timezone.
func (p Post) Date() (time.Time, error) {
	t, err := time.ParseInLocation(wpDateLayout, p.raw.Get("date_gmt").String(), time.UTC)
	if err != nil {
		return time.Time{}, err
	}

	return t.Local(), nil
}

// OGImages returns the candidate Open-Graph image URLs under the
// active SEO schema.
func (p Post) OGImages() []*url.URL { return p.seo.OGImages(p.raw) }

// OGDescription returns the Open-Graph description under the active
// SEO schema.
func (p Post) OGDescription() string { return p.seo.OGDescription(p.raw) }

// Canonical returns the canonical link under the active SEO schema.
func (p Post) Canonical() string { return p.seo.Canonical(p.raw) }

// DateProperties returns the date fields for a post property map. The
// naive local field and the UTC field are always set together so the
// pair stays consistent.
func DateProperties(t time.Time) map[string]any {
	return map[string]any{
		"date":     t.Format(wpDateLayout),
		"date_gmt": t.UTC().Format(wpDateLayout),
	}
}
