package wordpress

import (
	"net/url"

	"github.com/tidwall/gjson"
)

// SEOSchema abstracts over the two incompatible SEO plugin metadata
// layouts observed in the wild. Exactly one schema is active per
// endpoint; the sync logic never branches on plugin field names itself.
type SEOSchema interface {
	// Name identifies the schema in configuration ("yoast" or "rankmath").
	Name() string

	// OGImages extracts candidate Open-Graph image URLs from a raw post
	// payload. Unparsable URLs are skipped.
	OGImages(post gjson.Result) []*url.URL

	// OGDescription extracts the Open-Graph description, empty when unset.
	OGDescription(post gjson.Result) string

	// Canonical extracts the canonical link, empty when unset.
	Canonical(post gjson.Result) string

	// DescriptionProperties returns the meta patch that sets the
	// Open-Graph description.
	DescriptionProperties(description string) map[string]any

	// OGImageProperties returns the meta patch that sets the Open-Graph
	// image to the given URL.
	OGImageProperties(imageURL string) map[string]any

	// CanonicalProperties returns the meta patch that sets the
	// canonical link.
	CanonicalProperties(canonical string) map[string]any
}

// SchemaByName returns the SEO schema for a configuration name.
// Unrecognized names fall back to Yoast, the more common plugin.
func SchemaByName(name string) SEOSchema {
	if name == "rankmath" {
		return RankMathSchema{}
	}

	return YoastSchema{}
}

// YoastSchema reads and writes Yoast SEO metadata: the read side comes
// from the yoast_head_json block, the write side goes through
// meta.yoast_wpseo_* fields.
type YoastSchema struct{}

func (YoastSchema) Name() string { return "yoast" }

func (YoastSchema) OGImages(post gjson.Result) []*url.URL {
	var images []*url.URL

	for _, img := range post.Get("yoast_head_json.og_image").Array() {
		raw := img.Get("url").String()
		if raw == "" {
			continue
		}

		if u, err := url.Parse(raw); err == nil {
			images = append(images, u)
		}
	}

	return images
}

func (YoastSchema) OGDescription(post gjson.Result) string {
	if d := post.Get("yoast_head_json.og_description"); d.Exists() {
		return d.String()
	}

	return post.Get("meta.yoast_wpseo_description").String()
}

func (YoastSchema) Canonical(post gjson.Result) string {
	return post.Get("yoast_head_json.canonical").String()
}

func (YoastSchema) DescriptionProperties(description string) map[string]any {
	return map[string]any{"meta": map[string]any{"yoast_wpseo_description": description}}
}

func (YoastSchema) OGImageProperties(imageURL string) map[string]any {
	return map[string]any{"meta": map[string]any{"yoast_wpseo_opengraph-image": imageURL}}
}

func (YoastSchema) CanonicalProperties(canonical string) map[string]any {
	return map[string]any{"meta": map[string]any{"yoast_wpseo_canonical": canonical}}
}

// RankMathSchema reads and writes Rank Math metadata, which lives
// entirely under meta.rank_math_* fields.
type RankMathSchema struct{}

func (RankMathSchema) Name() string { return "rankmath" }

func (RankMathSchema) OGImages(post gjson.Result) []*url.URL {
	var images []*url.URL

	for _, key := range []string{"meta.rank_math_twitter_image", "meta.rank_math_facebook_image"} {
		raw := post.Get(key).String()
		if raw == "" {
			continue
		}

		if u, err := url.Parse(raw); err == nil {
			images = append(images, u)
		}
	}

	return images
}

func (RankMathSchema) OGDescription(post gjson.Result) string {
	return post.Get("meta.rank_math_facebook_description").String()
}

func (RankMathSchema) Canonical(post gjson.Result) string {
	return post.Get("meta.rank_math_canonical_url").String()
}

func (RankMathSchema) DescriptionProperties(description string) map[string]any {
	return map[string]any{"meta": map[string]any{"rank_math_facebook_description": description}}
}

func (RankMathSchema) OGImageProperties(imageURL string) map[string]any {
	return map[string]any{"meta": map[string]any{
		"rank_math_twitter_image":  imageURL,
		"rank_math_facebook_image": imageURL,
	}}
}

func (RankMathSchema) CanonicalProperties(canonical string) map[string]any {
	return map[string]any{"meta": map[string]any{"rank_math_canonical_url": canonical}}
}
