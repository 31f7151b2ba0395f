package wordpress

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint describes a WordPress site and how to reach its REST API.
// Host is the logical site host; APIHost is the transport host the API
// is actually served from. For sites fronted by a different API domain
// (e.g. a wpengine install behind a CDN) the two differ, and every
// absolute URL returned by the API must be normalized through
// NormalizeURL before being dereferenced again.
type Endpoint struct {
	Host     string
	APIHost  string
	Username string
	Password string
}

// BaseURL returns the versioned REST API base for this endpoint.
func (e *Endpoint) BaseURL() string {
	return fmt.Sprintf("https://%s/wp-json/wp/v2", e.APIHost)
}

// IsHostFor reports whether the URL is owned by this endpoint, meaning
// its hostname matches either the logical host or the API host.
func (e *Endpoint) IsHostFor(u *url.URL) bool {
	if u == nil {
		return false
	}

	host := u.Hostname()

	return host == e.Host || host == e.APIHost
}

// IsHostForURL is IsHostFor for a raw URL string. Unparsable URLs are
// not owned.
func (e *Endpoint) IsHostForURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return e.IsHostFor(u)
}

// NormalizeURL rewrites the authority component of a URL from the
// logical host to the API host, preserving every other component
// byte-for-byte. When the two hosts are equal, or the URL is not on
// the logical host, the URL is returned unchanged.
func (e *Endpoint) NormalizeURL(rawURL string) string {
	if e.Host == e.APIHost {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if u.Hostname() != e.Host {
		return rawURL
	}

	// Replace only the hostname inside the authority so a port suffix
	// survives the rewrite.
	u.Host = strings.Replace(u.Host, e.Host, e.APIHost, 1)

	return u.String()
}
