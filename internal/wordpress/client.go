package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"
)

const (
	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided. The design accepts no mid-request
	// cancellation, but an unreachable host must not block forever.
	httpClientTimeout = 30 * time.Second

	// perPage is the page size used for paginated listings.
	perPage = 100

	// totalPagesHeader reports the total page count on list responses.
	totalPagesHeader = "X-WP-TotalPages"

	// userAgent mimics a browser; some WordPress installs block the
	// default Go user agent at the CDN layer.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Safari/605.1.15"

	// maxErrorBodyBytes caps how much of an error response body is read
	// for inclusion in error detail.
	maxErrorBodyBytes = 64 * 1024
)

// Client talks to the WordPress REST API of a single endpoint. All
// listings paginate transparently and all absolute URLs pass through
// the endpoint's host-substitution rule before being dereferenced.
type Client struct {
	httpClient *http.Client
	endpoint   *Endpoint
	seo        SEOSchema
	taxonomies map[string]*taxonomyMap
}

// NewClient creates a client for the given endpoint. If httpClient is
// nil, a client with a 30-second timeout is created. The SEO schema
// selects which plugin's metadata fields are read and written; it is
// fixed for the lifetime of the client.
func NewClient(endpoint *Endpoint, seo SEOSchema, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		seo:        seo,
		taxonomies: make(map[string]*taxonomyMap),
	}
}

// Endpoint returns the endpoint this client talks to.
func (c *Client) Endpoint() *Endpoint { return c.endpoint }

// SEO returns the active SEO metadata schema.
func (c *Client) SEO() SEOSchema { return c.seo }

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}

// newRequest builds a request with basic auth and standard headers.
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.SetBasicAuth(c.endpoint.Username, c.endpoint.Password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	return req, nil
}

// statusError converts a non-success response into an error.
// Authentication and authorization failures map to ErrPermissionDenied
// so callers can choose a reduced-privilege retry path; anything else
// is fatal and carries the response body as diagnostic detail.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s %s (%d): %s: %w",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, sanitizeResponseBody(body), ErrPermissionDenied)
	}

	return fmt.Errorf("%s %s returned status %d: %s",
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, sanitizeResponseBody(body))
}

// resourceURL builds the API URL for a resource collection or item.
func (c *Client) resourceURL(resource string, parts ...string) string {
	u := c.endpoint.BaseURL() + "/" + resource
	for _, p := range parts {
		u += "/" + p
	}

	return u
}

// List retrieves every object of a resource, paginating with
// per_page/page until the X-WP-TotalPages header is exhausted. Each
// page fetch is blocking; the full logical listing is returned at once.
func (c *Client) List(ctx context.Context, resource string, query url.Values) ([]json.RawMessage, error) {
	var all []json.RawMessage

	page := 1
	totalPages := 1

	for page <= totalPages {
		params := url.Values{}
		for k, vs := range query {
			params[k] = vs
		}

		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))

		req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(resource)+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", resource, err)
		}

		if resp.StatusCode != http.StatusOK {
			err := statusError(resp)
			resp.Body.Close()

			return nil, fmt.Errorf("listing %s: %w", resource, err)
		}

		var objects []json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decoding %s page %d: %w", resource, page, err)
		}

		if tp := resp.Header.Get(totalPagesHeader); tp != "" {
			if n, err := strconv.Atoi(tp); err == nil {
				totalPages = n
			}
		}

		resp.Body.Close()

		all = append(all, objects...)
		page++
	}

	return all, nil
}

// GetByURL retrieves a single resource by its absolute URL. The URL is
// normalized through the endpoint's host substitution first. A 404
// maps to ErrNotFound.
func (c *Client) GetByURL(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error) {
	target := c.endpoint.NormalizeURL(rawURL)
	if len(query) > 0 {
		if u, err := url.Parse(target); err == nil {
			merged := u.Query()
			for key, values := range query {
				merged[key] = values
			}
			u.RawQuery = merged.Encode()
			target = u.String()
		} else {
			target += "?" + query.Encode()
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rawURL, err)
		}

		return body, nil

	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", rawURL, ErrNotFound)

	default:
		return nil, statusError(resp)
	}
}

// Get retrieves a single resource object by id. The id may also be a
// symbolic identifier such as "me" for users.
func (c *Client) Get(ctx context.Context, resource, id string, query url.Values) (json.RawMessage, error) {
	return c.GetByURL(ctx, c.resourceURL(resource, id), query)
}

// Create creates a resource with the given properties via POST.
// Only 200 and 201 are treated as success.
func (c *Client) Create(ctx context.Context, resource string, properties map[string]any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPost, c.resourceURL(resource), properties)
}

// Update partially updates the resource at the given URL via PATCH.
// The URL is normalized through the endpoint's host substitution, so a
// guid stored under the logical host reaches the API host.
func (c *Client) Update(ctx context.Context, rawURL string, properties map[string]any) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPatch, c.endpoint.NormalizeURL(rawURL), properties)
}

func (c *Client) write(ctx context.Context, method, rawURL string, properties map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(properties)
	if err != nil {
		return nil, fmt.Errorf("marshalling properties: %w", err)
	}

	req, err := c.newRequest(ctx, method, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}

	return body, nil
}

// Delete deletes a resource item. force bypasses the trash, which is
// required for media. 200, 201 and 202 are treated as success.
func (c *Client) Delete(ctx context.Context, resource, id string, force bool) error {
	target := c.resourceURL(resource, id)
	if force {
		target += "?force=1"
	}

	req, err := c.newRequest(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", resource, id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	default:
		return statusError(resp)
	}
}

// IsNotFound reports whether err (or any error in its chain) is
// ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
