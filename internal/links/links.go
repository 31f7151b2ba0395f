// Package links checks rendered post content for broken hyperlinks.
package links

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

const (
	// maxConcurrentChecks bounds the parallel outbound requests per post.
	maxConcurrentChecks = 8

	// checkTimeout bounds one link check.
	checkTimeout = 15 * time.Second
)

// Broken describes one link that failed its check. Status is the HTTP
// status, or -1 for transport failures.
type Broken struct {
	URL    string
	Status int
}

// Checker verifies outbound links in HTML documents.
type Checker struct {
	httpClient *http.Client
}

// NewChecker creates a checker. If httpClient is nil a default client
// with a bounded timeout is used.
func NewChecker(httpClient *http.Client) *Checker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: checkTimeout}
	}

	return &Checker{httpClient: httpClient}
}

// Check extracts all http(s) anchors from the HTML document and
// fetches each with bounded concurrency. Links answering 400 or 404,
// or failing at the transport level, are reported as broken.
func (c *Checker) Check(ctx context.Context, html string) ([]Broken, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	seen := map[string]struct{}{}

	var urls []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return
		}

		if _, dup := seen[href]; dup {
			return
		}

		seen[href] = struct{}{}
		urls = append(urls, href)
	})

	var (
		mu     sync.Mutex
		broken []Broken
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)

	for _, href := range urls {
		g.Go(func() error {
			status, ok := c.check(ctx, href)
			if !ok {
				mu.Lock()
				broken = append(broken, Broken{URL: href, Status: status})
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return broken, nil
}

// check fetches one link. Reports ok unless the response is 400/404 or
// the request fails outright.
func (c *Checker) check(ctx context.Context, href string) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return -1, false
	}

	// Some sites reject the default Go user agent outright.
	req.Header.Set("User-Agent", "curl/7.86.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return -1, false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, false
	}

	return resp.StatusCode, true
}
