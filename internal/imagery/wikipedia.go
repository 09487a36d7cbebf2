// Package imagery resolves plant names to representative image URLs
// via the Wikipedia API. Lookups are best-effort: every failure maps
// to an empty URL.
package imagery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"sanjeevani/internal/logging"
)

const defaultEndpoint = "https://en.wikipedia.org/w/api.php"

// Fetcher looks up page thumbnails on Wikipedia. Concurrent lookups
// for the same query are collapsed into one round trip.
type Fetcher struct {
	endpoint   string
	httpClient *http.Client
	group      singleflight.Group
}

// NewFetcher creates a fetcher against the public Wikipedia API.
func NewFetcher() *Fetcher {
	return NewFetcherWithEndpoint(defaultEndpoint)
}

// NewFetcherWithEndpoint is used by tests to point at a fake API.
func NewFetcherWithEndpoint(endpoint string) *Fetcher {
	return &Fetcher{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ImageURL returns a thumbnail URL for query, or "" when no image
// could be found.
func (f *Fetcher) ImageURL(ctx context.Context, query string) string {
	if query == "" {
		return ""
	}
	result, err, _ := f.group.Do(query, func() (interface{}, error) {
		return f.lookup(ctx, query), nil
	})
	if err != nil {
		return ""
	}
	return result.(string)
}

func (f *Fetcher) lookup(ctx context.Context, query string) string {
	title, err := f.searchTitle(ctx, query)
	if err != nil || title == "" {
		logging.Get(logging.CategoryImagery).Debug("no page for %q: %v", query, err)
		return ""
	}
	thumb, err := f.pageThumbnail(ctx, title)
	if err != nil {
		logging.Get(logging.CategoryImagery).Debug("no thumbnail for %q: %v", title, err)
		return ""
	}
	return thumb
}

// searchTitle finds the best-matching page title for query.
func (f *Fetcher) searchTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"format":   {"json"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
	}
	var payload struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := f.call(ctx, params, &payload); err != nil {
		return "", err
	}
	if len(payload.Query.Search) == 0 {
		return "", nil
	}
	return payload.Query.Search[0].Title, nil
}

// pageThumbnail fetches the lead image thumbnail for a page title.
func (f *Fetcher) pageThumbnail(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"prop":        {"pageimages"},
		"titles":      {title},
		"pithumbsize": {"500"},
	}
	var payload struct {
		Query struct {
			Pages map[string]struct {
				Thumbnail struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := f.call(ctx, params, &payload); err != nil {
		return "", err
	}
	for _, page := range payload.Query.Pages {
		if page.Thumbnail.Source != "" {
			return page.Thumbnail.Source, nil
		}
	}
	return "", nil
}

func (f *Fetcher) call(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
