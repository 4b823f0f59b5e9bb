package metadata

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// CatalogSearcher scrapes the Open Library HTML search results page for
// candidate titles. The JSON search API ranks differently from the site, so
// the catalog page is scraped to reproduce the ordering users see.
type CatalogSearcher struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogSearcher(baseURL string) *CatalogSearcher {
	return &CatalogSearcher{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// SearchTitles returns every candidate title on the first results page, in
// page order.
func (s *CatalogSearcher) SearchTitles(ctx context.Context, keyword string) ([]string, error) {
	query := url.Values{}
	query.Set("q", keyword)
	query.Set("mode", "everything")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d from search", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var titles []string
	doc.Find("li.searchResultItem h3.booktitle a").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		if title != "" {
			titles = append(titles, title)
		}
	})
	return titles, nil
}
