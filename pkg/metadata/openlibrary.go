package metadata

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// OpenLibraryClient talks to the Open Library JSON APIs. It implements both
// ISBNLookup (the books API) and ISBNGuesser (the search API).
type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenLibraryClient(baseURL string) *OpenLibraryClient {
	return &OpenLibraryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

type openLibraryBook struct {
	Title string `json:"title"`
}

// LookupISBN fetches the registered title for an ISBN-13 through the books
// API. The response is a map keyed by the bibkey that was asked for.
func (c *OpenLibraryClient) LookupISBN(ctx context.Context, isbn string) (string, error) {
	bibkey := "ISBN:" + isbn

	query := url.Values{}
	query.Set("bibkeys", bibkey)
	query.Set("format", "json")
	query.Set("jscmd", "data")

	body, err := c.get(ctx, "/api/books?"+query.Encode())
	if err != nil {
		return "", err
	}

	books := map[string]openLibraryBook{}
	if err := json.Unmarshal(body, &books); err != nil {
		return "", errors.WithStack(err)
	}

	return books[bibkey].Title, nil
}

type openLibrarySearchResponse struct {
	Docs []struct {
		Title string   `json:"title"`
		ISBN  []string `json:"isbn"`
	} `json:"docs"`
}

// GuessISBN asks the search API for works matching a title and returns the
// first ISBN of the first match.
func (c *OpenLibraryClient) GuessISBN(ctx context.Context, title string) (string, error) {
	query := url.Values{}
	query.Set("title", title)
	query.Set("limit", "1")

	body, err := c.get(ctx, "/search.json?"+query.Encode())
	if err != nil {
		return "", err
	}

	result := openLibrarySearchResponse{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.WithStack(err)
	}

	for _, doc := range result.Docs {
		if len(doc.ISBN) > 0 {
			return doc.ISBN[0], nil
		}
	}
	return "", errors.New("no isbn in search results")
}

func (c *OpenLibraryClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return body, nil
}
