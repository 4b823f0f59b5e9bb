package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResultsPage = `<!DOCTYPE html>
<html>
<body>
  <ul id="searchResults">
    <li class="searchResultItem">
      <h3 class="booktitle"><a href="/works/OL1W">Series Name Vol. 1</a></h3>
    </li>
    <li class="searchResultItem">
      <h3 class="booktitle"><a href="/works/OL2W">
        Series Name Vol. 2
      </a></h3>
    </li>
    <li class="searchResultItem">
      <h3 class="booktitle"><a href="/works/OL3W"></a></h3>
    </li>
  </ul>
</body>
</html>`

func TestSearchTitles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Series Name", r.URL.Query().Get("q"))

		_, _ = w.Write([]byte(searchResultsPage))
	}))
	defer server.Close()

	searcher := NewCatalogSearcher(server.URL)
	titles, err := searcher.SearchTitles(context.Background(), "Series Name")
	require.NoError(t, err)

	// Whitespace is trimmed and empty anchors skipped.
	assert.Equal(t, []string{"Series Name Vol. 1", "Series Name Vol. 2"}, titles)
}

func TestSearchTitlesEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>No results found.</p></body></html>"))
	}))
	defer server.Close()

	searcher := NewCatalogSearcher(server.URL)
	titles, err := searcher.SearchTitles(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestSearchTitlesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	searcher := NewCatalogSearcher(server.URL)
	_, err := searcher.SearchTitles(context.Background(), "anything")
	assert.Error(t, err)
}
