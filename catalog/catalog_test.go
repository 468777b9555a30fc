package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/moviedeck/tmdb"
)

// mockFetcher implements Fetcher for testing
type mockFetcher struct {
	mu    sync.Mutex
	calls []string

	listFn     func(sort string, page int) (*tmdb.Page, error)
	discoverFn func(genreID, page int) (*tmdb.Page, error)
	searchFn   func(query string, page int) (*tmdb.Page, error)
}

func (m *mockFetcher) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockFetcher) ListMovies(ctx context.Context, sort string, page int) (*tmdb.Page, error) {
	m.record(fmt.Sprintf("list %s %d", sort, page))
	if m.listFn == nil {
		return &tmdb.Page{}, nil
	}
	return m.listFn(sort, page)
}

func (m *mockFetcher) DiscoverMovies(ctx context.Context, genreID, page int) (*tmdb.Page, error) {
	m.record(fmt.Sprintf("discover %d %d", genreID, page))
	if m.discoverFn == nil {
		return &tmdb.Page{}, nil
	}
	return m.discoverFn(genreID, page)
}

func (m *mockFetcher) SearchMovies(ctx context.Context, query string, page int) (*tmdb.Page, error) {
	m.record(fmt.Sprintf("search %s %d", query, page))
	if m.searchFn == nil {
		return &tmdb.Page{}, nil
	}
	return m.searchFn(query, page)
}

func titled(titles ...string) []tmdb.Movie {
	movies := make([]tmdb.Movie, 0, len(titles))
	for i, title := range titles {
		movies = append(movies, tmdb.Movie{ID: int64(i + 1), Title: title})
	}
	return movies
}

func newCatalog(api Fetcher) *Catalog {
	return New(api, tmdb.SortPopular, zerolog.Nop())
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		fromPage int
		fromRes  int
	}{
		{name: "zero", input: 0, fromPage: 0, fromRes: 0},
		{name: "negative", input: -3, fromPage: 0, fromRes: 0},
		{name: "single result", input: 1, fromPage: 1, fromRes: 1},
		{name: "exact page", input: 20, fromPage: 20, fromRes: 1},
		{name: "partial page", input: 45, fromPage: 45, fromRes: 3},
		{name: "at cap", input: 500, fromPage: 500, fromRes: 25},
		{name: "over cap", input: 10000, fromPage: 500, fromRes: 500},
		{name: "huge", input: 1_000_000, fromPage: 500, fromRes: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fromPage, ClampPages(tt.input))
			assert.Equal(t, tt.fromRes, PagesFromResults(tt.input))
		})
	}
}

func TestLoadDefault(t *testing.T) {
	api := &mockFetcher{
		listFn: func(sort string, page int) (*tmdb.Page, error) {
			return &tmdb.Page{Page: 1, TotalPages: 10000, TotalResults: 200000, Results: titled("A", "B")}, nil
		},
	}
	cat := newCatalog(api)

	snap, err := cat.LoadDefault(context.Background(), tmdb.SortPopular)
	require.NoError(t, err)

	assert.Equal(t, 500, snap.PageCount)
	assert.Equal(t, 1, snap.Page)
	assert.Len(t, snap.Movies, 2)
	assert.Equal(t, QueryDefault, snap.Query.Kind)
	assert.True(t, snap.Loaded())
	assert.Equal(t, []string{"list popular 0"}, api.Calls())
}

func TestLoadPage(t *testing.T) {
	api := &mockFetcher{
		listFn: func(sort string, page int) (*tmdb.Page, error) {
			return &tmdb.Page{Page: page, TotalPages: 3, TotalResults: 45, Results: titled("C")}, nil
		},
	}
	cat := newCatalog(api)

	snap, err := cat.LoadPage(context.Background(), 3, tmdb.SortTopRated)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.PageCount)
	assert.Equal(t, 3, snap.Page)
	assert.Equal(t, tmdb.SortTopRated, snap.Query.Sort)
	// LoadPage does not change the active sort
	assert.Equal(t, tmdb.SortPopular, snap.Sort)
	assert.False(t, snap.HasNext())
	assert.True(t, snap.HasPrev())
	assert.Equal(t, []string{"list top_rated 3"}, api.Calls())
}

func TestLoadPageUsesActiveSort(t *testing.T) {
	api := &mockFetcher{}
	cat := newCatalog(api)

	_, err := cat.ChangeSort(context.Background(), tmdb.SortUpcoming)
	require.NoError(t, err)
	_, err = cat.LoadPage(context.Background(), 2, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"list upcoming 1", "list upcoming 2"}, api.Calls())
}

func TestChangeSort(t *testing.T) {
	api := &mockFetcher{
		listFn: func(sort string, page int) (*tmdb.Page, error) {
			return &tmdb.Page{Page: page, TotalResults: 1000, Results: titled(sort)}, nil
		},
	}
	cat := newCatalog(api)

	_, err := cat.ChangeSort(context.Background(), tmdb.SortNowPlaying)
	require.NoError(t, err)

	snap := cat.Snapshot()
	assert.Equal(t, tmdb.SortNowPlaying, snap.Sort)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 50, snap.PageCount)
	assert.Equal(t, QuerySorted, snap.Query.Kind)
	require.Len(t, snap.Movies, 1)
	assert.Equal(t, tmdb.SortNowPlaying, snap.Movies[0].Title)

	t.Run("invalid sort", func(t *testing.T) {
		_, err := cat.ChangeSort(context.Background(), "latest")
		require.ErrorIs(t, err, tmdb.ErrInvalidSort)

		snap := cat.Snapshot()
		assert.Equal(t, tmdb.SortNowPlaying, snap.Sort)
		assert.ErrorIs(t, snap.Err, tmdb.ErrInvalidSort)
		assert.Len(t, snap.Movies, 1)
		assert.Len(t, api.Calls(), 1)
	})
}

func TestFilterByCategory(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		wantGenre int
	}{
		{name: "action", category: "أكشن", wantGenre: 28},
		{name: "science fiction", category: "خيال علمي", wantGenre: 878},
		{name: "unknown category", category: "غير موجود", wantGenre: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotGenre int
			api := &mockFetcher{
				discoverFn: func(genreID, page int) (*tmdb.Page, error) {
					gotGenre = genreID
					return &tmdb.Page{Page: 1, TotalResults: 20001, Results: titled("X")}, nil
				},
			}
			cat := newCatalog(api)

			snap, err := cat.FilterByCategory(context.Background(), tt.category)
			require.NoError(t, err)

			assert.Equal(t, tt.wantGenre, gotGenre)
			assert.Equal(t, 500, snap.PageCount)
			assert.Equal(t, QueryCategory, snap.Query.Kind)
			assert.Equal(t, tt.category, snap.Query.Category)
		})
	}
}

func TestFilterByCategoryFailureKeepsState(t *testing.T) {
	fail := false
	api := &mockFetcher{
		listFn: func(sort string, page int) (*tmdb.Page, error) {
			return &tmdb.Page{Page: 1, TotalPages: 7, Results: titled("Kept")}, nil
		},
		discoverFn: func(genreID, page int) (*tmdb.Page, error) {
			if fail {
				return nil, &tmdb.APIError{StatusCode: 503, Message: "Service Unavailable"}
			}
			return &tmdb.Page{}, nil
		},
	}
	cat := newCatalog(api)

	_, err := cat.LoadDefault(context.Background(), tmdb.SortPopular)
	require.NoError(t, err)

	fail = true
	snap, err := cat.FilterByCategory(context.Background(), "دراما")
	require.Error(t, err)

	var apiErr *tmdb.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 503, apiErr.StatusCode)

	assert.Equal(t, 7, snap.PageCount)
	require.Len(t, snap.Movies, 1)
	assert.Equal(t, "Kept", snap.Movies[0].Title)
	assert.Equal(t, QueryDefault, snap.Query.Kind)
	assert.Equal(t, err, snap.Err)

	// the next success clears the error
	fail = false
	snap, err = cat.FilterByCategory(context.Background(), "دراما")
	require.NoError(t, err)
	assert.NoError(t, snap.Err)
}

func TestSearch(t *testing.T) {
	t.Run("term", func(t *testing.T) {
		api := &mockFetcher{
			searchFn: func(query string, page int) (*tmdb.Page, error) {
				return &tmdb.Page{Page: 1, TotalResults: 41, Results: titled("Dune", "Dune: Part Two")}, nil
			},
		}
		cat := newCatalog(api)

		snap, err := cat.Search(context.Background(), " dune ")
		require.NoError(t, err)
		assert.Equal(t, 3, snap.PageCount)
		assert.Equal(t, QuerySearch, snap.Query.Kind)
		assert.Equal(t, "dune", snap.Query.Term)
		assert.Equal(t, []string{"search dune 0"}, api.Calls())
	})

	t.Run("empty term equals default listing", func(t *testing.T) {
		newAPI := func() *mockFetcher {
			return &mockFetcher{
				listFn: func(sort string, page int) (*tmdb.Page, error) {
					return &tmdb.Page{Page: 1, TotalPages: 812, TotalResults: 16240, Results: titled("A")}, nil
				},
			}
		}

		searchAPI, defaultAPI := newAPI(), newAPI()
		searched, err := newCatalog(searchAPI).Search(context.Background(), "")
		require.NoError(t, err)
		loaded, err := newCatalog(defaultAPI).LoadDefault(context.Background(), tmdb.SortPopular)
		require.NoError(t, err)

		assert.Equal(t, loaded, searched)
		assert.Equal(t, defaultAPI.Calls(), searchAPI.Calls())
	})
}

func TestGoToPage(t *testing.T) {
	api := &mockFetcher{
		searchFn: func(query string, page int) (*tmdb.Page, error) {
			return &tmdb.Page{Page: max(page, 1), TotalResults: 100}, nil
		},
		discoverFn: func(genreID, page int) (*tmdb.Page, error) {
			return &tmdb.Page{Page: max(page, 1), TotalResults: 100}, nil
		},
	}
	cat := newCatalog(api)
	ctx := context.Background()

	_, err := cat.GoToPage(ctx, 2)
	require.NoError(t, err)

	_, err = cat.Search(ctx, "alien")
	require.NoError(t, err)
	snap, err := cat.GoToPage(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Page)

	_, err = cat.FilterByCategory(ctx, "رعب")
	require.NoError(t, err)
	_, err = cat.GoToPage(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"list popular 2",
		"search alien 0",
		"search alien 4",
		"discover 27 0",
		"discover 27 1",
	}, api.Calls())
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	api := &mockFetcher{
		listFn: func(sort string, page int) (*tmdb.Page, error) {
			if page == 2 {
				close(started)
				<-release
				return &tmdb.Page{Page: 2, TotalResults: 40, Results: titled("slow")}, nil
			}
			return &tmdb.Page{Page: page, TotalResults: 200, Results: titled("fast")}, nil
		},
	}
	cat := newCatalog(api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := cat.LoadPage(ctx, 2, tmdb.SortPopular)
		done <- err
	}()

	<-started
	snap, err := cat.LoadPage(ctx, 3, tmdb.SortPopular)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Page)

	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	snap = cat.Snapshot()
	assert.Equal(t, 3, snap.Page)
	assert.Equal(t, 10, snap.PageCount)
	require.Len(t, snap.Movies, 1)
	assert.Equal(t, "fast", snap.Movies[0].Title)
}

func TestSnapshotIsACopy(t *testing.T) {
	api := &mockFetcher{
		listFn: func(sort string, page int) (*tmdb.Page, error) {
			return &tmdb.Page{Page: 1, TotalPages: 1, Results: titled("Original")}, nil
		},
	}
	cat := newCatalog(api)

	snap, err := cat.LoadDefault(context.Background(), tmdb.SortPopular)
	require.NoError(t, err)
	snap.Movies[0].Title = "Changed"

	assert.Equal(t, "Original", cat.Snapshot().Movies[0].Title)
}

func TestNewFallsBackToPopular(t *testing.T) {
	cat := New(&mockFetcher{}, "bogus", zerolog.Nop())
	assert.Equal(t, tmdb.SortPopular, cat.DefaultSort())
	assert.Equal(t, tmdb.SortPopular, cat.Snapshot().Sort)
}

func TestCatalogAgainstTMDB(t *testing.T) {
	var mu sync.Mutex
	var queries []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Path+"?with_genres="+r.URL.Query().Get("with_genres"))
		mu.Unlock()

		json.NewEncoder(w).Encode(tmdb.Page{Page: 1, TotalResults: 45})
	}))
	defer server.Close()

	client, err := tmdb.NewClient(server.URL, "test-key", zerolog.Nop())
	require.NoError(t, err)

	cat := New(client, tmdb.SortPopular, zerolog.Nop())

	snap, err := cat.FilterByCategory(context.Background(), "أكشن")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.PageCount)

	_, err = cat.FilterByCategory(context.Background(), "unknown")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/discover/movie?with_genres=28", "/discover/movie?with_genres="}, queries)
}
