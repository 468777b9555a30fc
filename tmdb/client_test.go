package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "test-key", zerolog.Nop(), WithLanguage("ar"))
	require.NoError(t, err)

	return server, client
}

func writePage(w http.ResponseWriter, page Page) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		baseURL string
		apiKey  string
		opts    []Option
		wantErr bool
	}{
		{
			name:    "api key",
			baseURL: "http://localhost:8080/3/",
			apiKey:  "test-key",
		},
		{
			name:    "bearer token only",
			baseURL: "http://localhost:8080/3",
			opts:    []Option{WithBearerToken("token")},
		},
		{
			name:    "default base url",
			apiKey:  "test-key",
			baseURL: "",
		},
		{
			name:    "missing credentials",
			baseURL: "http://localhost:8080/3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL, tt.apiKey, logger, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(client.baseURL, "/"))
		})
	}
}

func TestClientOptions(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("", "test-key", logger, WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("", "test-key", logger, WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Equal(t, customClient, client.httpClient)
	})

	t.Run("with transport", func(t *testing.T) {
		var wrapped bool
		client, err := NewClient("", "test-key", logger, WithTransport(func(next http.RoundTripper) http.RoundTripper {
			wrapped = true
			return next
		}))
		require.NoError(t, err)
		assert.True(t, wrapped)
		assert.NotNil(t, client.httpClient.Transport)
	})
}

func TestListMovies(t *testing.T) {
	t.Run("default listing omits page", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/movie/popular", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
			assert.Equal(t, "ar", r.URL.Query().Get("language"))
			assert.False(t, r.URL.Query().Has("page"))
			writePage(w, Page{Page: 1, TotalPages: 10000, TotalResults: 200000, Results: []Movie{{ID: 1, Title: "One"}}})
		})

		page, err := client.ListMovies(context.Background(), SortPopular, 0)
		require.NoError(t, err)
		assert.Equal(t, 10000, page.TotalPages)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "One", page.Results[0].Title)
	})

	t.Run("explicit page", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/movie/top_rated", r.URL.Path)
			assert.Equal(t, "3", r.URL.Query().Get("page"))
			writePage(w, Page{Page: 3, TotalResults: 45})
		})

		page, err := client.ListMovies(context.Background(), SortTopRated, 3)
		require.NoError(t, err)
		assert.Equal(t, 45, page.TotalResults)
	})

	t.Run("invalid sort makes no request", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request to %s", r.URL.Path)
		})

		_, err := client.ListMovies(context.Background(), "latest_trending", 1)
		assert.ErrorIs(t, err, ErrInvalidSort)
	})
}

func TestDiscoverMovies(t *testing.T) {
	tests := []struct {
		name      string
		genreID   int
		wantGenre string
	}{
		{name: "action", genreID: 28, wantGenre: "28"},
		{name: "no genre", genreID: 0, wantGenre: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/discover/movie", r.URL.Path)
				assert.True(t, r.URL.Query().Has("with_genres"))
				assert.Equal(t, tt.wantGenre, r.URL.Query().Get("with_genres"))
				writePage(w, Page{Page: 1, TotalResults: 100})
			})

			page, err := client.DiscoverMovies(context.Background(), tt.genreID, 0)
			require.NoError(t, err)
			assert.Equal(t, 100, page.TotalResults)
		})
	}
}

func TestSearchMovies(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "the matrix", r.URL.Query().Get("query"))
		writePage(w, Page{Page: 1, TotalResults: 7, Results: []Movie{{ID: 603, Title: "The Matrix"}}})
	})

	page, err := client.SearchMovies(context.Background(), "the matrix", 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(603), page.Results[0].ID)

	_, err = client.SearchMovies(context.Background(), "  ", 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.False(t, r.URL.Query().Has("api_key"))
		json.NewEncoder(w).Encode(map[string]any{"images": map[string]any{}})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", zerolog.Nop(), WithBearerToken("secret"))
	require.NoError(t, err)
	require.NoError(t, client.TestConnection(context.Background()))
}

func TestGetMovie(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/550":
			json.NewEncoder(w).Encode(map[string]any{
				"id":           550,
				"title":        "Fight Club",
				"release_date": "1999-10-15",
				"vote_average": 8.4,
				"runtime":      139,
				"genres":       []map[string]any{{"id": 18, "name": "Drama"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found.","success":false}`))
		}
	})

	details, err := client.GetMovie(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", details.Title)
	assert.Equal(t, 1999, details.Year())
	assert.Equal(t, 139, details.Runtime)
	assert.Equal(t, []string{"Drama"}, details.GenreNames())
	assert.Equal(t, []int{18}, details.Summary().GenreIDs)

	_, err = client.GetMovie(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "The resource you requested could not be found.", apiErr.Message)
}

func TestAPIError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := &APIError{
			StatusCode: 401,
			Message:    "Invalid API key: You must be granted a valid key.",
		}
		assert.Equal(t, "tmdb API error: status 401: Invalid API key: You must be granted a valid key.", err.Error())
	})

	t.Run("IsUnauthorized", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{401, true},
			{403, true},
			{404, false},
			{500, false},
		}

		for _, tt := range tests {
			err := &APIError{StatusCode: tt.code}
			assert.Equal(t, tt.expected, err.IsUnauthorized())
			assert.Equal(t, tt.expected, errors.Is(err, ErrUnauthorized))
		}
	})
}

func TestMovieHelpers(t *testing.T) {
	m := Movie{ReleaseDate: "2021-09-15", PosterPath: "/abc.jpg"}
	assert.Equal(t, 2021, m.Year())
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", m.PosterURL("https://image.tmdb.org/t/p/w500/"))

	assert.Equal(t, 0, Movie{}.Year())
	assert.Empty(t, Movie{}.PosterURL("https://image.tmdb.org/t/p/w500"))

	assert.True(t, ValidSort(SortNowPlaying))
	assert.False(t, ValidSort("latest"))
	assert.Equal(t, []string{"popular", "top_rated", "upcoming", "now_playing"}, SortKeys())
}
