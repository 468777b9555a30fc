package tmdb

import (
	"context"
)

// API defines the TMDB operations used by moviedeck
type API interface {
	// ListMovies fetches a page of the movie/{sort} listing; page <= 0 omits the page parameter
	ListMovies(ctx context.Context, sort string, page int) (*Page, error)

	// DiscoverMovies fetches discovery results for a genre; genreID 0 sends an empty genre filter
	DiscoverMovies(ctx context.Context, genreID, page int) (*Page, error)

	// SearchMovies fetches free-text search results
	SearchMovies(ctx context.Context, query string, page int) (*Page, error)

	// GetMovie fetches the details of a single movie
	GetMovie(ctx context.Context, id int64) (*MovieDetails, error)
}

var _ API = (*Client)(nil)
