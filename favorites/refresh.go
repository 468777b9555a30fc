package favorites

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/moviedeck/tmdb"
)

// DefaultRefreshLimit bounds concurrent detail requests during Refresh
const DefaultRefreshLimit = 5

// DetailGetter fetches movie details
type DetailGetter interface {
	GetMovie(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
}

// RefreshResult contains the results of a refresh
type RefreshResult struct {
	Requested int
	Updated   []int64
	Failed    []RefreshError
}

// RefreshError contains information about a movie that could not be refreshed
type RefreshError struct {
	MovieID    int64
	MovieTitle string
	Err        error
}

// Error implements the error interface
func (e RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh movie %s (ID: %d): %v", e.MovieTitle, e.MovieID, e.Err)
}

// Refresh re-fetches every saved movie and replaces its snapshot. Individual
// failures are logged and reported in the result without stopping the others.
func (s *Store) Refresh(ctx context.Context, api DetailGetter, limit int) (RefreshResult, error) {
	movies := s.Movies()
	result := RefreshResult{Requested: len(movies)}

	if len(movies) == 0 {
		return result, nil
	}
	if limit <= 0 {
		limit = DefaultRefreshLimit
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	fresh := make(map[int64]tmdb.Movie, len(movies))

	for _, movie := range movies {
		movie := movie
		g.Go(func() error {
			details, err := api.GetMovie(ctx, movie.ID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				s.logger.Warn().
					Err(err).
					Int64("movie_id", movie.ID).
					Str("movie", movie.Title).
					Msg("Failed to refresh favorite")
				result.Failed = append(result.Failed, RefreshError{
					MovieID:    movie.ID,
					MovieTitle: movie.Title,
					Err:        err,
				})
				return nil
			}

			fresh[movie.ID] = details.Summary()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	// report in list order
	for _, movie := range movies {
		if _, ok := fresh[movie.ID]; ok {
			result.Updated = append(result.Updated, movie.ID)
		}
	}

	if err := s.replace(fresh); err != nil {
		return result, fmt.Errorf("failed to save refreshed favorites: %w", err)
	}

	s.logger.Info().
		Int("requested", result.Requested).
		Int("updated", len(result.Updated)).
		Int("failed", len(result.Failed)).
		Msg("Refreshed favorites")

	return result, nil
}
