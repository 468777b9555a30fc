// Package catalog holds the displayed movie list and turns browse intents
// (default listing, page change, category filter, sort change, search) into
// TMDB requests.
//
// The Catalog is the only writer of that state. Views read it through
// Snapshot values. Every request gets a sequence number, and a response that
// arrives after a newer request was issued is discarded with ErrSuperseded.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/s0up4200/moviedeck/genre"
	"github.com/s0up4200/moviedeck/tmdb"
)

// ErrSuperseded is returned when a newer request was issued while this one was in flight
var ErrSuperseded = errors.New("request superseded by a newer one")

// Fetcher is the subset of the TMDB API the catalog needs
type Fetcher interface {
	ListMovies(ctx context.Context, sort string, page int) (*tmdb.Page, error)
	DiscoverMovies(ctx context.Context, genreID, page int) (*tmdb.Page, error)
	SearchMovies(ctx context.Context, query string, page int) (*tmdb.Page, error)
}

// Catalog is the application state container
type Catalog struct {
	api         Fetcher
	defaultSort string
	logger      zerolog.Logger

	issued atomic.Uint64

	mu    sync.RWMutex
	state Snapshot
}

// New creates a catalog. An invalid defaultSort falls back to tmdb.SortPopular.
func New(api Fetcher, defaultSort string, logger zerolog.Logger) *Catalog {
	if !tmdb.ValidSort(defaultSort) {
		defaultSort = tmdb.SortPopular
	}

	return &Catalog{
		api:         api,
		defaultSort: defaultSort,
		logger:      logger,
		state: Snapshot{
			Sort: defaultSort,
		},
	}
}

// DefaultSort returns the sort key used for the default listing
func (c *Catalog) DefaultSort() string {
	return c.defaultSort
}

// Snapshot returns a copy of the current state
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// LoadDefault fetches the default listing for sort. The page count is the
// service's total_pages capped at tmdb.MaxPages.
func (c *Catalog) LoadDefault(ctx context.Context, sort string) (Snapshot, error) {
	if !tmdb.ValidSort(sort) {
		return c.reject(fmt.Errorf("%w: %q", tmdb.ErrInvalidSort, sort))
	}

	q := Query{Kind: QueryDefault, Sort: sort}
	return c.run(ctx, q, 1, func(p *tmdb.Page) int { return ClampPages(p.TotalPages) },
		func(ctx context.Context) (*tmdb.Page, error) {
			return c.api.ListMovies(ctx, sort, 0)
		})
}

// LoadPage fetches one page of the sorted listing. An empty sort uses the
// active sort key. The page count is derived from total_results.
func (c *Catalog) LoadPage(ctx context.Context, page int, sort string) (Snapshot, error) {
	if sort == "" {
		sort = c.activeSort()
	}
	if !tmdb.ValidSort(sort) {
		return c.reject(fmt.Errorf("%w: %q", tmdb.ErrInvalidSort, sort))
	}

	page = clampPage(page)
	q := Query{Kind: QuerySorted, Sort: sort}
	return c.run(ctx, q, page, pagesFromResults, func(ctx context.Context) (*tmdb.Page, error) {
		return c.api.ListMovies(ctx, sort, page)
	})
}

// FilterByCategory fetches discovery results for a category name. Names
// missing from the genre table run the discovery query without a genre filter.
func (c *Catalog) FilterByCategory(ctx context.Context, category string) (Snapshot, error) {
	return c.filterByCategory(ctx, category, 0)
}

func (c *Catalog) filterByCategory(ctx context.Context, category string, page int) (Snapshot, error) {
	genreID := genre.Lookup(category)
	if genreID == genre.None {
		c.logger.Warn().
			Str("category", category).
			Msg("Unknown category, discovering without genre filter")
	}

	q := Query{Kind: QueryCategory, Category: category, GenreID: genreID}
	return c.run(ctx, q, max(page, 1), pagesFromResults, func(ctx context.Context) (*tmdb.Page, error) {
		return c.api.DiscoverMovies(ctx, genreID, page)
	})
}

// ChangeSort makes sort the active sort key and loads its first page
func (c *Catalog) ChangeSort(ctx context.Context, sort string) (Snapshot, error) {
	if !tmdb.ValidSort(sort) {
		return c.reject(fmt.Errorf("%w: %q", tmdb.ErrInvalidSort, sort))
	}

	c.mu.Lock()
	c.state.Sort = sort
	c.mu.Unlock()

	c.logger.Debug().Str("sort", sort).Msg("Sort changed")

	return c.LoadPage(ctx, 1, sort)
}

// Search fetches search results for term. An empty term loads the default listing.
func (c *Catalog) Search(ctx context.Context, term string) (Snapshot, error) {
	return c.search(ctx, term, 0)
}

func (c *Catalog) search(ctx context.Context, term string, page int) (Snapshot, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.LoadDefault(ctx, c.defaultSort)
	}

	q := Query{Kind: QuerySearch, Term: term}
	return c.run(ctx, q, max(page, 1), pagesFromResults, func(ctx context.Context) (*tmdb.Page, error) {
		return c.api.SearchMovies(ctx, term, page)
	})
}

// GoToPage re-issues the query behind the displayed list at another page
func (c *Catalog) GoToPage(ctx context.Context, page int) (Snapshot, error) {
	page = clampPage(page)

	c.mu.RLock()
	q, loaded, active := c.state.Query, c.state.Loaded(), c.state.Sort
	c.mu.RUnlock()

	if !loaded {
		return c.LoadPage(ctx, page, active)
	}

	switch q.Kind {
	case QueryCategory:
		return c.filterByCategory(ctx, q.Category, page)
	case QuerySearch:
		return c.search(ctx, q.Term, page)
	default:
		return c.LoadPage(ctx, page, q.Sort)
	}
}

func (c *Catalog) activeSort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Sort
}

func pagesFromResults(p *tmdb.Page) int {
	return PagesFromResults(p.TotalResults)
}

// reject records an error that was detected before any request was issued
func (c *Catalog) reject(err error) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Err = err
	c.logger.Error().Err(err).Msg("Rejected catalog request")

	return c.state.clone(), err
}

// run issues one fetch and applies its result if no newer fetch was issued meanwhile
func (c *Catalog) run(
	ctx context.Context,
	q Query,
	page int,
	pageCount func(*tmdb.Page) int,
	fetch func(context.Context) (*tmdb.Page, error),
) (Snapshot, error) {
	seq := c.issued.Add(1)

	result, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.issued.Load(); seq != latest {
		c.logger.Debug().
			Uint64("seq", seq).
			Uint64("latest", latest).
			Str("query", q.Kind.String()).
			Msg("Discarding superseded response")
		return c.state.clone(), ErrSuperseded
	}

	if err != nil {
		c.state.Err = err
		c.logger.Error().
			Err(err).
			Str("query", q.Kind.String()).
			Str("sort", q.Sort).
			Str("category", q.Category).
			Str("term", q.Term).
			Int("page", page).
			Msg("Failed to fetch movies")
		return c.state.clone(), err
	}

	if result.Page > 0 {
		page = result.Page
	}

	c.state = Snapshot{
		Movies:    result.Results,
		PageCount: pageCount(result),
		Page:      page,
		Sort:      c.state.Sort,
		Query:     q,
		Seq:       seq,
	}

	c.logger.Debug().
		Uint64("seq", seq).
		Str("query", q.Kind.String()).
		Int("page", page).
		Int("page_count", c.state.PageCount).
		Int("results", len(result.Results)).
		Msg("Catalog updated")

	return c.state.clone(), nil
}
