package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/s0up4200/moviedeck/catalog"
	"github.com/s0up4200/moviedeck/favorites"
	"github.com/s0up4200/moviedeck/filter"
	"github.com/s0up4200/moviedeck/genre"
	"github.com/s0up4200/moviedeck/tmdb"
)

// pageWindow is the number of numbered page links shown around the current page
const pageWindow = 9

type layoutData struct {
	Title      string
	Term       string
	Category   string
	Sort       string
	Filter     string
	Categories []genre.Genre
	Sorts      []string
	SavedCount int
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type browseData struct {
	layoutData
	Heading   string
	Movies    []tmdb.Movie
	Saved     map[int64]bool
	Page      int
	PageCount int
	Pages     []pageLink
	PrevURL   string
	NextURL   string
	Return    string
	Filtered  string
	Error     string
}

type detailData struct {
	layoutData
	Movie   *tmdb.MovieDetails
	Saved   bool
	IMDbURL string
	Return  string
	Error   string
}

type myListData struct {
	layoutData
	Entries []favorites.Entry
}

type notFoundData struct {
	layoutData
	Path    string
	Message string
}

type browseParams struct {
	Term     string
	Category string
	Sort     string
	Filter   string
	Page     int
}

func parseBrowseParams(r *http.Request) browseParams {
	q := r.URL.Query()
	p := browseParams{
		Term:     strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Sort:     strings.TrimSpace(q.Get("sort")),
		Filter:   strings.TrimSpace(q.Get("filter")),
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	return p
}

func (s *Server) layout(title string) layoutData {
	return layoutData{
		Title:      title,
		Categories: genre.All(),
		Sorts:      tmdb.SortKeys(),
		Sort:       displayedSort(s.catalog.Snapshot()),
		SavedCount: s.favorites.Len(),
	}
}

// displayedSort is the sort behind a sorted listing on screen, or the
// active sort while a search or category is shown
func displayedSort(snap catalog.Snapshot) string {
	switch snap.Query.Kind {
	case catalog.QueryDefault, catalog.QuerySorted:
		if snap.Query.Sort != "" {
			return snap.Query.Sort
		}
	}
	return snap.Sort
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	params := parseBrowseParams(r)

	snap, err := s.browse(r.Context(), params)

	status := http.StatusOK
	data := s.browseData(snap, params.Filter, r.URL.RequestURI())

	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrSuperseded):
		// a newer request owns the state, show whatever it produced
	case errors.Is(err, tmdb.ErrInvalidSort):
		status = http.StatusBadRequest
		data.Error = fmt.Sprintf("Unknown sort %q", params.Sort)
	default:
		data.Error = "Could not load movies. Showing the previous results."
		if !snap.Loaded() {
			status = http.StatusBadGateway
			data.Error = "Could not load movies."
		}
	}

	if params.Filter != "" && data.Error == "" {
		if err := s.applyFilter(&data, params.Filter); err != nil {
			status = http.StatusBadRequest
			data.Error = err.Error()
		}
	}

	s.render(w, status, "browse.html", data)
}

// browse maps request parameters onto one catalog intent. When the request
// continues the displayed query at another page only the page is fetched, and
// a filter over the list already on screen fetches nothing.
func (s *Server) browse(ctx context.Context, p browseParams) (catalog.Snapshot, error) {
	current := s.catalog.Snapshot()
	q := current.Query
	loaded := current.Loaded()

	var (
		snap catalog.Snapshot
		err  error
	)

	if p.Filter != "" && loaded && showing(current, p) {
		return current, nil
	}

	switch {
	case p.Term != "":
		if p.Page > 0 && loaded && q.Kind == catalog.QuerySearch && q.Term == p.Term {
			return s.catalog.GoToPage(ctx, p.Page)
		}
		snap, err = s.catalog.Search(ctx, p.Term)

	case p.Category != "":
		if p.Page > 0 && loaded && q.Kind == catalog.QueryCategory && q.Category == p.Category {
			return s.catalog.GoToPage(ctx, p.Page)
		}
		snap, err = s.catalog.FilterByCategory(ctx, p.Category)

	case p.Sort != "" && p.Sort != displayedSort(current):
		snap, err = s.catalog.ChangeSort(ctx, p.Sort)

	case p.Sort != "" || p.Page > 1:
		return s.catalog.LoadPage(ctx, max(p.Page, 1), p.Sort)

	default:
		return s.catalog.LoadDefault(ctx, s.catalog.DefaultSort())
	}

	if err != nil || p.Page <= 1 {
		return snap, err
	}
	return s.catalog.GoToPage(ctx, p.Page)
}

// showing reports whether p asks for exactly the list already on screen
func showing(snap catalog.Snapshot, p browseParams) bool {
	if p.Page != 0 && p.Page != snap.Page {
		return false
	}

	q := snap.Query
	switch {
	case p.Term != "":
		return q.Kind == catalog.QuerySearch && q.Term == p.Term
	case p.Category != "":
		return q.Kind == catalog.QueryCategory && q.Category == p.Category
	case p.Sort != "":
		return (q.Kind == catalog.QueryDefault || q.Kind == catalog.QuerySorted) && q.Sort == p.Sort
	default:
		return false
	}
}

// applyFilter narrows the displayed movies to those matching a filter
// expression or preset name
func (s *Server) applyFilter(data *browseData, name string) error {
	expression := name
	if preset, ok := s.presets[name]; ok {
		expression = preset
	} else if preset, ok := s.presets[strings.ToLower(name)]; ok {
		expression = preset
	}

	f, err := s.filters.Compile(expression)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	before := len(data.Movies)
	data.Movies = f.Apply(data.Movies)
	data.Filtered = filter.Describe(f, before, len(data.Movies))
	return nil
}

func (s *Server) browseData(snap catalog.Snapshot, filterExpr, self string) browseData {
	data := browseData{
		layoutData: s.layout("Movies"),
		Heading:    heading(snap.Query),
		Movies:     snap.Movies,
		Saved:      make(map[int64]bool, len(snap.Movies)),
		Page:       snap.Page,
		PageCount:  snap.PageCount,
		Return:     self,
	}

	data.Sort = displayedSort(snap)
	data.Filter = filterExpr
	switch snap.Query.Kind {
	case catalog.QuerySearch:
		data.Term = snap.Query.Term
	case catalog.QueryCategory:
		data.Category = snap.Query.Category
	}

	for _, m := range snap.Movies {
		if s.favorites.Contains(m.ID) {
			data.Saved[m.ID] = true
		}
	}

	if !snap.Loaded() {
		return data
	}

	if snap.HasPrev() {
		data.PrevURL = pageURL(snap.Query, snap.Page-1, filterExpr)
	}
	if snap.HasNext() {
		data.NextURL = pageURL(snap.Query, snap.Page+1, filterExpr)
	}

	first := max(1, snap.Page-pageWindow/2)
	last := min(snap.PageCount, first+pageWindow-1)
	first = max(1, last-pageWindow+1)
	for n := first; n <= last; n++ {
		data.Pages = append(data.Pages, pageLink{
			Number:  n,
			URL:     pageURL(snap.Query, n, filterExpr),
			Current: n == snap.Page,
		})
	}

	return data
}

func heading(q catalog.Query) string {
	switch q.Kind {
	case catalog.QuerySearch:
		return fmt.Sprintf("Results for %q", q.Term)
	case catalog.QueryCategory:
		if g, ok := genre.Find(q.Category); ok {
			return fmt.Sprintf("%s (%s)", g.Name, g.English)
		}
		return "All categories"
	default:
		return strings.ReplaceAll(q.Sort, "_", " ")
	}
}

// pageURL links to page n of the query behind q
func pageURL(q catalog.Query, n int, filterExpr string) string {
	v := url.Values{}
	switch q.Kind {
	case catalog.QuerySearch:
		v.Set("q", q.Term)
	case catalog.QueryCategory:
		v.Set("category", q.Category)
	default:
		v.Set("sort", q.Sort)
	}
	if filterExpr != "" {
		v.Set("filter", filterExpr)
	}
	v.Set("page", strconv.Itoa(n))
	return "/?" + v.Encode()
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(r)
	if !ok {
		s.notFound(w, r, "Invalid movie id")
		return
	}

	data := detailData{
		layoutData: s.layout("Movie"),
		Saved:      s.favorites.Contains(id),
		Return:     r.URL.RequestURI(),
	}

	movie, err := s.details.GetMovie(r.Context(), id)
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		s.notFound(w, r, "Movie not found")
		return
	case err != nil:
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to get movie details")
		data.Error = "Could not load this movie."
		s.render(w, http.StatusBadGateway, "detail.html", data)
		return
	}

	data.Title = movie.Title
	data.Movie = movie
	if movie.IMDbID != "" {
		data.IMDbURL = "https://www.imdb.com/title/" + movie.IMDbID + "/"
	}

	s.render(w, http.StatusOK, "detail.html", data)
}

func (s *Server) handleMyList(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "mylist.html", myListData{
		layoutData: s.layout("My list"),
		Entries:    s.favorites.List(),
	})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(r)
	if !ok {
		s.notFound(w, r, "Invalid movie id")
		return
	}

	movie, err := s.findMovie(r.Context(), id)
	if errors.Is(err, tmdb.ErrNotFound) {
		s.notFound(w, r, "Movie not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to look up movie")
		http.Error(w, "could not look up movie", http.StatusBadGateway)
		return
	}

	added, err := s.favorites.Add(movie)
	if err != nil {
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to save favorite")
		http.Error(w, "could not save favorite", http.StatusInternalServerError)
		return
	}
	if added {
		s.logger.Info().Int64("movie_id", id).Str("title", movie.Title).Msg("Added to my list")
	}

	http.Redirect(w, r, returnTo(r, "/mylist"), http.StatusSeeOther)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(r)
	if !ok {
		s.notFound(w, r, "Invalid movie id")
		return
	}

	removed, err := s.favorites.Remove(id)
	if err != nil {
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to remove favorite")
		http.Error(w, "could not remove favorite", http.StatusInternalServerError)
		return
	}
	if removed {
		s.logger.Info().Int64("movie_id", id).Msg("Removed from my list")
	}

	http.Redirect(w, r, returnTo(r, "/mylist"), http.StatusSeeOther)
}

// findMovie prefers the listing snapshot already on screen over a detail request
func (s *Server) findMovie(ctx context.Context, id int64) (tmdb.Movie, error) {
	for _, m := range s.catalog.Snapshot().Movies {
		if m.ID == id {
			return m, nil
		}
	}

	details, err := s.details.GetMovie(ctx, id)
	if err != nil {
		return tmdb.Movie{}, err
	}
	return details.Summary(), nil
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.notFound(w, r, "Page not found")
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, message string) {
	s.render(w, http.StatusNotFound, "notfound.html", notFoundData{
		layoutData: s.layout("Not found"),
		Path:       r.URL.Path,
		Message:    message,
	})
}

func movieID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// returnTo reads a local redirect target from the form
func returnTo(r *http.Request, fallback string) string {
	target := r.FormValue("return")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
