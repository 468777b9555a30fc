package tmdb

import (
	"slices"
	"strings"
	"time"
)

// Listing limits imposed by the service.
const (
	// MaxPages is the highest page TMDB serves for any paginated endpoint
	MaxPages = 500
	// PageSize is the number of results per page
	PageSize = 20
)

// Sort keys served by the movie/{sort} listing endpoint
const (
	SortPopular    = "popular"
	SortTopRated   = "top_rated"
	SortUpcoming   = "upcoming"
	SortNowPlaying = "now_playing"
)

var sortKeys = []string{SortPopular, SortTopRated, SortUpcoming, SortNowPlaying}

// SortKeys returns the supported sort keys in display order
func SortKeys() []string {
	return slices.Clone(sortKeys)
}

// ValidSort reports whether sort is a supported listing sort key
func ValidSort(sort string) bool {
	return slices.Contains(sortKeys, sort)
}

// Movie is a movie as it appears in listing, discovery and search results
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	Rating           float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	GenreIDs         []int   `json:"genre_ids"`
}

// Released parses the release date, returning the zero time when unknown
func (m Movie) Released() time.Time {
	t, err := time.Parse("2006-01-02", m.ReleaseDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Year returns the release year, or 0 when the release date is unknown
func (m Movie) Year() int {
	if t := m.Released(); !t.IsZero() {
		return t.Year()
	}
	return 0
}

// PosterURL joins the image base with the poster path
func (m Movie) PosterURL(imageBase string) string {
	return ImageURL(imageBase, m.PosterPath)
}

// ImageURL joins an image base such as https://image.tmdb.org/t/p/w500 with a
// TMDB image path. It returns "" when the path is empty.
func ImageURL(imageBase, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(path, "/")
}

// Genre is a TMDB genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the response of GET movie/{id}
type MovieDetails struct {
	Movie
	Runtime  int     `json:"runtime"`
	Tagline  string  `json:"tagline,omitempty"`
	Status   string  `json:"status,omitempty"`
	Homepage string  `json:"homepage,omitempty"`
	IMDbID   string  `json:"imdb_id,omitempty"`
	Genres   []Genre `json:"genres"`
}

// Summary converts details into the listing form, filling GenreIDs from Genres
func (d *MovieDetails) Summary() Movie {
	m := d.Movie
	if len(m.GenreIDs) == 0 && len(d.Genres) > 0 {
		m.GenreIDs = make([]int, 0, len(d.Genres))
		for _, g := range d.Genres {
			m.GenreIDs = append(m.GenreIDs, g.ID)
		}
	}
	return m
}

// GenreNames returns the names of the movie's genres
func (d *MovieDetails) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// Page represents one page of a paginated movie response
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// statusResponse is the error body TMDB returns on failures
type statusResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
