package catalog

import (
	"slices"

	"github.com/s0up4200/moviedeck/tmdb"
)

// QueryKind identifies which endpoint produced the displayed list
type QueryKind int

const (
	// QueryDefault is the sorted default listing, movie/{sort} without a page
	QueryDefault QueryKind = iota
	// QuerySorted is an explicit page of the sorted listing
	QuerySorted
	// QueryCategory is a genre discovery query
	QueryCategory
	// QuerySearch is a free-text search
	QuerySearch
)

// String returns the string representation of a QueryKind
func (k QueryKind) String() string {
	switch k {
	case QueryDefault:
		return "default"
	case QuerySorted:
		return "sorted"
	case QueryCategory:
		return "category"
	case QuerySearch:
		return "search"
	default:
		return "unknown"
	}
}

// Query describes the request behind the displayed list
type Query struct {
	Kind     QueryKind
	Sort     string
	Category string
	GenreID  int
	Term     string
}

// Snapshot is a read-only copy of the catalog state handed to views
type Snapshot struct {
	Movies    []tmdb.Movie
	PageCount int
	Page      int
	// Sort is the active sort key, changed only by ChangeSort
	Sort  string
	Query Query
	// Err is the failure of the most recent fetch, nil after a success
	Err error
	// Seq is the sequence number of the request that produced Movies
	Seq uint64
}

// Loaded reports whether any fetch has succeeded yet
func (s Snapshot) Loaded() bool {
	return s.Seq > 0
}

// HasPrev reports whether a previous page exists
func (s Snapshot) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists
func (s Snapshot) HasNext() bool {
	return s.Page < s.PageCount
}

func (s Snapshot) clone() Snapshot {
	s.Movies = slices.Clone(s.Movies)
	return s
}
