package catalog

import "github.com/s0up4200/moviedeck/tmdb"

// ClampPages caps a service-reported page total at tmdb.MaxPages
func ClampPages(totalPages int) int {
	return max(0, min(totalPages, tmdb.MaxPages))
}

// PagesFromResults derives the page count from a result total,
// ceil(totalResults / tmdb.PageSize), capped at tmdb.MaxPages
func PagesFromResults(totalResults int) int {
	if totalResults <= 0 {
		return 0
	}
	return ClampPages((totalResults + tmdb.PageSize - 1) / tmdb.PageSize)
}

// clampPage keeps a requested page number within [1, tmdb.MaxPages]
func clampPage(page int) int {
	return max(1, min(page, tmdb.MaxPages))
}
