// Package genre maps category names shown in the UI to TMDB genre ids.
package genre

import (
	"strings"
)

// None is returned for names that match no genre; the discovery query then
// runs without a genre filter.
const None = 0

// Genre is one entry of the lookup table
type Genre struct {
	ID      int
	Name    string // Arabic display name
	English string
}

// table is kept in display order.
var table = []Genre{
	{ID: 28, Name: "أكشن", English: "Action"},
	{ID: 12, Name: "مغامرة", English: "Adventure"},
	{ID: 16, Name: "رسوم متحركة", English: "Animation"},
	{ID: 35, Name: "كوميديا", English: "Comedy"},
	{ID: 80, Name: "جريمة", English: "Crime"},
	{ID: 99, Name: "وثائقي", English: "Documentary"},
	{ID: 18, Name: "دراما", English: "Drama"},
	{ID: 10751, Name: "عائلي", English: "Family"},
	{ID: 14, Name: "خيال", English: "Fantasy"},
	{ID: 36, Name: "تاريخ", English: "History"},
	{ID: 27, Name: "رعب", English: "Horror"},
	{ID: 10402, Name: "موسيقى", English: "Music"},
	{ID: 9648, Name: "غموض", English: "Mystery"},
	{ID: 10749, Name: "رومانسية", English: "Romance"},
	{ID: 878, Name: "خيال علمي", English: "Science Fiction"},
	{ID: 10770, Name: "فيلم تلفزيوني", English: "TV Movie"},
	{ID: 53, Name: "إثارة", English: "Thriller"},
	{ID: 10752, Name: "حرب", English: "War"},
	{ID: 37, Name: "ويسترن", English: "Western"},
}

var (
	byName    = make(map[string]Genre, len(table))
	byEnglish = make(map[string]Genre, len(table))
	byID      = make(map[int]Genre, len(table))
)

func init() {
	for _, g := range table {
		byName[g.Name] = g
		byEnglish[strings.ToLower(g.English)] = g
		byID[g.ID] = g
	}
}

// Lookup resolves a category name to its TMDB genre id. Arabic names match
// exactly, English names case-insensitively. Unknown names return None.
func Lookup(name string) int {
	if g, ok := Find(name); ok {
		return g.ID
	}
	return None
}

// Find returns the table entry for a category name
func Find(name string) (Genre, bool) {
	name = strings.TrimSpace(name)
	if g, ok := byName[name]; ok {
		return g, true
	}
	g, ok := byEnglish[strings.ToLower(name)]
	return g, ok
}

// ByID returns the table entry for a TMDB genre id
func ByID(id int) (Genre, bool) {
	g, ok := byID[id]
	return g, ok
}

// Names returns the display names of the given genre ids, skipping unknown ids
func Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			names = append(names, g.Name)
		}
	}
	return names
}

// All returns a copy of the table in display order
func All() []Genre {
	out := make([]Genre, len(table))
	copy(out, table)
	return out
}
