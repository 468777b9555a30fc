// Package display renders movies, pages, details and favorites for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/s0up4200/moviedeck/favorites"
	"github.com/s0up4200/moviedeck/genre"
	"github.com/s0up4200/moviedeck/tmdb"
)

// FormatOptions contains options for formatting output
type FormatOptions struct {
	ShowOverview bool
	ShowPoster   bool
	// Favorite marks saved movies in the list
	Favorite func(id int64) bool
}

// ConsoleFormatter provides console output formatting for movies
type ConsoleFormatter struct {
	imageBase string

	title  lipgloss.Style
	faint  lipgloss.Style
	accent lipgloss.Style
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(imageBase string) *ConsoleFormatter {
	return &ConsoleFormatter{
		imageBase: imageBase,
		title:     lipgloss.NewStyle().Bold(true),
		faint:     lipgloss.NewStyle().Faint(true),
		accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// FormatMovieList formats a list of movies as a tree
func (f *ConsoleFormatter) FormatMovieList(movies []tmdb.Movie, options FormatOptions) string {
	if len(movies) == 0 {
		return "No movies found\n"
	}

	var sb strings.Builder

	sb.WriteString("\nMovie")
	if len(movies) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(movies))

	for i, movie := range movies {
		isLast := i == len(movies)-1
		prefix, indent := "├", "│   "
		if isLast {
			prefix, indent = "╰", "    "
		}

		fmt.Fprintf(&sb, "%s── %s", prefix, f.title.Render(movieHeading(movie)))
		if options.Favorite != nil && options.Favorite(movie.ID) {
			sb.WriteString(" " + f.accent.Render("★"))
		}
		sb.WriteString("\n")

		parts := []string{fmt.Sprintf("ID: %d", movie.ID), fmt.Sprintf("Rating: %.1f", movie.Rating)}
		if names := genre.Names(movie.GenreIDs); len(names) > 0 {
			parts = append(parts, strings.Join(names, ", "))
		}
		fmt.Fprintf(&sb, "%s%s\n", indent, f.faint.Render(strings.Join(parts, " | ")))

		if options.ShowPoster {
			if poster := movie.PosterURL(f.imageBase); poster != "" {
				fmt.Fprintf(&sb, "%sPoster: %s\n", indent, poster)
			}
		}
		if options.ShowOverview && movie.Overview != "" {
			fmt.Fprintf(&sb, "%s%s\n", indent, truncate(movie.Overview, 120))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	return sb.String()
}

// FormatPageInfo formats the pagination footer
func (f *ConsoleFormatter) FormatPageInfo(page, pageCount int, label string) string {
	if pageCount == 0 {
		return fmt.Sprintf("\n%s: no pages\n", label)
	}
	return fmt.Sprintf("\n%s: page %d of %d\n", label, page, pageCount)
}

// FormatMovieDetails formats the detail view of a single movie
func (f *ConsoleFormatter) FormatMovieDetails(d *tmdb.MovieDetails, favorite bool) string {
	var sb strings.Builder

	sb.WriteString("\n" + f.title.Render(movieHeading(d.Movie)))
	if favorite {
		sb.WriteString(" " + f.accent.Render("★ in my list"))
	}
	sb.WriteString("\n")

	if d.Tagline != "" {
		sb.WriteString(f.faint.Render(d.Tagline) + "\n")
	}
	sb.WriteString("\n")

	rows := [][2]string{
		{"ID", fmt.Sprintf("%d", d.ID)},
		{"Rating", fmt.Sprintf("%.1f (%d votes)", d.Rating, d.VoteCount)},
		{"Released", d.ReleaseDate},
		{"Runtime", formatRuntime(d.Runtime)},
		{"Genres", strings.Join(d.GenreNames(), ", ")},
		{"Status", d.Status},
		{"IMDb", imdbURL(d.IMDbID)},
		{"Homepage", d.Homepage},
		{"Poster", d.PosterURL(f.imageBase)},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&sb, "  %-9s %s\n", row[0]+":", row[1])
	}

	if d.Overview != "" {
		fmt.Fprintf(&sb, "\n%s\n", d.Overview)
	}

	return sb.String()
}

// FormatFavorites formats the favorites list
func (f *ConsoleFormatter) FormatFavorites(entries []favorites.Entry) string {
	if len(entries) == 0 {
		return "Your list is empty\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nMy list (%d):\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&sb, "%3d. %s  %s\n", i+1, f.title.Render(movieHeading(e.Movie)),
			f.faint.Render(fmt.Sprintf("ID: %d, added %s", e.Movie.ID, e.AddedAt.Format("2006-01-02"))))
	}
	return sb.String()
}

// FormatGenres formats the genre table
func (f *ConsoleFormatter) FormatGenres(genres []genre.Genre) string {
	var sb strings.Builder
	sb.WriteString("\nCategories:\n\n")
	for _, g := range genres {
		fmt.Fprintf(&sb, "  %-6d %-16s %s\n", g.ID, g.English, g.Name)
	}
	return sb.String()
}

func movieHeading(m tmdb.Movie) string {
	if year := m.Year(); year > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, year)
	}
	return m.Title
}

func formatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func imdbURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.imdb.com/title/" + id + "/"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
