// Package filter narrows movie lists with expr-lang expressions such as
//
//	Rating >= 7.5 and Year > 2015 and hasGenre("Drama")
//
// Available fields: Title, OriginalTitle, Overview, Language, Year, Released,
// Rating, Votes, Popularity, Adult, Genres, GenreIDs. Helpers: hasGenre,
// contains, startsWith, lower, upper, daysSince, yearsAgo, now.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/moviedeck/genre"
	"github.com/s0up4200/moviedeck/tmdb"
)

// Filter is a compiled filter expression
type Filter struct {
	expression string
	program    *vm.Program
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache caches up to size compiled programs by expression text
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*vm.Program](size)
		}
	}
}

// Compiler compiles filter expressions
type Compiler struct {
	cache *lruCache[*vm.Program]
}

// NewCompiler creates a new compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile parses and type-checks an expression
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression", Err: ErrEmptyExpression}
	}

	if c.cache != nil {
		if program, ok := c.cache.Get(expression); ok {
			return &Filter{expression: expression, program: program}, nil
		}
	}

	program, err := expr.Compile(expression, expr.Env(movieEnv(tmdb.Movie{})), expr.AsBool())
	if err != nil {
		return nil, &CompilationError{Expression: expression, Reason: err.Error(), Err: err}
	}

	if c.cache != nil {
		c.cache.Put(expression, program)
	}

	return &Filter{expression: expression, program: program}, nil
}

// Compile compiles an expression without caching
func Compile(expression string) (*Filter, error) {
	return NewCompiler().Compile(expression)
}

// Match evaluates the filter against a movie. Evaluation errors count as no match.
func (f *Filter) Match(movie tmdb.Movie) bool {
	result, err := expr.Run(f.program, movieEnv(movie))
	if err != nil {
		return false
	}
	matched, ok := result.(bool)
	return ok && matched
}

// Apply returns the movies that match, in their original order
func (f *Filter) Apply(movies []tmdb.Movie) []tmdb.Movie {
	matched := make([]tmdb.Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m) {
			matched = append(matched, m)
		}
	}
	return matched
}

// String returns the original expression
func (f *Filter) String() string {
	return f.expression
}

func movieEnv(m tmdb.Movie) map[string]any {
	genres := make([]string, 0, len(m.GenreIDs))
	for _, id := range m.GenreIDs {
		if g, ok := genre.ByID(id); ok {
			genres = append(genres, g.English)
		}
	}

	return map[string]any{
		"Title":         m.Title,
		"OriginalTitle": m.OriginalTitle,
		"Overview":      m.Overview,
		"Language":      m.OriginalLanguage,
		"Year":          m.Year(),
		"Released":      m.Released(),
		"Rating":        m.Rating,
		"Votes":         m.VoteCount,
		"Popularity":    m.Popularity,
		"Adult":         m.Adult,
		"Genres":        genres,
		"GenreIDs":      m.GenreIDs,

		"hasGenre": func(name string) bool {
			id := genre.Lookup(name)
			if id == genre.None {
				return false
			}
			for _, gid := range m.GenreIDs {
				if gid == id {
					return true
				}
			}
			return false
		},
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"yearsAgo": func(years int) time.Time {
			return time.Now().AddDate(-years, 0, 0)
		},
		"now": time.Now,
	}
}

// Describe summarises a filter result for logging
func Describe(f *Filter, before, after int) string {
	return fmt.Sprintf("%q kept %d of %d movies", f.String(), after, before)
}
