package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviedeck/catalog"
	"github.com/s0up4200/moviedeck/display"
	"github.com/s0up4200/moviedeck/filter"
)

var (
	// Command flags
	sortKey      string
	pageNumber   int
	filterExpr   string
	showOverview bool
	showPoster   bool
)

// moviesCmd represents the movies command
var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "Browse and search movies",
}

var moviesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List movies by sort order",
	Long: `List TMDB movies ordered by one of: popular, top_rated, upcoming, now_playing.

Without --page the default listing is shown. With --page that page of the sorted listing is fetched.`,
	Args:    cobra.NoArgs,
	PreRunE: initializeApp,
	RunE:    runMoviesList,
}

var moviesCategoryCmd = &cobra.Command{
	Use:   "category NAME",
	Short: "List movies in a category",
	Long: `List movies in a category. NAME is an Arabic category name or its English
alias, see "moviedeck genres". Unknown names list all categories.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runMoviesCategory,
}

var moviesSearchCmd = &cobra.Command{
	Use:     "search TERM",
	Short:   "Search movies by title",
	Long:    `Search movies by title. An empty term shows the default listing.`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: initializeApp,
	RunE:    runMoviesSearch,
}

var moviesShowCmd = &cobra.Command{
	Use:     "show ID",
	Short:   "Show details for a movie",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runMoviesShow,
}

func init() {
	rootCmd.AddCommand(moviesCmd)
	moviesCmd.AddCommand(moviesListCmd, moviesCategoryCmd, moviesSearchCmd, moviesShowCmd)

	for _, c := range []*cobra.Command{moviesListCmd, moviesCategoryCmd, moviesSearchCmd} {
		c.Flags().IntVar(&pageNumber, "page", 0, "page number (1-500)")
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or preset name from config")
		c.Flags().BoolVar(&showOverview, "overview", false, "show movie overviews")
		c.Flags().BoolVar(&showPoster, "poster", false, "show poster URLs")
	}
	moviesListCmd.Flags().StringVarP(&sortKey, "sort", "s", "", "sort order (default from catalog.default_sort)")
}

func runMoviesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sort := sortKey
	if sort == "" {
		sort = movieCatalog.DefaultSort()
	}

	var (
		snap catalog.Snapshot
		err  error
	)
	if cmd.Flags().Changed("page") {
		snap, err = movieCatalog.LoadPage(ctx, pageNumber, sort)
	} else {
		snap, err = movieCatalog.LoadDefault(ctx, sort)
	}
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}

	return printSnapshot(snap, sort)
}

func runMoviesCategory(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	snap, err := movieCatalog.FilterByCategory(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list category %q: %w", args[0], err)
	}

	snap, err = goToPage(ctx, snap)
	if err != nil {
		return err
	}

	return printSnapshot(snap, args[0])
}

func runMoviesSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	term := strings.Join(args, " ")
	snap, err := movieCatalog.Search(ctx, term)
	if err != nil {
		return fmt.Errorf("failed to search movies: %w", err)
	}

	snap, err = goToPage(ctx, snap)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("search %q", term)
	if snap.Query.Kind != catalog.QuerySearch {
		label = snap.Query.Sort
	}
	return printSnapshot(snap, label)
}

func runMoviesShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid movie ID: %s", args[0])
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	details, err := tmdbClient.GetMovie(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get movie %d: %w", id, err)
	}

	fmt.Print(formatter.FormatMovieDetails(details, favoriteStore.Contains(id)))
	return nil
}

// goToPage moves the loaded query to --page when one was given
func goToPage(ctx context.Context, snap catalog.Snapshot) (catalog.Snapshot, error) {
	if pageNumber <= 1 {
		return snap, nil
	}
	snap, err := movieCatalog.GoToPage(ctx, pageNumber)
	if err != nil {
		return snap, fmt.Errorf("failed to load page %d: %w", pageNumber, err)
	}
	return snap, nil
}

func printSnapshot(snap catalog.Snapshot, label string) error {
	movies := snap.Movies

	if filterExpr != "" {
		expr := cfg.Filter.Preset(filterExpr)
		f, err := filter.NewCompiler().Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		movies = f.Apply(snap.Movies)
		logger.Info().Msg(filter.Describe(f, len(snap.Movies), len(movies)))
	}

	fmt.Print(formatter.FormatMovieList(movies, display.FormatOptions{
		ShowOverview: showOverview,
		ShowPoster:   showPoster,
		Favorite:     favoriteStore.Contains,
	}))
	fmt.Print(formatter.FormatPageInfo(snap.Page, snap.PageCount, label))

	return nil
}
