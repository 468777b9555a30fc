package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviedeck/favorites"
)

var (
	refreshFavorites bool
	refreshLimit     int
)

// favoritesCmd represents the favorites command
var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"mylist"},
	Short:   "Manage your saved movies",
}

var favoritesAddCmd = &cobra.Command{
	Use:     "add ID",
	Short:   "Save a movie to your list",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Remove a movie from your list",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runFavoritesRemove,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show your saved movies",
	Long: `Show your saved movies in the order they were added.

With --refresh every saved movie is fetched again from TMDB first.`,
	Args:    cobra.NoArgs,
	PreRunE: initializeApp,
	RunE:    runFavoritesList,
}

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesAddCmd, favoritesRemoveCmd, favoritesListCmd)

	favoritesListCmd.Flags().BoolVar(&refreshFavorites, "refresh", false, "re-fetch saved movies from TMDB")
	favoritesListCmd.Flags().IntVar(&refreshLimit, "concurrency", favorites.DefaultRefreshLimit, "maximum concurrent TMDB requests during refresh")
}

func parseMovieID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie ID: %s", arg)
	}
	return id, nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	details, err := tmdbClient.GetMovie(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get movie %d: %w", id, err)
	}

	movie := details.Summary()
	added, err := favoriteStore.Add(movie)
	if err != nil {
		return err
	}

	if !added {
		fmt.Printf("%s is already in your list\n", movie.Title)
		return nil
	}
	fmt.Printf("✓ Added %s to your list\n", movie.Title)
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}

	entry, _ := favoriteStore.Get(id)

	removed, err := favoriteStore.Remove(id)
	if err != nil {
		return err
	}

	if !removed {
		fmt.Printf("Movie %d is not in your list\n", id)
		return nil
	}
	fmt.Printf("✓ Removed %s from your list\n", entry.Movie.Title)
	return nil
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	if refreshFavorites {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := favoriteStore.Refresh(ctx, tmdbClient, refreshLimit)
		if err != nil {
			return fmt.Errorf("failed to refresh favorites: %w", err)
		}

		logger.Info().
			Int("requested", result.Requested).
			Int("updated", len(result.Updated)).
			Int("failed", len(result.Failed)).
			Msg("Refreshed favorites")

		for _, failure := range result.Failed {
			fmt.Printf("✗ %v\n", failure)
		}
	}

	fmt.Print(formatter.FormatFavorites(favoriteStore.List()))
	return nil
}
