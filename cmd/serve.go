package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviedeck/filter"
	"github.com/s0up4200/moviedeck/web"
)

// filterCacheSize bounds compiled filter programs kept by the web server
const filterCacheSize = 64

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser UI",
	Long: `Serve the browser UI: browse, search and category pages, movie details and your list.

Prometheus metrics are served at /metrics unless server.metrics is false.`,
	Args:    cobra.NoArgs,
	PreRunE: initializeApp,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv, err := web.New(web.Config{
		Catalog:   movieCatalog,
		Favorites: favoriteStore,
		Details:   tmdbClient,
		Filters:   filter.NewCompiler(filter.WithCache(filterCacheSize)),
		Presets:   cfg.Filter,
		Metrics:   appMetrics,
		ImageBase: cfg.TMDB.ImageBase,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	return srv.ListenAndServe(ctx, addr)
}
