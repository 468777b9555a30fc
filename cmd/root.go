package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/moviedeck/catalog"
	"github.com/s0up4200/moviedeck/config"
	"github.com/s0up4200/moviedeck/display"
	"github.com/s0up4200/moviedeck/favorites"
	"github.com/s0up4200/moviedeck/metrics"
	"github.com/s0up4200/moviedeck/tmdb"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	tmdbClient    *tmdb.Client
	movieCatalog  *catalog.Catalog
	favoriteStore *favorites.Store
	appMetrics    *metrics.Metrics
	formatter     *display.ConsoleFormatter
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moviedeck",
	Short: "Browse, search and save movies from The Movie Database",
	Long: `moviedeck browses TMDB listings by sort order or category, searches by title,
narrows results with filter expressions and keeps a personal list of movies.

It runs as a CLI or serves the same views in the browser with "moviedeck serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	if cfg.Server.Metrics {
		appMetrics = metrics.New()
	}

	opts := []tmdb.Option{
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithLanguage(cfg.TMDB.Language),
	}
	if cfg.TMDB.Token != "" {
		opts = append(opts, tmdb.WithBearerToken(cfg.TMDB.Token))
	}
	if appMetrics != nil {
		opts = append(opts, tmdb.WithTransport(appMetrics.InstrumentTransport))
	}

	// Create TMDB client
	tmdbClient, err = tmdb.NewClient(cfg.TMDB.BaseURL, cfg.TMDB.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	movieCatalog = catalog.New(tmdbClient, cfg.Catalog.DefaultSort, logger)

	favoriteStore, err = favorites.Open(cfg.Favorites.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open favorites: %w", err)
	}
	if appMetrics != nil {
		appMetrics.RegisterFavorites(favoriteStore.Len)
	}

	formatter = display.NewConsoleFormatter(cfg.TMDB.ImageBase)

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// commandContext is cancelled on SIGINT or SIGTERM
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test connection to TMDB",
	Long:    `Test the connection and credentials for the configured TMDB API.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to TMDB at %s...\n", cfg.TMDB.BaseURL)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := tmdbClient.TestConnection(ctx); err != nil {
		if errors.Is(err, tmdb.ErrUnauthorized) {
			return fmt.Errorf("TMDB rejected the credentials, check tmdb.api_key or tmdb.token: %w", err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Println("✓ Connection successful!")

	auth := "api_key"
	if cfg.TMDB.Token != "" {
		auth = "bearer token"
	}

	fmt.Printf("\nSettings:\n")
	fmt.Printf("- Authentication: %s\n", auth)
	fmt.Printf("- Language: %s\n", cfg.TMDB.Language)
	fmt.Printf("- Default sort: %s\n", cfg.Catalog.DefaultSort)
	fmt.Printf("- Favorites: %d saved in %s\n", favoriteStore.Len(), cfg.Favorites.Path)

	return nil
}
