// Package web serves the browser UI: the browse grid with search, category and
// sort pickers and pagination, the movie detail page, the favorites list and
// a not-found page.
package web

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/s0up4200/moviedeck/catalog"
	"github.com/s0up4200/moviedeck/favorites"
	"github.com/s0up4200/moviedeck/filter"
	"github.com/s0up4200/moviedeck/metrics"
	"github.com/s0up4200/moviedeck/tmdb"
)

//go:embed templates/*.html
var templateFS embed.FS

// DetailGetter fetches a single movie for the detail page
type DetailGetter interface {
	GetMovie(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
}

// Config holds the server's collaborators
type Config struct {
	Catalog   *catalog.Catalog
	Favorites *favorites.Store
	Details   DetailGetter
	// Filters compiles the browse page's filter parameter. Defaults to an uncached compiler.
	Filters *filter.Compiler
	// Presets maps filter names to expressions. Names are matched as given, then lowercased.
	Presets map[string]string
	// Metrics is optional. When set, handlers are instrumented and /metrics is served.
	Metrics   *metrics.Metrics
	ImageBase string
	Logger    zerolog.Logger
}

// Server is the browser UI
type Server struct {
	catalog   *catalog.Catalog
	favorites *favorites.Store
	details   DetailGetter
	filters   *filter.Compiler
	presets   map[string]string
	metrics   *metrics.Metrics
	imageBase string
	logger    zerolog.Logger
	templates *templates
}

// New creates a server
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Favorites == nil {
		return nil, errors.New("favorites store is required")
	}
	if cfg.Details == nil {
		return nil, errors.New("detail getter is required")
	}

	filters := cfg.Filters
	if filters == nil {
		filters = filter.NewCompiler()
	}

	tmpl, err := parseTemplates(cfg.ImageBase)
	if err != nil {
		return nil, err
	}

	return &Server{
		catalog:   cfg.Catalog,
		favorites: cfg.Favorites,
		details:   cfg.Details,
		filters:   filters,
		presets:   cfg.Presets,
		metrics:   cfg.Metrics,
		imageBase: cfg.ImageBase,
		logger:    cfg.Logger,
		templates: tmpl,
	}, nil
}

// Routes returns the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/", s.handleBrowse)
	r.Get("/movieproject", s.handleBrowse)
	r.Get("/movie/{id}", s.handleDetail)
	r.Get("/mylist", s.handleMyList)
	r.Post("/mylist/{id}", s.handleAddFavorite)
	r.Post("/mylist/{id}/delete", s.handleRemoveFavorite)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting web server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Handled request")
	})
}
