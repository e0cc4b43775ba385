package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/catalog"
	"github.com/crono/flox/internal/httputil"
	"github.com/crono/flox/internal/version"
)

// Server exposes the catalog operations over HTTP. Authentication and
// session handling live in front of it and are not its concern.
type Server struct {
	items    *catalog.Service
	episodes *catalog.EpisodeService
	logger   *logrus.Logger
	router   chi.Router
}

func NewServer(items *catalog.Service, episodes *catalog.EpisodeService, logger *logrus.Logger) *Server {
	s := &Server{
		items:    items,
		episodes: episodes,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Get("/search", s.handleSearch)
		r.Get("/find", s.handleFindItem)
		r.Get("/resolve", s.handleResolveFile)
		r.Post("/", s.handleCreateItem)
		r.Post("/import", s.handleImportItem)
		r.Post("/refresh-all", s.handleRefreshAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetItem)
			r.Post("/refresh", s.handleRefreshItem)
			r.Delete("/", s.handleRemoveItem)
			r.Patch("/rating", s.handleChangeRating)
			r.Patch("/historic", s.handleToggleHistoric)
		})
	})

	r.Route("/episodes", func(r chi.Router) {
		r.Get("/{tmdbID}", s.handleListEpisodes)
		r.Patch("/{tmdbID}/season/{season}", s.handleToggleSeason)
		r.Patch("/seen/{id}", s.handleToggleSeen)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}
