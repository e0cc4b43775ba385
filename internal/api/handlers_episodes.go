package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/httputil"
)

func (s *Server) handleListEpisodes(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.Atoi(chi.URLParam(r, "tmdbID"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid TMDB ID")
		return
	}

	seasons, spoilers, err := s.episodes.GetAllByProviderID(r.Context(), tmdbID)
	if err != nil {
		s.logger.WithError(err).WithField("tmdb_id", tmdbID).Error("list episodes failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "failed to list episodes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"seasons":            seasons,
		"spoiler_protection": spoilers,
	})
}

func (s *Server) handleToggleSeen(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid episode ID")
		return
	}

	if err := s.episodes.ToggleSeen(r.Context(), id); err != nil {
		s.logger.WithError(err).WithField("episode_id", id).Error("toggle seen failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "failed to toggle episode")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "toggled"})
}

func (s *Server) handleToggleSeason(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.Atoi(chi.URLParam(r, "tmdbID"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid TMDB ID")
		return
	}
	season, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid season number")
		return
	}

	var body struct {
		Seen bool `json:"seen"`
	}
	if err := httputil.ReadJSON(r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := s.episodes.ToggleSeason(r.Context(), tmdbID, season, body.Seen); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tmdb_id": tmdbID,
			"season":  season,
		}).Error("toggle season failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "failed to toggle season")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "toggled"})
}
