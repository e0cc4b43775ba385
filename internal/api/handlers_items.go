package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crono/flox/internal/catalog"
	"github.com/crono/flox/internal/httputil"
	"github.com/crono/flox/internal/models"
)

// ──────────────────── Listing ────────────────────

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	typ := models.ListType(q.Get("type"))
	if typ == "" {
		typ = models.ListTypeAll
	}
	orderBy := models.SortField(q.Get("order_by"))
	if orderBy == "" {
		orderBy = models.SortLastSeen
	}
	desc := q.Get("direction") != "asc"

	page := 1
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid page")
			return
		}
		page = n
	}

	items, err := s.items.GetWithPagination(r.Context(), typ, orderBy, desc, page)
	if err != nil {
		s.logger.WithError(err).Error("list items failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "failed to list items")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("q")
	if title == "" {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "missing query")
		return
	}

	items, err := s.items.Search(r.Context(), title)
	if err != nil {
		s.logger.WithError(err).Error("search failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "search failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid item ID")
		return
	}

	detail, err := s.items.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.WithError(err).WithField("item_id", id).Error("get item failed")
		}
		httputil.WriteCatalogError(w, err, "failed to load item")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) handleFindItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := models.FindKind(q.Get("by"))
	value := q.Get("value")
	mediaType := models.MediaType(q.Get("media_type"))

	item, err := s.items.FindBy(r.Context(), kind, value, mediaType)
	if err != nil {
		s.logger.WithError(err).Error("find item failed")
		httputil.WriteCatalogError(w, err, "lookup failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (s *Server) handleResolveFile(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "missing filename")
		return
	}

	res, err := s.items.ResolveFile(r.Context(), filename)
	if err != nil {
		s.logger.WithError(err).Error("resolve file failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "resolve failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// ──────────────────── Mutations ────────────────────

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateInput
	if err := httputil.ReadJSON(r, &in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if in.TmdbID == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "tmdb_id is required")
		return
	}
	if in.MediaType != models.MediaTypeMovie && in.MediaType != models.MediaTypeTV {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid media_type")
		return
	}

	item, err := s.items.Create(r.Context(), in)
	if err != nil {
		s.logger.WithError(err).WithField("tmdb_id", in.TmdbID).Error("create item failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "failed to create item")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (s *Server) handleImportItem(w http.ResponseWriter, r *http.Request) {
	var in catalog.ImportItem
	if err := httputil.ReadJSON(r, &in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	item, err := s.items.Import(r.Context(), in)
	if err != nil {
		s.logger.WithError(err).Error("import item failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "failed to import item")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (s *Server) handleRefreshItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid item ID")
		return
	}

	item, err := s.items.Refresh(r.Context(), id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) && !errors.Is(err, catalog.ErrNotRefreshed) {
			s.logger.WithError(err).WithField("item_id", id).Error("refresh failed")
		}
		httputil.WriteCatalogError(w, err, "refresh failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (s *Server) handleRefreshAll(w http.ResponseWriter, r *http.Request) {
	if err := s.items.RefreshAll(r.Context()); err != nil {
		s.logger.WithError(err).Error("refresh-all dispatch failed")
		httputil.WriteError(w, http.StatusInternalServerError, "internal", "failed to queue refresh")
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid item ID")
		return
	}

	if err := s.items.Remove(r.Context(), id); err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.WithError(err).WithField("item_id", id).Error("remove failed")
		}
		httputil.WriteCatalogError(w, err, "failed to remove item")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleChangeRating(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid item ID")
		return
	}

	var body struct {
		Rating int `json:"rating"`
	}
	if err := httputil.ReadJSON(r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if body.Rating < 0 || body.Rating > 10 {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "rating must be between 0 and 10")
		return
	}

	item, err := s.items.ChangeRating(r.Context(), id, body.Rating)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.WithError(err).WithField("item_id", id).Error("change rating failed")
		}
		httputil.WriteCatalogError(w, err, "failed to change rating")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (s *Server) handleToggleHistoric(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "invalid item ID")
		return
	}

	item, err := s.items.ToggleHistoric(r.Context(), id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.WithError(err).WithField("item_id", id).Error("toggle historic failed")
		}
		httputil.WriteCatalogError(w, err, "failed to toggle historic flag")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}
