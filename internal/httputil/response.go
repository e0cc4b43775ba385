package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crono/flox/internal/catalog"
)

// Request bodies are small JSON documents; anything beyond this is a
// client error, not a catalog record.
const maxBodyBytes = 1 << 20

// Response is the envelope every endpoint writes. Status is "ok" or
// "error"; exactly one of Data and Error is set.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody pairs a machine-readable code with a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Status: "ok", Data: data})
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Status: "error",
		Error:  &ErrorBody{Code: code, Message: message},
	})
}

// WriteCatalogError maps the catalog sentinel outcomes onto their HTTP
// shape: a missing item is 404 not_found, a skipped refresh is 409
// not_refreshed. Everything else becomes an internal error carrying the
// given message, keeping provider and storage details out of responses.
func WriteCatalogError(w http.ResponseWriter, err error, internalMessage string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "item not found")
	case errors.Is(err, catalog.ErrNotRefreshed):
		WriteError(w, http.StatusConflict, "not_refreshed", "provider returned no usable metadata")
	default:
		WriteError(w, http.StatusInternalServerError, "internal", internalMessage)
	}
}

// ReadJSON decodes a request body into dst, capped at one megabyte.
func ReadJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
}
