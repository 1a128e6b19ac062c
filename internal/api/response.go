package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/farmerchain/farmerchain/internal/carbon"
	"github.com/farmerchain/farmerchain/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps store sentinel errors onto HTTP statuses. Lifecycle
// violations and duplicates are conflicts, absent rows are 404s, and
// collaborator outages are bad gateways.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotOwner):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrQuoteNotOpen),
		errors.Is(err, store.ErrNegotiationClosed),
		errors.Is(err, store.ErrDuplicateBid),
		errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, carbon.ErrUnavailable):
		jsonError(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("internal error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
