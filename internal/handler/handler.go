package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/reco-service/internal/domain"
	"github.com/actuallystonmai/reco-service/internal/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writes JSON error response. loc is the location of an invalid parameter, if any.
func writeError(w http.ResponseWriter, status int, errKey, message string, loc ...string) {
	writeJSON(w, status, ErrorResponse{
		Errors: []ErrorDetail{{
			ErrorKey:     errKey,
			ErrorMessage: message,
			ErrorLoc:     loc,
		}},
	})
}

// writeServiceError maps domain errors to 404 responses and anything else to a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, modelName string, userID, itemID int64) {
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		writeError(w, http.StatusNotFound, "model_not_found", fmt.Sprintf("Model %s not found", modelName))
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", fmt.Sprintf("User %d not found", userID))
	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item_not_found", fmt.Sprintf("Item %d not found", itemID))
	case errors.Is(err, domain.ErrNotImplemented):
		writeError(w, http.StatusNotFound, "not_implemented", fmt.Sprintf("Model %s does not support this operation", modelName))
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		key, msg := service.CategorizeError(err)
		writeError(w, http.StatusInternalServerError, key, msg)
	}
}

// pathInt64 parses an integer path parameter, writing a 422 when it is malformed.
func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error",
			fmt.Sprintf("%s must be an integer", name), "path", name)
		return 0, false
	}
	return v, true
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt(w http.ResponseWriter, r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		writeError(w, http.StatusUnprocessableEntity, "validation_error",
			fmt.Sprintf("%s must be an integer between %d and %d", name, lo, hi), "query", name)
		return 0, false
	}
	return v, true
}
