package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GET /reco/{model_name}?page=&limit=
func (h *Handler) GetBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	modelName := chi.URLParam(r, "model_name")

	page, ok := queryInt(w, r, "page", 1, 1, 10000)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 20, 1, 100)
	if !ok {
		return
	}

	result, err := h.service.GetBatchRecommendations(r.Context(), modelName, page, limit)
	if err != nil {
		writeServiceError(w, r, err, modelName, 0, 0)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
