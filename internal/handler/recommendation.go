package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const healthMessage = "I am alive. Everything is OK!"

// GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Health: healthMessage})
}

// GET /models
func (h *Handler) ListModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ModelsResponse{Models: h.service.Models()})
}

// GET /reco/{model_name}/{user_id}
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	modelName := chi.URLParam(r, "model_name")
	userID, ok := pathInt64(w, r, "user_id")
	if !ok {
		return
	}

	zerolog.Ctx(r.Context()).Debug().Str("model", modelName).Int64("user_id", userID).Msg("reco request")

	result, err := h.service.GetRecommendations(r.Context(), modelName, userID)
	if err != nil {
		writeServiceError(w, r, err, modelName, userID, 0)
		return
	}

	writeJSON(w, http.StatusOK, RecoResponse{UserID: result.UserID, Items: result.Items})
}

// GET /explain/{model_name}/{user_id}/{item_id}
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	modelName := chi.URLParam(r, "model_name")
	userID, ok := pathInt64(w, r, "user_id")
	if !ok {
		return
	}
	itemID, ok := pathInt64(w, r, "item_id")
	if !ok {
		return
	}

	result, err := h.service.Explain(r.Context(), modelName, userID, itemID)
	if err != nil {
		writeServiceError(w, r, err, modelName, userID, itemID)
		return
	}

	writeJSON(w, http.StatusOK, ExplainResponse{P: result.P, Explanation: result.Explanation})
}
