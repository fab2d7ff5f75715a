package handler

import (
	"net/http"

	"github.com/herbal-remedy-api/internal/application/recommend"
)

type RecommendationRequest struct {
	MedicalConcern string `json:"medical_concern"`
	PreferEdible   bool   `json:"prefer_edible"`
}

// RecommendationHandler serves the symptom-to-remedy pipeline.
type RecommendationHandler struct {
	svc recommend.Service
}

func NewRecommendationHandler(svc recommend.Service) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	set, err := h.svc.Recommend(r.Context(), req.MedicalConcern, req.PreferEdible)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OutputEnvelope{Output: set})
}
