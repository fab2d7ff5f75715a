package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/herbal-remedy-api/internal/application/recipe"
	"github.com/herbal-remedy-api/internal/domain"
	"github.com/herbal-remedy-api/internal/transport/http/middleware"
)

// RecipeHandler serves recipe generation and the saved-recipe lifecycle.
type RecipeHandler struct {
	svc recipe.Service
}

func NewRecipeHandler(svc recipe.Service) *RecipeHandler { return &RecipeHandler{svc: svc} }

func (h *RecipeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.PlantRef
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OutputEnvelope{Output: rec})
}

func (h *RecipeHandler) Save(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", codeUnauthorized)
		return
	}
	var req domain.SaveRecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	saved, err := h.svc.Save(r.Context(), owner, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, OutputEnvelope{Output: saved})
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", codeUnauthorized)
		return
	}
	items, err := h.svc.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OutputEnvelope{Output: nonNil(items)})
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", codeUnauthorized)
		return
	}
	if err := h.svc.SoftDelete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "recipe deleted"})
}

func (h *RecipeHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", codeUnauthorized)
		return
	}
	items, err := h.svc.ListRecentlyDeleted(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OutputEnvelope{Output: nonNil(items)})
}

func (h *RecipeHandler) Recover(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", codeUnauthorized)
		return
	}
	if err := h.svc.Recover(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "recipe recovered"})
}

func nonNil(items []domain.SavedRecipe) []domain.SavedRecipe {
	if items == nil {
		return []domain.SavedRecipe{}
	}
	return items
}
