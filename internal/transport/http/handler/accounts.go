package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/herbal-remedy-api/internal/application/account"
	"github.com/herbal-remedy-api/internal/domain"
)

// AccountHandler serves registration, verification and login.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler { return &AccountHandler{svc: svc} }

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.Register(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "verification email sent"})
}

func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email verified for " + a.Username})
}

func (h *AccountHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendVerificationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification email sent"})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{AccessToken: token, TokenType: "bearer"})
}

func (h *AccountHandler) MaskedEmail(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	masked, err := h.svc.MaskedEmail(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MaskedEmailEnvelope{Username: username, Email: masked})
}
