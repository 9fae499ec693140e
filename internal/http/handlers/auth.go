package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-contacts-service/internal/errors"
	"github.com/pribylovaa/go-contacts-service/internal/models"
)

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	tok, err := h.auth.RegisterUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenToResponse(tok))
}

func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	tok, err := h.auth.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenToResponse(tok))
}
