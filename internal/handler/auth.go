package handler

import (
	"net/http"

	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/logger"
)

func (h *Handler) AuthState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Auth.AuthState())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.API.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Tokens.Save(token); err != nil {
		logger.Log.Error("failed to persist token", "error", err)
		writeError(w, apperr.New(apperr.Transient, "could not store credentials"))
		return
	}

	writeJSON(w, http.StatusOK, h.Auth.AuthState())
}

// Logout clears the stored credential and drops all viewer-scoped state so
// nothing stale survives into the next session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Tokens.Clear(); err != nil {
		logger.Log.Error("failed to clear token", "error", err)
	}
	h.Store.Reset()
	h.Comments.Reset()
	writeJSON(w, http.StatusOK, h.Auth.AuthState())
}
