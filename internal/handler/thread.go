package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simmer-dev/simmer/internal/apiclient"
	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/domain"
	"github.com/simmer-dev/simmer/internal/projection"
)

// ListThreads refreshes the authoritative collection, then projects it
// with the same filters and sort. A superseded response is not an error
// for the caller: the visible state simply reflects the newest request.
func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	filters, sort := filtersFromQuery(r)
	viewerId := h.viewerId()

	_, err := h.Store.List(r.Context(), filters, sort)
	if err != nil && !errors.Is(err, apperr.ErrSuperseded) {
		writeError(w, err)
		return
	}

	projected := projection.Project(h.Store.Snapshot(), filters, sort, viewerId)
	writeJSON(w, http.StatusOK, h.threadViews(projected))
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if thread, ok := h.Store.Get(id); ok {
		writeJSON(w, http.StatusOK, h.threadView(thread))
		return
	}

	// Deep link before any list call: fall back to a single fetch and
	// adopt the thread so follow-up votes and toggles can find it.
	thread, err := h.API.GetThread(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Store.Adopt(thread)
	writeJSON(w, http.StatusOK, h.threadView(thread))
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var body apiclient.CreateThreadRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	thread, err := h.Store.Create(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.threadView(thread))
}

func (h *Handler) UpdateThread(w http.ResponseWriter, r *http.Request) {
	var body apiclient.CreateThreadRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	thread, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.threadView(thread))
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vote applies the reconciliation protocol. When the active sort is
// score-sensitive the response carries the re-projected list, computed
// from the in-memory snapshot with the new counts and no network call.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Direction domain.VoteState `json:"direction"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	thread, err := h.Store.Vote(r.Context(), chi.URLParam(r, "id"), body.Direction)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		Thread  ThreadView   `json:"thread"`
		Threads []ThreadView `json:"threads,omitempty"`
	}{Thread: h.threadView(thread)}

	filters, sort := filtersFromQuery(r)
	if sort.ScoreSensitive() {
		projected := projection.Project(h.Store.Snapshot(), filters, sort, h.viewerId())
		response.Threads = h.threadViews(projected)
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorite, err := h.Store.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": favorite})
}

// RecordView never fails from the caller's perspective.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	views := h.Store.RecordView(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]int{"views": views})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.API.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) viewerId() domain.UserId {
	if state := h.Auth.AuthState(); state.User != nil {
		return state.User.Id
	}
	return ""
}
