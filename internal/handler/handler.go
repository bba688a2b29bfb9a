// Package handler exposes the client's intents over a local HTTP gateway.
// It dispatches into the store, comment cache and projection engine, and
// renders user-authored bodies for display.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/simmer-dev/simmer/internal/apiclient"
	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/comments"
	"github.com/simmer-dev/simmer/internal/credentials"
	"github.com/simmer-dev/simmer/internal/domain"
	"github.com/simmer-dev/simmer/internal/logger"
	"github.com/simmer-dev/simmer/internal/render"
	"github.com/simmer-dev/simmer/internal/store"
)

type Handler struct {
	API      *apiclient.Client
	Store    *store.Store
	Comments *comments.Cache
	Auth     *credentials.Reader
	Tokens   *credentials.TokenStore
	Renderer *render.TextRenderer
}

func New(api *apiclient.Client, st *store.Store, cache *comments.Cache, auth *credentials.Reader, tokens *credentials.TokenStore, renderer *render.TextRenderer) *Handler {
	return &Handler{
		API:      api,
		Store:    st,
		Comments: cache,
		Auth:     auth,
		Tokens:   tokens,
		Renderer: renderer,
	}
}

// ThreadView is a thread plus its derived score and rendered title link.
type ThreadView struct {
	domain.Thread
	Score int `json:"score"`
}

type CommentView struct {
	domain.Comment
	ContentHTML string      `json:"content_html"`
	Replies     []ReplyView `json:"replies"`
}

type ReplyView struct {
	domain.Reply
	ContentHTML string `json:"content_html"`
}

func (h *Handler) threadView(t domain.Thread) ThreadView {
	return ThreadView{Thread: t, Score: t.Score()}
}

func (h *Handler) threadViews(threads []domain.Thread) []ThreadView {
	out := make([]ThreadView, len(threads))
	for i, t := range threads {
		out[i] = h.threadView(t)
	}
	return out
}

func (h *Handler) commentViews(list []domain.Comment) []CommentView {
	out := make([]CommentView, len(list))
	for i, c := range list {
		replies := make([]ReplyView, len(c.Replies))
		for j, r := range c.Replies {
			replies[j] = ReplyView{Reply: r, ContentHTML: h.Renderer.HTML(r.Content)}
		}
		out[i] = CommentView{Comment: c, ContentHTML: h.Renderer.HTML(c.Content), Replies: replies}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy onto gateway status codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	status := http.StatusBadGateway
	switch appErr.Kind {
	case apperr.Authentication:
		status = http.StatusUnauthorized
	case apperr.Authorization:
		status = http.StatusForbidden
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Conflict:
		status = http.StatusConflict
	}
	http.Error(w, appErr.Message, status)
}

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return apperr.New(apperr.Validation, "body is invalid json")
	}
	return nil
}

// filtersFromQuery builds the closed filter field set from query params.
// Unknown parameters are ignored rather than rejected.
func filtersFromQuery(r *http.Request) (domain.FilterSet, domain.SortKey) {
	q := r.URL.Query()
	filters := domain.FilterSet{
		Search:        q.Get("search"),
		Author:        q.Get("author"),
		Category:      q.Get("category"),
		FavoritesOnly: q.Get("favorites") == "true",
		MineOnly:      q.Get("mine") == "true",
	}

	sort := domain.SortKey(q.Get("sort"))
	if !sort.Valid() {
		sort = domain.SortNewest
	}
	return filters, sort
}
