package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simmer-dev/simmer/internal/apperr"
)

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Comments.Fetch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.commentViews(list))
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.Comments.AddComment(r.Context(), chi.URLParam(r, "id"), body.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	view := CommentView{
		Comment:     comment,
		ContentHTML: h.Renderer.HTML(comment.Content),
		Replies:     []ReplyView{},
	}
	writeJSON(w, http.StatusCreated, view)
}

// CreateReply appends under a comment. A NotFound from the cache means the
// cached comment list went stale; re-fetch once and retry before failing.
func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	threadId := chi.URLParam(r, "id")
	commentId := chi.URLParam(r, "commentId")

	reply, err := h.Comments.AddReply(r.Context(), threadId, commentId, body.Content)
	if apperr.IsNotFound(err) {
		h.Comments.Invalidate(threadId)
		if _, fetchErr := h.Comments.Fetch(r.Context(), threadId); fetchErr != nil {
			writeError(w, fetchErr)
			return
		}
		reply, err = h.Comments.AddReply(r.Context(), threadId, commentId, body.Content)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ReplyView{Reply: reply, ContentHTML: h.Renderer.HTML(reply.Content)})
}
