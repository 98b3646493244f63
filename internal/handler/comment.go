package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/newsdesk/internal/auth"
	"github.com/sakif/newsdesk/internal/service"
)

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

func NewCommentHandler(content *service.ContentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{content: content, logger: logger}
}

// HandleList handles GET /api/articles/{id}/comments.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	comments, err := h.content.ListComments(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate handles POST /api/articles/{id}/comments.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.content.CreateComment(r.Context(), caller, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleDelete handles DELETE /api/comments/{id}.
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	if err := h.content.DeleteComment(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
