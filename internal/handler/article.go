package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/newsdesk/internal/auth"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/service"
)

// ArticleHandler serves the article CRUD endpoints. Read routes sit behind
// OptionalUser so anonymous requests work; the caller (possibly nil) is
// passed through to the service, which owns all visibility rules.
type ArticleHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

func NewArticleHandler(content *service.ContentService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{content: content, logger: logger}
}

// HandleList handles GET /api/articles.
//
// Query parameters: page, pageSize, status, category, search, authorId, and
// tags (comma-separated). All are optional.
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())
	q := r.URL.Query()

	filters := service.Filters{
		Status:   model.Status(q.Get("status")),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		AuthorID: q.Get("authorId"),
	}
	if tags := q.Get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}

	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("pageSize"), service.DefaultPageSize)

	result, err := h.content.List(r.Context(), caller, page, pageSize, filters)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGet handles GET /api/articles/{id}.
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	article, err := h.content.GetByID(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// HandleCreate handles POST /api/articles.
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req service.CreateArticleInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	article, err := h.content.Create(r.Context(), caller, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

// HandleUpdate handles PATCH /api/articles/{id}. Absent fields are left
// unchanged.
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req service.UpdateArticleInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	article, err := h.content.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// HandleDelete handles DELETE /api/articles/{id}.
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	if err := h.content.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCategories handles GET /api/categories.
func (h *ArticleHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": model.Categories})
}

// intParam parses a positive integer query parameter, falling back to def on
// absence or garbage. Range clamping is the service's job.
func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
