package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/newsdesk/internal/auth"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/service"
)

// AdminHandler serves the admin dashboard endpoints. Routes are behind
// RequireUser; the services re-check the admin role, so a route wiring
// mistake fails closed.
type AdminHandler struct {
	identity *service.IdentityService
	content  *service.ContentService
	logger   *slog.Logger
}

func NewAdminHandler(identity *service.IdentityService, content *service.ContentService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{identity: identity, content: content, logger: logger}
}

// HandleStats handles GET /api/admin/stats.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	stats, err := h.content.Stats(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleListUsers handles GET /api/admin/users.
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	users, err := h.identity.ListUsers(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleUpdateUserRole handles PATCH /api/admin/users/{id}.
func (h *AdminHandler) HandleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r.Context())

	var req struct {
		Role model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.identity.UpdateUserRole(r.Context(), caller, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
