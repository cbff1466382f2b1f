package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/finsight/portal-server-go/internal/errors"
	"github.com/finsight/portal-server-go/internal/middleware"
	"github.com/finsight/portal-server-go/internal/model"
	"github.com/finsight/portal-server-go/internal/service"
	"github.com/finsight/portal-server-go/internal/util"
)

var sectionMessages = map[model.Page]string{
	model.PageDashboard:   "Welcome to Dashboard",
	model.PagePerformance: "Welcome to Performance",
	model.PageRevenue:     "Welcome to Revenue",
}

// DashboardHandler serves the token-gated portal pages and the link lookup.
type DashboardHandler struct {
	linkService *service.LinkService
}

func NewDashboardHandler(linkService *service.LinkService) *DashboardHandler {
	return &DashboardHandler{linkService: linkService}
}

func (h *DashboardHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthorized("Authentication token missing."))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"email":         claims.Email,
		"role":          claims.Role,
	})
}

func (h *DashboardHandler) Section(w http.ResponseWriter, r *http.Request) {
	section := model.Page(strings.ToLower(chi.URLParam(r, "section")))
	message, ok := sectionMessages[section]
	if !ok {
		writeError(w, apperrors.New(apperrors.ErrCodeNotFound, "Requested dashboard section was not found."))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": message,
		"section": string(section),
	})
}

// GetLink resolves the external URL configured for (email, page). Users may
// only query their own email; admins may query anyone's.
func (h *DashboardHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthorized("Authentication token missing."))
		return
	}

	page := model.Page(strings.ToLower(r.URL.Query().Get("page")))
	if page == "" {
		writeError(w, apperrors.MissingRequired("page"))
		return
	}
	if !page.IsValid() {
		writeError(w, apperrors.ValidationError("Invalid page specified."))
		return
	}

	email := util.NormalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		email = util.NormalizeEmail(claims.Email)
	}
	if claims.Role != model.RoleAdmin && email != util.NormalizeEmail(claims.Email) {
		writeError(w, apperrors.Forbidden("You may only access your own dashboard links."))
		return
	}

	link, err := h.linkService.GetLink(r.Context(), email, page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"link": formatLink(link)})
}
