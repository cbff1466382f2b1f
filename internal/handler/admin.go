package handler

import (
	"encoding/json"
	"net/http"

	"github.com/finsight/portal-server-go/internal/audit"
	apperrors "github.com/finsight/portal-server-go/internal/errors"
	"github.com/finsight/portal-server-go/internal/middleware"
	"github.com/finsight/portal-server-go/internal/service"
)

// AdminHandler exposes the admin tier. Signup and login are public (signup is
// gated by the creation secret inside the service); everything else requires
// an admin token.
type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type adminSignupRequest struct {
	AdminName       string `json:"adminName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	CreationToken   string `json:"creationToken"`
}

func (h *AdminHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req adminSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	tok, admin, err := h.adminService.SignupAdmin(r.Context(), service.AdminSignupParams{
		AdminName:       req.AdminName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		CreationToken:   req.CreationToken,
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeForbidden {
			audit.LogFromRequest(r, audit.Event{
				Type:  audit.EventAdminSignupDenied,
				Email: req.Email,
			})
		}
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventAdminSignup,
		SubjectID: admin.ID,
		Email:     admin.Email,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Admin registered successfully.",
		"token":   tok,
		"admin":   formatAdmin(admin),
	})
}

type adminLoginRequest struct {
	AdminName string `json:"adminName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	tok, admin, err := h.adminService.LoginAdmin(r.Context(), req.AdminName, req.Email, req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:  audit.EventAdminLoginFailure,
			Email: req.Email,
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventAdminLoginSuccess,
		SubjectID: admin.ID,
		Email:     admin.Email,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"token": tok,
		"admin": formatAdmin(admin),
	})
}

func (h *AdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	results, err := h.adminService.SearchUsers(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": results})
}

type createUserRequest struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	user, err := h.adminService.CreateUser(r.Context(), req.Email, req.MobileNumber, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	event := audit.Event{
		Type:  audit.EventUserCreated,
		Email: user.EmailOrEmpty(),
	}
	if claims != nil {
		event.SubjectID = claims.SubjectID()
	}
	audit.LogFromRequest(r, event)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully.",
		"user":    formatUser(user),
	})
}

type upsertLinkRequest struct {
	Email string `json:"email"`
	Page  string `json:"page"`
	Link  string `json:"link"`
}

func (h *AdminHandler) UpsertLink(w http.ResponseWriter, r *http.Request) {
	var req upsertLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	link, err := h.adminService.UpsertLink(r.Context(), req.Email, req.Page, req.Link)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:  audit.EventLinkUpserted,
		Email: link.Email,
		Details: map[string]any{
			"page": link.Page,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Dashboard link saved.",
		"link":    formatLink(link),
	})
}
