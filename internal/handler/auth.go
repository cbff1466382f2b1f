package handler

import (
	"encoding/json"
	"net/http"

	"github.com/finsight/portal-server-go/internal/audit"
	apperrors "github.com/finsight/portal-server-go/internal/errors"
	"github.com/finsight/portal-server-go/internal/middleware"
	"github.com/finsight/portal-server-go/internal/service"
)

// AuthHandler exposes the user-tier endpoints: signup, login, profile, and
// the password-reset pair.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Email           string  `json:"email"`
	MobileNumber    string  `json:"mobileNumber"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	user, err := h.authService.Signup(r.Context(), service.SignupParams{
		Email:           req.Email,
		MobileNumber:    req.MobileNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventSignup,
		SubjectID: user.ID,
		Email:     user.EmailOrEmpty(),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully.",
		"user":    formatUser(user),
	})
}

type loginRequest struct {
	Identifier   string `json:"identifier"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

// identifier accepts either the generic key or the field-named ones.
func (req loginRequest) identifier() string {
	if req.Identifier != "" {
		return req.Identifier
	}
	if req.Email != "" {
		return req.Email
	}
	return req.MobileNumber
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	tok, user, err := h.authService.Login(r.Context(), req.identifier(), req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:  audit.EventLoginFailure,
			Email: req.identifier(),
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventLoginSuccess,
		SubjectID: user.ID,
		Email:     user.EmailOrEmpty(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"token": tok,
		"user":  formatUser(user),
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthorized("Authentication token missing."))
		return
	}

	user, err := h.authService.Profile(r.Context(), claims.SubjectID())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": formatUser(user)})
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:  audit.EventResetRequested,
		Email: req.Email,
	})

	// Same body for known and unknown addresses.
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body."))
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	audit.Log(audit.Event{Type: audit.EventPasswordReset})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password has been reset successfully.",
	})
}
