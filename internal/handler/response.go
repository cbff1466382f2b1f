package handler

import (
	"net/http"
	"time"

	"github.com/finsight/portal-server-go/internal/httputil"
	"github.com/finsight/portal-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func formatUser(user *model.User) map[string]any {
	return map[string]any{
		"id":           user.ID,
		"email":        user.Email,
		"mobileNumber": user.MobileNumber,
		"createdAt":    user.CreatedAt.Format(time.RFC3339),
		"lastLoginAt":  formatTime(user.LastLoginAt),
	}
}

func formatAdmin(admin *model.Admin) map[string]any {
	return map[string]any{
		"id":        admin.ID,
		"adminName": admin.AdminName,
		"email":     admin.Email,
		"createdAt": admin.CreatedAt.Format(time.RFC3339),
	}
}

func formatLink(link *model.DashboardLink) map[string]any {
	return map[string]any{
		"id":        link.ID,
		"email":     link.Email,
		"page":      link.Page,
		"link":      link.Link,
		"updatedAt": link.UpdatedAt.Format(time.RFC3339),
	}
}
