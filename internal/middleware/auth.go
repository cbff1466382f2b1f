package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/finsight/portal-server-go/internal/model"
	"github.com/finsight/portal-server-go/internal/token"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// GetClaims returns the verified token claims attached by Authenticator, or
// nil when the request was not authenticated.
func GetClaims(ctx context.Context) *token.Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*token.Claims); ok {
		return claims
	}
	return nil
}

// Authenticator verifies bearer tokens and attaches the resulting identity.
// Per request: no header, malformed scheme, and failed verification all end
// in the same 401; only a verified token reaches downstream handlers.
type Authenticator struct {
	tokens *token.Service
}

func NewAuthenticator(tokens *token.Service) *Authenticator {
	return &Authenticator{tokens: tokens}
}

func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "Authentication token missing.",
			})
			return
		}

		claims, err := a.tokens.Verify(raw)
		if err != nil {
			log.Warn().Str("path", r.URL.Path).Msg("rejected invalid bearer token")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "Invalid or expired token.",
			})
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route group on an exact role claim match. It must run
// after Handler; a missing identity or any other role is a 403.
func (a *Authenticator) RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil || claims.Role != role {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"message": "Insufficient permissions.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
