package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/V4T54L/lead-intake/internal/adapter/api/response"
	"github.com/V4T54L/lead-intake/internal/pkg/auth"
)

// AuthCookieName is the cookie the dashboard stores its token in.
const AuthCookieName = "authToken"

// Auth is a middleware factory that returns a new authentication middleware.
// It accepts an HS256 token from the Authorization bearer header, falling
// back to the authToken cookie.
func Auth(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				logger.Warn("auth token missing from request", "remote_addr", r.RemoteAddr)
				response.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logger.Warn("invalid auth token provided", "remote_addr", r.RemoteAddr, "error", err)
				message := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					message = "Token expired"
				}
				response.Error(w, http.StatusUnauthorized, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(AuthCookieName); err == nil {
		return c.Value
	}
	return ""
}
