// Package middleware provides HTTP middleware for the nsmd API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/api/auth"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/api/handlers"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// TokenValidator validates bearer tokens. *auth.JWTService satisfies it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// GetClaimsFromContext returns the claims JWTAuth stored, or nil.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on WebSocket upgrades, so access_token in the query is accepted when the
// header is absent.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		tok := r.URL.Query().Get("access_token")
		return tok, tok != ""
	}
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", false
	}
	return tok, true
}

// JWTAuth validates Bearer tokens. Valid claims are stored in the request
// context; a missing or invalid token yields 401 Unauthorized. A nil
// validator disables the check.
func JWTAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearerToken(r)
			if !ok {
				handlers.WriteProblem(w, http.StatusUnauthorized, "bearer token required")
				return
			}
			claims, err := validator.ValidateToken(tok)
			if err != nil {
				handlers.WriteProblem(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
		})
	}
}
