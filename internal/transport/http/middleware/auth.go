package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/eleven-am/eventhub/internal/auth"
	"github.com/eleven-am/eventhub/internal/transport/http/response"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// WithPrincipal stores verified claims on the context
func WithPrincipal(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, ctxPrincipal, claims)
}

// Principal returns the claims of the authenticated caller
func Principal(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(ctxPrincipal).(auth.Claims)
	return c, ok && c.UserID != uuid.Nil
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuth(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Require rejects requests without a valid bearer token
func (a *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r)
		if !ok {
			response.Fail(w, r, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}

		claims, err := a.verifier.Verify(raw)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "token expired"
			}
			response.Fail(w, r, http.StatusUnauthorized, "unauthorized", reason, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims)))
	})
}

// RequireAdmin rejects authenticated callers without the admin role. It must run after Require.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := Principal(r.Context())
		if !ok {
			response.Fail(w, r, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}
		if !claims.IsAdmin() {
			response.Fail(w, r, http.StatusForbidden, "forbidden", "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
