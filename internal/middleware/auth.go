package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kbenson/userapi/internal/models"
	"github.com/kbenson/userapi/internal/store"
	"github.com/kbenson/userapi/internal/token"
	"github.com/kbenson/userapi/internal/utils"
)

// Principal is the authenticated identity attached to a request after
// token verification. It never carries the password hash.
type Principal struct {
	ID    string
	Email string
	Role  models.Role
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns ctx with p attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the principal set by RequireAuth or
// OptionalAuth.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// bearerToken pulls the token segment out of "Authorization: Bearer
// <token>". The two failure modes get distinct messages.
func bearerToken(r *http.Request) (string, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "Access token required"
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", "Invalid token format"
	}
	return strings.TrimSpace(parts[1]), ""
}

// resolve verifies the token and checks its subject still exists.
// A deleted user invalidates every token issued for them.
func resolve(r *http.Request, st store.Store, tokens *token.Service) (*Principal, int, string) {
	tok, msg := bearerToken(r)
	if msg != "" {
		return nil, http.StatusUnauthorized, msg
	}

	claims, err := tokens.Verify(tok)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, http.StatusUnauthorized, "Token expired"
		}
		return nil, http.StatusForbidden, "Invalid token"
	}

	if _, err := st.FindByID(r.Context(), claims.Subject); err != nil {
		return nil, http.StatusForbidden, "User not found"
	}

	return &Principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, 0, ""
}

// RequireAuth rejects requests without a valid token for a still
// existing user, otherwise attaches the principal and proceeds.
func RequireAuth(st store.Store, tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, status, msg := resolve(r, st, tokens)
			if p == nil {
				utils.JSONError(w, status, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth runs the same verification chain but proceeds
// anonymously on any failure. Useful for endpoints that behave
// differently for authenticated callers.
func OptionalAuth(st store.Store, tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, _, _ := resolve(r, st, tokens); p != nil {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route to admin callers. Must run after
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			utils.JSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if p.Role != models.RoleAdmin {
			utils.JSONError(w, http.StatusForbidden, "Access denied. Admin privileges required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
