package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kbenson/userapi/internal/middleware"
	"github.com/kbenson/userapi/internal/models"
	"github.com/kbenson/userapi/internal/password"
	"github.com/kbenson/userapi/internal/store"
	"github.com/kbenson/userapi/internal/token"
)

// newTestAPI wires the real route tree (minus rate limiting and CORS)
// over an in-memory store.
func newTestAPI(t *testing.T) (*chi.Mux, *store.Memory, *token.Service) {
	t.Helper()

	st := store.NewMemory()
	tokens := token.NewService("test-secret", time.Hour)
	h := NewHandler(st, tokens)
	requireAuth := middleware.RequireAuth(st, tokens)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", h.Auth.Profile)
				r.Post("/change-password", h.Auth.ChangePassword)
			})
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Users.List)
			r.Get("/{id}", h.Users.Get)
			r.Put("/{id}", h.Users.Update)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Delete("/{id}", h.Users.Delete)
			})
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireAdmin)
			r.Get("/stats", h.Admin.Stats)
		})
	})

	return r, st, tokens
}

// seedUser inserts a user directly into the store with a real bcrypt
// hash so login works against it.
func seedUser(t *testing.T, st store.Store, email, plain string, role models.Role) *models.User {
	t.Helper()

	hash, err := password.Hash(plain)
	require.NoError(t, err)

	u := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hash,
		Name:      "Test User",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.Insert(context.Background(), u))
	return u
}

func issueFor(t *testing.T, tokens *token.Service, u *models.User) string {
	t.Helper()

	tok, err := tokens.Issue(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return tok
}

// doJSON performs a request against the router. A non-empty token is
// sent as a Bearer header; a nil body sends no payload.
func doJSON(t *testing.T, r http.Handler, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
