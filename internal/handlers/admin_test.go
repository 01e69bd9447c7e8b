package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbenson/userapi/internal/models"
)

func TestStats(t *testing.T) {
	t.Parallel()

	r, st, tokens := newTestAPI(t)
	admin := seedUser(t, st, "admin@x.com", "secret1", models.RoleAdmin)
	seedUser(t, st, "u1@x.com", "secret1", models.RoleUser)
	seedUser(t, st, "u2@x.com", "secret1", models.RoleUser)
	tok := issueFor(t, tokens, admin)

	rec := doJSON(t, r, http.MethodGet, "/api/admin/stats", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 3, body["totalUsers"])
	assert.EqualValues(t, 1, body["adminUsers"])
	assert.EqualValues(t, 2, body["regularUsers"])
	assert.NotEmpty(t, body["timestamp"])

	recent := body["recentUsers"].([]interface{})
	assert.Len(t, recent, 3)
	for _, ru := range recent {
		assert.NotContains(t, ru.(map[string]interface{}), "password")
	}
}

func TestStats_RecentUsersCapAndOrder(t *testing.T) {
	t.Parallel()

	r, st, tokens := newTestAPI(t)
	admin := seedUser(t, st, "admin@x.com", "secret1", models.RoleAdmin)
	tok := issueFor(t, tokens, admin)

	// Seven users with strictly increasing creation times, all newer
	// than the admin; the stats endpoint keeps only the five newest,
	// newest first.
	base := time.Now().UTC().Add(time.Hour)
	for i := 0; i < 7; i++ {
		u := &models.User{
			ID:        string(rune('a'+i)) + "-id",
			Email:     string(rune('a'+i)) + "@x.com",
			Password:  "hash",
			Name:      "U",
			Role:      models.RoleUser,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, st.Insert(context.Background(), u))
	}

	rec := doJSON(t, r, http.MethodGet, "/api/admin/stats", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	recent := decodeBody(t, rec)["recentUsers"].([]interface{})
	require.Len(t, recent, 5)
	assert.Equal(t, "g-id", recent[0].(map[string]interface{})["id"])
	assert.Equal(t, "f-id", recent[1].(map[string]interface{})["id"])
}

func TestStats_NonAdminForbidden(t *testing.T) {
	t.Parallel()

	r, st, tokens := newTestAPI(t)
	u := seedUser(t, st, "a@x.com", "secret1", models.RoleUser)
	tok := issueFor(t, tokens, u)

	rec := doJSON(t, r, http.MethodGet, "/api/admin/stats", tok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Admin privileges required.", decodeBody(t, rec)["error"])
}

func TestStats_Unauthenticated(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestAPI(t)

	rec := doJSON(t, r, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
