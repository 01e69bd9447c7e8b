package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kbenson/userapi/internal/middleware"
	"github.com/kbenson/userapi/internal/models"
	"github.com/kbenson/userapi/internal/store"
	"github.com/kbenson/userapi/internal/utils"
	"github.com/kbenson/userapi/internal/validate"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type UserHandler struct {
	Store store.Store
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// parsePage reads page/limit query parameters, clamping out-of-range
// values instead of rejecting them.
func parsePage(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// List returns a page of users in insertion order.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)

	all, err := h.Store.List(r.Context())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Resolve the page count before any index arithmetic so an
	// absurd page value short-circuits to an empty page instead of
	// overflowing the start index.
	pages := (len(all) + limit - 1) / limit
	start, end := 0, 0
	if page <= pages {
		start = (page - 1) * limit
		end = start + limit
		if end > len(all) {
			end = len(all)
		}
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"users": all[start:end],
		"pagination": pagination{
			Total: len(all),
			Page:  page,
			Limit: limit,
			Pages: pages,
		},
	})
}

// Get returns a single user by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// Update applies a partial update. Callers may update their own
// record; touching anyone else's record, or the role field at all,
// requires the admin role.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload validate.UpdatePayload
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		return
	}

	fields, verr := validate.UserUpdate(payload)
	if verr != nil {
		utils.JSONError(w, http.StatusBadRequest, verr.Reason)
		return
	}

	target, err := h.Store.FindByID(r.Context(), id)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if p.ID != id && p.Role != models.RoleAdmin {
		utils.JSONError(w, http.StatusForbidden, "You can only update your own profile")
		return
	}
	if fields.Role != nil && p.Role != models.RoleAdmin {
		utils.JSONError(w, http.StatusForbidden, "Only admins can change user roles")
		return
	}

	if fields.Email != nil && *fields.Email != target.Email {
		if _, err := h.Store.FindByEmail(r.Context(), *fields.Email); err == nil {
			utils.JSONError(w, http.StatusConflict, "Email already in use")
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	updated, err := h.Store.Update(r.Context(), id, store.UserUpdate{
		Email: fields.Email,
		Name:  fields.Name,
		Role:  fields.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.JSONError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, store.ErrEmailTaken):
			utils.JSONError(w, http.StatusConflict, "Email already in use")
		default:
			utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    updated,
	})
}

// Delete removes a user. Admin only, and admins cannot delete
// themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if p.ID == id {
		utils.JSONError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	removed, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !removed {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}
