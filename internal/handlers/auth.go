package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kbenson/userapi/internal/middleware"
	"github.com/kbenson/userapi/internal/models"
	"github.com/kbenson/userapi/internal/password"
	"github.com/kbenson/userapi/internal/store"
	"github.com/kbenson/userapi/internal/token"
	"github.com/kbenson/userapi/internal/utils"
	"github.com/kbenson/userapi/internal/validate"
)

// DefaultName is used when registration omits the display name.
const DefaultName = "Unknown User"

// dummyHash is a valid bcrypt hash of a throwaway string. Login burns
// a comparison against it when the email is unknown so that both
// failure paths cost a full bcrypt verification.
const dummyHash = "$2a$10$xEfqKTibltznzKfYKyXIDuMMjyNpO1NjsNrFoqSTyMHDhoNCzL1RC"

type AuthHandler struct {
	Store  store.Store
	Tokens *token.Service
}

type registerReq struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Name     json.RawMessage `json:"name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Register creates a new user with the "user" role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	name, verr := validate.Registration(req.Email, req.Password, req.Name)
	if verr != nil {
		utils.JSONError(w, http.StatusBadRequest, verr.Reason)
		return
	}

	if _, err := h.Store.FindByEmail(r.Context(), req.Email); err == nil {
		utils.JSONError(w, http.StatusConflict, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	u := models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Password:  hash,
		Name:      DefaultName,
		Role:      models.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if name != nil {
		u.Name = *name
	}

	if err := h.Store.Insert(r.Context(), &u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			utils.JSONError(w, http.StatusConflict, "User already exists")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    u,
	})
}

// Login verifies credentials and returns a session token. Unknown
// email and wrong password collapse into the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if verr := validate.Login(req.Email, req.Password); verr != nil {
		utils.JSONError(w, http.StatusBadRequest, verr.Reason)
		return
	}

	u, err := h.Store.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			password.Verify(req.Password, dummyHash)
			utils.JSONError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !password.Verify(req.Password, u.Password) {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tok, err := h.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   tok,
		"user":    u,
	})
}

// Profile returns the caller's own record. A 404 here means the user
// was deleted after the token was issued.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := h.Store.FindByID(r.Context(), p.ID)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// ChangePassword is the only path that may modify a password. The
// payload checks run before any store access.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if verr := validate.PasswordChange(req.OldPassword, req.NewPassword); verr != nil {
		utils.JSONError(w, http.StatusBadRequest, verr.Reason)
		return
	}

	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := h.Store.FindByID(r.Context(), p.ID)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	if !password.Verify(req.OldPassword, u.Password) {
		utils.JSONError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := h.Store.Update(r.Context(), u.ID, store.UserUpdate{Password: &hash}); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}
