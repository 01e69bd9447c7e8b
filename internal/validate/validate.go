// Package validate holds the pure shape checks that run before any
// store access. Each check returns nil on pass or an *Error carrying
// the client-facing reason. Order is significant: presence is checked
// before format.
package validate

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/kbenson/userapi/internal/models"
)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 6

type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func fail(reason string) *Error { return &Error{Reason: reason} }

var v = validator.New()

func emailOK(email string) bool {
	return v.Var(email, "email") == nil
}

// Registration checks the register payload: email presence then
// format, password presence then length, optional name shape. On pass
// it returns the decoded name, nil when not provided.
func Registration(email, password string, name json.RawMessage) (*string, *Error) {
	if email == "" {
		return nil, fail("Email is required")
	}
	if !emailOK(email) {
		return nil, fail("Invalid email format")
	}
	if password == "" {
		return nil, fail("Password is required")
	}
	if len(password) < MinPasswordLen {
		return nil, fail("Password must be at least 6 characters long")
	}
	return Name(name)
}

// Login checks the login payload.
func Login(email, password string) *Error {
	if email == "" || password == "" {
		return fail("Email and password are required")
	}
	if !emailOK(email) {
		return fail("Invalid email format")
	}
	return nil
}

// PasswordChange checks the change-password payload. Rejecting
// old == new happens here, before the store is ever touched.
func PasswordChange(oldPassword, newPassword string) *Error {
	if oldPassword == "" || newPassword == "" {
		return fail("Both old password and new password are required")
	}
	if len(newPassword) < MinPasswordLen {
		return fail("New password must be at least 6 characters long")
	}
	if oldPassword == newPassword {
		return fail("New password must be different from old password")
	}
	return nil
}

// Name decodes an optional name field. Absent and JSON null both mean
// "not provided"; any non-string value is rejected.
func Name(raw json.RawMessage) (*string, *Error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fail("Name must be a string")
	}
	return &s, nil
}

// UpdatePayload is the generic user-update body. Pointer and
// RawMessage fields distinguish absent from present-but-empty.
type UpdatePayload struct {
	Email    *string         `json:"email"`
	Name     json.RawMessage `json:"name"`
	Role     *string         `json:"role"`
	Password *string         `json:"password"`
}

// UpdateFields is a validated update payload. Nil means the field was
// not provided.
type UpdateFields struct {
	Email *string
	Name  *string
	Role  *models.Role
}

// UserUpdate validates the generic update path. Password changes are
// rejected outright here; they require the dedicated flow.
func UserUpdate(p UpdatePayload) (*UpdateFields, *Error) {
	if p.Email != nil && !emailOK(*p.Email) {
		return nil, fail("Invalid email format")
	}
	name, verr := Name(p.Name)
	if verr != nil {
		return nil, verr
	}
	var role *models.Role
	if p.Role != nil {
		r := models.Role(*p.Role)
		if !r.IsValid() {
			return nil, fail(`Role must be either "user" or "admin"`)
		}
		role = &r
	}
	if p.Password != nil {
		return nil, fail("Use /api/auth/change-password to update password")
	}
	return &UpdateFields{Email: p.Email, Name: name, Role: role}, nil
}
