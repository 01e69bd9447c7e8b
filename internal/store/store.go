// Package store holds the credential records behind the API. Handlers
// depend only on the Store interface so the backend can be swapped
// without touching them.
package store

import (
	"context"
	"errors"

	"github.com/kbenson/userapi/internal/models"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// UserUpdate carries the fields of a partial update. A nil field means
// "leave unchanged". Password is only ever set by the dedicated
// change-password flow.
type UserUpdate struct {
	Email    *string
	Name     *string
	Role     *models.Role
	Password *string
}

// Store is the credential store contract. List returns users in
// insertion order. Implementations must serialize mutations.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id string, upd UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}
