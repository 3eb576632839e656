package store

import (
	"context"
	"errors"

	"userhub/internal/user/models"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested record does not exist
// - Return ErrDuplicateEmail when the unique email invariant would be violated
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store persists credential records. Implementations must be safe for
// concurrent use and must enforce email uniqueness at the storage layer, not
// via a check-then-write pattern alone.
type Store interface {
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// ListAll returns all records, newest first.
	ListAll(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id string) error
}
