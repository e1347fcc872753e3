package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the local read model of the user directory. The booking core never
// mutates users; rows are kept in sync by the catalog event consumer.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRepository defines the lookups the booking core needs from the user
// directory, plus the sync operations used by the catalog consumer.
type UserRepository interface {
	// FindByID retrieves a user by id.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Exists reports whether a user with the given id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Upsert inserts or updates the local copy of a user.
	Upsert(ctx context.Context, u *User) error

	// Delete removes the local copy of a user.
	Delete(ctx context.Context, id uuid.UUID) error
}
