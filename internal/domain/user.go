package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID         uuid.UUID `json:"id"`
	Auth0ID    string    `json:"auth0Id"`
	Email      string    `json:"email"`
	Name       *string   `json:"name"`
	PictureURL *string   `json:"pictureUrl"`
	OSName     *string   `json:"osName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasOSName reports whether the user already registered an OS name
func (u *User) HasOSName() bool {
	return u.OSName != nil && *u.OSName != ""
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	ExistsByOSName(ctx context.Context, osName string) (bool, error)
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*User, error)
	// RegisterOSName sets the user's OS name and creates their desktop in one
	// transaction. Returns ErrOSNameAlreadySet or ErrOSNameTaken on conflict.
	RegisterOSName(ctx context.Context, userID uuid.UUID, osName string, initialState []byte) (*Desktop, error)
}
