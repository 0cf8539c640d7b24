package ports

import (
	"context"
	"time"

	"github.com/qaforge/qaforge/internal/domain"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create saves a new user
	Create(ctx context.Context, user *domain.User) error

	// FindByID retrieves a user by its ID
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByEmail retrieves a user by email
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user
	Update(ctx context.Context, user *domain.User) error

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)

	// Delete removes a user
	Delete(ctx context.Context, id string) error
}

// LoginLimiter tracks failed login attempts per account
type LoginLimiter interface {
	// RecordFailure registers a failed attempt and returns the current count
	RecordFailure(ctx context.Context, email string, window time.Duration) (int, error)

	// Failures returns the number of failures within the active window
	Failures(ctx context.Context, email string) (int, error)

	// Reset clears the failure count after a successful login
	Reset(ctx context.Context, email string) error
}
