package repositories

import (
	"context"

	"grocerytracker/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Delete removes the user and returns the record as it was before deletion.
	Delete(ctx context.Context, id string) (*models.User, error)
}
