package repositories

import (
	"context"

	"grocerytracker/internal/models"
)

// GroceryRepository defines the interface for grocery entry data access.
type GroceryRepository interface {
	Create(ctx context.Context, entry *models.GroceryEntry) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.GroceryEntry, error)
	ListByOwnerOn(ctx context.Context, ownerID, date string) ([]models.GroceryEntry, error)
	// DeleteOwned deletes the entry only when it belongs to ownerID.
	DeleteOwned(ctx context.Context, id, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
