package repositories

import (
	"context"
	"fmt"

	"grocerytracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMGroceryRepository is a GORM implementation of GroceryRepository.
type GORMGroceryRepository struct {
	db *gorm.DB
}

// NewGORMGroceryRepository creates a new instance of GORMGroceryRepository.
func NewGORMGroceryRepository(db *gorm.DB) *GORMGroceryRepository {
	return &GORMGroceryRepository{
		db: db,
	}
}

// Create creates a new grocery entry in the database.
func (r *GORMGroceryRepository) Create(ctx context.Context, entry *models.GroceryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create grocery entry: %w", err)
	}
	return nil
}

// ListByOwner retrieves every entry belonging to ownerID.
func (r *GORMGroceryRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.GroceryEntry, error) {
	var entries []models.GroceryEntry
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list grocery entries for %s: %w", ownerID, err)
	}
	return entries, nil
}

// ListByOwnerOn retrieves the entries of ownerID for a single calendar date.
func (r *GORMGroceryRepository) ListByOwnerOn(ctx context.Context, ownerID, date string) ([]models.GroceryEntry, error) {
	var entries []models.GroceryEntry
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND date = ?", ownerID, date).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list grocery entries for %s on %s: %w", ownerID, date, err)
	}
	return entries, nil
}

// DeleteOwned deletes an entry by ID, scoped to its owner.
func (r *GORMGroceryRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).Delete(&models.GroceryEntry{}, "id = ? AND owner_id = ?", id, ownerID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete grocery entry %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("grocery entry %s for owner %s: %w", id, ownerID, ErrNotFound)
	}
	return nil
}

// DeleteByOwner removes all entries of ownerID and reports how many were removed.
func (r *GORMGroceryRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.GroceryEntry{}, "owner_id = ?", ownerID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete grocery entries for %s: %w", ownerID, res.Error)
	}
	return res.RowsAffected, nil
}
