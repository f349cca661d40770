package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"grocerytracker/internal/models"

	"github.com/google/uuid"
)

// MockGroceryRepository is an in-memory implementation of GroceryRepository.
type MockGroceryRepository struct {
	entries map[string]models.GroceryEntry
	mu      sync.RWMutex
}

// NewMockGroceryRepository creates a new instance of MockGroceryRepository.
func NewMockGroceryRepository() *MockGroceryRepository {
	return &MockGroceryRepository{
		entries: make(map[string]models.GroceryEntry),
	}
}

// Create adds a new entry.
func (r *MockGroceryRepository) Create(_ context.Context, entry *models.GroceryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	r.entries[entry.ID] = *entry
	return nil
}

// ListByOwner returns all entries of ownerID.
func (r *MockGroceryRepository) ListByOwner(_ context.Context, ownerID string) ([]models.GroceryEntry, error) {
	return r.filter(func(e models.GroceryEntry) bool { return e.OwnerID == ownerID }), nil
}

// ListByOwnerOn returns the entries of ownerID dated date.
func (r *MockGroceryRepository) ListByOwnerOn(_ context.Context, ownerID, date string) ([]models.GroceryEntry, error) {
	return r.filter(func(e models.GroceryEntry) bool { return e.OwnerID == ownerID && e.Date == date }), nil
}

// DeleteOwned removes an entry if it belongs to ownerID.
func (r *MockGroceryRepository) DeleteOwned(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return fmt.Errorf("grocery entry %s for owner %s: %w", id, ownerID, ErrNotFound)
	}
	delete(r.entries, id)
	return nil
}

// DeleteByOwner removes every entry of ownerID.
func (r *MockGroceryRepository) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, e := range r.entries {
		if e.OwnerID == ownerID {
			delete(r.entries, id)
			n++
		}
	}
	return n, nil
}

func (r *MockGroceryRepository) filter(keep func(models.GroceryEntry) bool) []models.GroceryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.GroceryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			list = append(list, e)
		}
	}
	return list
}
