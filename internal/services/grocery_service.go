package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"grocerytracker/internal/models"
	"grocerytracker/internal/repositories"
)

// NewEntryInput is the add-grocery request.
type NewEntryInput struct {
	Item   string   `json:"item" validate:"required"`
	Amount *float64 `json:"amount" validate:"required"`
	Date   string   `json:"date" validate:"required,datetime=2006-01-02"`
}

// MaxEntryAmount bounds the magnitude of an entry so its cent value and
// any realistic summary fit in an int64.
const MaxEntryAmount = 1e12

// GroceryService handles owner scoped grocery entries.
type GroceryService struct {
	repo         repositories.GroceryRepository
	events       EventPublisher
	storeTimeout time.Duration
}

// NewGroceryService creates a new GroceryService. events may be nil.
func NewGroceryService(repo repositories.GroceryRepository, events EventPublisher, storeTimeout time.Duration) *GroceryService {
	return &GroceryService{
		repo:         repo,
		events:       events,
		storeTimeout: storeTimeout,
	}
}

// AddEntry validates and stores a new entry for ownerID.
// Amounts are kept to cents.
func (s *GroceryService) AddEntry(ctx context.Context, ownerID string, in NewEntryInput) (*models.GroceryEntry, error) {
	in.Item = strings.TrimSpace(in.Item)
	in.Date = strings.TrimSpace(in.Date)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if math.IsNaN(*in.Amount) || math.IsInf(*in.Amount, 0) {
		return nil, validationError("Validation failed", map[string]string{"amount": "amount must be a finite number"})
	}
	if math.Abs(*in.Amount) > MaxEntryAmount {
		return nil, validationError("Validation failed", map[string]string{"amount": fmt.Sprintf("amount must be between %.0f and %.0f", -MaxEntryAmount, MaxEntryAmount)})
	}

	entry := &models.GroceryEntry{
		OwnerID: ownerID,
		Item:    in.Item,
		Amount:  roundCents(*in.Amount),
		Date:    in.Date,
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, internalError("failed to add grocery entry", err)
	}

	publishEvent(ctx, s.events, EventEntryCreated, EntryEvent{
		EntryID:    entry.ID,
		OwnerID:    entry.OwnerID,
		Amount:     entry.Amount,
		Date:       entry.Date,
		OccurredAt: time.Now(),
	})
	return entry, nil
}

// ListEntries returns all entries of ownerID in no particular order.
func (s *GroceryService) ListEntries(ctx context.Context, ownerID string) ([]models.GroceryEntry, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	entries, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, internalError("failed to list grocery entries", err)
	}
	return entries, nil
}

// ListEntriesOn returns the entries of ownerID for one calendar date.
func (s *GroceryService) ListEntriesOn(ctx context.Context, ownerID, date string) ([]models.GroceryEntry, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, validationError("Validation failed", map[string]string{
			"date": fmt.Sprintf("date must be a date formatted as %s", models.DateLayout),
		})
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	entries, err := s.repo.ListByOwnerOn(ctx, ownerID, date)
	if err != nil {
		return nil, internalError("failed to list grocery entries", err)
	}
	return entries, nil
}

// DeleteEntry removes entryID when it belongs to ownerID. An entry owned by
// someone else is reported as not found and left untouched.
func (s *GroceryService) DeleteEntry(ctx context.Context, entryID, ownerID string) error {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.repo.DeleteOwned(ctx, entryID, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundError("Grocery entry not found", err)
		}
		return internalError("failed to delete grocery entry", err)
	}

	publishEvent(ctx, s.events, EventEntryDeleted, EntryEvent{
		EntryID:    entryID,
		OwnerID:    ownerID,
		OccurredAt: time.Now(),
	})
	return nil
}

// Summary computes the income/expense/balance tiles for ownerID. A non-empty
// date restricts the summary to that day.
func (s *GroceryService) Summary(ctx context.Context, ownerID, date string) (models.Summary, error) {
	var (
		entries []models.GroceryEntry
		err     error
	)
	if date == "" {
		entries, err = s.ListEntries(ctx, ownerID)
	} else {
		entries, err = s.ListEntriesOn(ctx, ownerID, date)
	}
	if err != nil {
		return models.Summary{}, err
	}
	return Summarize(entries), nil
}

// PurgeOwner deletes every entry of ownerID.
func (s *GroceryService) PurgeOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	n, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, internalError("failed to purge grocery entries", err)
	}
	return n, nil
}

// HandleUserDeleted consumes a user.deleted event body and purges the
// entries of that user.
func (s *GroceryService) HandleUserDeleted(ctx context.Context, body []byte) error {
	var evt UserEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", EventUserDeleted, err)
	}
	if evt.UserID == "" {
		return fmt.Errorf("%s event without user id", EventUserDeleted)
	}

	n, err := s.PurgeOwner(ctx, evt.UserID)
	if err != nil {
		return err
	}
	log.Printf("Purged %d grocery entries of deleted user %s", n, evt.UserID)
	return nil
}
