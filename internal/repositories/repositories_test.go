package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"grocerytracker/internal/database"
	"grocerytracker/internal/models"
	"grocerytracker/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoSet struct {
	users     repositories.UserRepository
	groceries repositories.GroceryRepository
}

// backends returns the GORM (in-memory sqlite) and map backed repositories so
// every behaviour is checked against both.
func backends(t *testing.T) map[string]repoSet {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(database.DriverSQLite, dsn)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = database.Close(db) })

	return map[string]repoSet{
		"gorm": {
			users:     repositories.NewGORMUserRepository(db),
			groceries: repositories.NewGORMGroceryRepository(db),
		},
		"memory": {
			users:     repositories.NewMockUserRepository(),
			groceries: repositories.NewMockGroceryRepository(),
		},
	}
}

func TestUserRepository(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := repos.users

			user := &models.User{Email: "a@example.com", PasswordHash: "hash", DisplayName: "A"}
			require.NoError(t, repo.Create(ctx, user))
			assert.NotEmpty(t, user.ID)

			byEmail, err := repo.GetByEmail(ctx, "a@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)
			assert.Equal(t, "hash", byEmail.PasswordHash)

			byID, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "A", byID.DisplayName)

			dup := &models.User{Email: "a@example.com", PasswordHash: "other"}
			assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrDuplicate)

			_, err = repo.GetByEmail(ctx, "missing@example.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			deleted, err := repo.Delete(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "a@example.com", deleted.Email)

			_, err = repo.GetByID(ctx, user.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = repo.Delete(ctx, user.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			// The email is free again once the account is gone.
			require.NoError(t, repo.Create(ctx, &models.User{Email: "a@example.com", PasswordHash: "hash"}))
		})
	}
}

func TestUserRepository_DuplicateID(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := repos.users

			first := &models.User{ID: "user-1", Email: "first@example.com", PasswordHash: "hash"}
			require.NoError(t, repo.Create(ctx, first))

			clash := &models.User{ID: "user-1", Email: "second@example.com", PasswordHash: "other"}
			assert.ErrorIs(t, repo.Create(ctx, clash), repositories.ErrDuplicate)

			stored, err := repo.GetByID(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, "first@example.com", stored.Email)

			_, err = repo.GetByEmail(ctx, "second@example.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestGroceryRepository(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := repos.groceries

			seed := []models.GroceryEntry{
				{OwnerID: "o1", Item: "Milk", Amount: -3.5, Date: "2024-05-01"},
				{OwnerID: "o1", Item: "Salary", Amount: 100, Date: "2024-05-02"},
				{OwnerID: "o2", Item: "Bread", Amount: -2, Date: "2024-05-01"},
			}
			for i := range seed {
				require.NoError(t, repo.Create(ctx, &seed[i]))
				assert.NotEmpty(t, seed[i].ID)
			}

			list, err := repo.ListByOwner(ctx, "o1")
			require.NoError(t, err)
			assert.Len(t, list, 2)

			onDay, err := repo.ListByOwnerOn(ctx, "o1", "2024-05-01")
			require.NoError(t, err)
			require.Len(t, onDay, 1)
			assert.Equal(t, "Milk", onDay[0].Item)

			err = repo.DeleteOwned(ctx, seed[2].ID, "o1")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			other, _ := repo.ListByOwner(ctx, "o2")
			assert.Len(t, other, 1)

			require.NoError(t, repo.DeleteOwned(ctx, seed[0].ID, "o1"))
			assert.ErrorIs(t, repo.DeleteOwned(ctx, seed[0].ID, "o1"), repositories.ErrNotFound)

			n, err := repo.DeleteByOwner(ctx, "o1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			list, err = repo.ListByOwner(ctx, "o1")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}
