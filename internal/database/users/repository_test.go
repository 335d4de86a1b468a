package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/storage"
)

func setupTestRepo(t *testing.T) (*Repository, *storage.MemoryStore[[]entities.User]) {
	t.Helper()
	store := storage.NewMemoryStore(storage.EmptySlice[entities.User])
	repo := NewRepository(store, bcrypt.MinCost)
	repo.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return repo, store
}

func createTestUser(t *testing.T, repo *Repository, username string) *entities.User {
	t.Helper()
	user, err := repo.Create(context.Background(), entities.NewUser{
		Username: username,
		Password: "password123",
		Email:    username + "@example.com",
		Tags:     []string{"Student"},
	})
	require.NoError(t, err)
	return user
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	t.Run("first user gets id 1 and empty lists", func(t *testing.T) {
		user := createTestUser(t, repo, "alice")

		assert.Equal(t, 1, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.IsAdmin)
		assert.Equal(t, []string{"Student"}, user.Tags)
		assert.Empty(t, user.Wishlist)
		assert.NotNil(t, user.Wishlist)
		assert.Empty(t, user.MaturitaList)
		assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), user.CreatedAt)
	})

	t.Run("password is hashed", func(t *testing.T) {
		user, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "password123", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		_, err := repo.Create(ctx, entities.NewUser{Username: "alice", Password: "password123"})
		assert.ErrorIs(t, err, ErrUserExists)

		users, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("usernames are case sensitive", func(t *testing.T) {
		user := createTestUser(t, repo, "Alice")
		assert.Equal(t, 2, user.ID)
	})

	t.Run("nil tags are stored as an empty list", func(t *testing.T) {
		user, err := repo.Create(ctx, entities.NewUser{Username: "notags", Password: "password123"})
		require.NoError(t, err)
		assert.NotNil(t, user.Tags)
	})
}

func TestCreate_IDIsOneMoreThanMax(t *testing.T) {
	ctx := context.Background()
	repo, store := setupTestRepo(t)
	require.NoError(t, store.Save(ctx, []entities.User{{ID: 7, Username: "old"}, {ID: 3, Username: "older"}}))

	user := createTestUser(t, repo, "new")
	assert.Equal(t, 8, user.ID)
}

func TestCreate_AcceptsShortPassword(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, entities.NewUser{Username: "bob", Password: "secret1", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)

	_, err = repo.VerifyPassword(ctx, "bob", "secret1")
	assert.NoError(t, err)
}

func TestUpdate_AcceptsShortPassword(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	createTestUser(t, repo, "bob")

	pw := "abc"
	_, err := repo.Update(ctx, "bob", entities.UserUpdate{Password: &pw})
	require.NoError(t, err)

	_, err = repo.VerifyPassword(ctx, "bob", "abc")
	assert.NoError(t, err)
}

func TestCreate_RejectsOverlongPassword(t *testing.T) {
	repo, _ := setupTestRepo(t)

	_, err := repo.Create(context.Background(), entities.NewUser{Username: "bob", Password: strings.Repeat("p", 73)})
	assert.ErrorIs(t, err, auth.ErrPasswordTooLong)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	created := createTestUser(t, repo, "alice")

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	createTestUser(t, repo, "alice")

	email := "new@example.com"
	admin := true
	tags := []string{"Teacher"}
	updated, err := repo.Update(ctx, "alice", entities.UserUpdate{Email: &email, IsAdmin: &admin, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
	assert.True(t, updated.IsAdmin)
	assert.Equal(t, tags, updated.Tags)

	stored, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, email, stored.Email)
	assert.True(t, stored.IsAdmin)

	_, err = repo.Update(ctx, "nobody", entities.UserUpdate{Email: &email})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_PasswordIsRehashed(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	createTestUser(t, repo, "alice")

	password := "another-password"
	_, err := repo.Update(ctx, "alice", entities.UserUpdate{Password: &password})
	require.NoError(t, err)

	_, err = repo.VerifyPassword(ctx, "alice", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := repo.VerifyPassword(ctx, "alice", password)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestUpdate_ListsAreDeduplicated(t *testing.T) {
	repo, _ := setupTestRepo(t)
	createTestUser(t, repo, "alice")

	list := []int{3, 1, 3, 2, 1}
	updated, err := repo.Update(context.Background(), "alice", entities.UserUpdate{Wishlist: &list})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, updated.Wishlist)
}

func TestVerifyPassword(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	createTestUser(t, repo, "alice")

	user, err := repo.VerifyPassword(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = repo.VerifyPassword(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.VerifyPassword(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestWishlist(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	createTestUser(t, repo, "alice")

	added, err := repo.AddToWishlist(ctx, "alice", 5)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddToWishlist(ctx, "alice", 5)
	require.NoError(t, err)
	assert.False(t, added, "adding twice is a no-op")

	added, err = repo.AddToWishlist(ctx, "alice", 2)
	require.NoError(t, err)
	assert.True(t, added)

	user, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2}, user.Wishlist)

	removed, err := repo.RemoveFromWishlist(ctx, "alice", 9)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.RemoveFromWishlist(ctx, "alice", 5)
	require.NoError(t, err)
	assert.True(t, removed)

	user, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, user.Wishlist)
	assert.Empty(t, user.MaturitaList, "wishlist changes must not touch the maturita list")

	added, err = repo.AddToWishlist(ctx, "nobody", 1)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestMaturita(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	createTestUser(t, repo, "alice")

	added, err := repo.AddToMaturita(ctx, "alice", 1)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddToMaturita(ctx, "alice", 1)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := repo.RemoveFromMaturita(ctx, "alice", 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveFromMaturita(ctx, "alice", 1)
	require.NoError(t, err)
	assert.False(t, removed)

	user, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, user.MaturitaList)
	assert.Empty(t, user.Wishlist)
}

func TestRemoveBookReferences(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)
	createTestUser(t, repo, "alice")
	createTestUser(t, repo, "bob")
	createTestUser(t, repo, "carol")

	_, err := repo.AddToWishlist(ctx, "alice", 4)
	require.NoError(t, err)
	_, err = repo.AddToMaturita(ctx, "alice", 4)
	require.NoError(t, err)
	_, err = repo.AddToMaturita(ctx, "bob", 4)
	require.NoError(t, err)
	_, err = repo.AddToMaturita(ctx, "bob", 6)
	require.NoError(t, err)

	affected, err := repo.RemoveBookReferences(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, affected)

	alice, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, alice.Wishlist)
	assert.Empty(t, alice.MaturitaList)

	bob, err := repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []int{6}, bob.MaturitaList)

	affected, err = repo.RemoveBookReferences(ctx, 4)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestCorruptStoreIsReported(t *testing.T) {
	repo, store := setupTestRepo(t)
	store.SetRaw([]byte("not json"))

	_, err := repo.FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, storage.ErrCorrupt)

	_, err = repo.AddToWishlist(context.Background(), "alice", 1)
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}
