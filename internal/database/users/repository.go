// Package users provides persistence for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(store, cfg.Auth.BcryptCost)
//	user, err := repo.Create(ctx, entities.NewUser{Username: "alice", ...})
//	added, err := repo.AddToWishlist(ctx, "alice", 3)
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/storage"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Repository handles all user persistence.
type Repository struct {
	store      storage.Store[[]entities.User]
	bcryptCost int
	now        func() time.Time
}

// NewRepository creates a users repository backed by store.
func NewRepository(store storage.Store[[]entities.User], bcryptCost int) *Repository {
	return &Repository{store: store, bcryptCost: bcryptCost, now: time.Now}
}

// List returns every user in stored order.
func (r *Repository) List(ctx context.Context) ([]entities.User, error) {
	return r.store.Load(ctx)
}

// FindByUsername returns the first user with an exactly matching username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	users, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(users, username); i >= 0 {
		return &users[i], nil
	}
	return nil, ErrNotFound
}

func (r *Repository) FindByID(ctx context.Context, id int) (*entities.User, error) {
	users, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new account with a hashed password and empty lists.
// It returns ErrUserExists when the username is taken.
func (r *Repository) Create(ctx context.Context, in entities.NewUser) (*entities.User, error) {
	hash, err := auth.HashPassword(in.Password, r.bcryptCost)
	if err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	var created entities.User
	err = r.store.Update(ctx, func(users *[]entities.User) error {
		if indexOf(*users, in.Username) >= 0 {
			return ErrUserExists
		}
		created = entities.User{
			ID:           nextID(*users),
			Username:     in.Username,
			Password:     hash,
			Email:        in.Email,
			IsAdmin:      in.IsAdmin,
			Tags:         tags,
			Wishlist:     []int{},
			MaturitaList: []int{},
			CreatedAt:    r.now(),
		}
		*users = append(*users, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies the non-nil fields of upd to the named user.
func (r *Repository) Update(ctx context.Context, username string, upd entities.UserUpdate) (*entities.User, error) {
	var hash string
	if upd.Password != nil {
		var err error
		if hash, err = auth.HashPassword(*upd.Password, r.bcryptCost); err != nil {
			return nil, err
		}
	}

	var updated entities.User
	err := r.store.Update(ctx, func(users *[]entities.User) error {
		i := indexOf(*users, username)
		if i < 0 {
			return ErrNotFound
		}
		u := &(*users)[i]
		if upd.Password != nil {
			u.Password = hash
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if upd.IsAdmin != nil {
			u.IsAdmin = *upd.IsAdmin
		}
		if upd.Tags != nil {
			u.Tags = *upd.Tags
		}
		if upd.Wishlist != nil {
			u.Wishlist = dedupe(*upd.Wishlist)
		}
		if upd.MaturitaList != nil {
			u.MaturitaList = dedupe(*upd.MaturitaList)
		}
		updated = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// VerifyPassword returns the user only when password matches the stored hash.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (r *Repository) VerifyPassword(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := r.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := auth.CheckPassword(password, user.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("check password for %s: %w", username, err)
	}
	return user, nil
}

func wishlist(u *entities.User) *[]int { return &u.Wishlist }
func maturita(u *entities.User) *[]int { return &u.MaturitaList }

// AddToWishlist appends bookID to the user's wishlist. It reports false
// when the user is unknown or the book is already listed.
func (r *Repository) AddToWishlist(ctx context.Context, username string, bookID int) (bool, error) {
	return r.toggle(ctx, username, bookID, wishlist, true)
}

// RemoveFromWishlist reports false when the user is unknown or the book is not listed.
func (r *Repository) RemoveFromWishlist(ctx context.Context, username string, bookID int) (bool, error) {
	return r.toggle(ctx, username, bookID, wishlist, false)
}

func (r *Repository) AddToMaturita(ctx context.Context, username string, bookID int) (bool, error) {
	return r.toggle(ctx, username, bookID, maturita, true)
}

func (r *Repository) RemoveFromMaturita(ctx context.Context, username string, bookID int) (bool, error) {
	return r.toggle(ctx, username, bookID, maturita, false)
}

func (r *Repository) toggle(ctx context.Context, username string, bookID int, list func(*entities.User) *[]int, add bool) (bool, error) {
	changed := false
	err := r.store.Update(ctx, func(users *[]entities.User) error {
		i := indexOf(*users, username)
		if i < 0 {
			return storage.ErrNoChange
		}
		ids := list(&(*users)[i])
		if entities.HasBook(*ids, bookID) == add {
			return storage.ErrNoChange
		}
		if add {
			*ids = append(*ids, bookID)
		} else {
			*ids = without(*ids, bookID)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// RemoveBookReferences drops bookID from every wishlist and maturita list
// and returns the number of users that referenced it.
func (r *Repository) RemoveBookReferences(ctx context.Context, bookID int) (int, error) {
	affected := 0
	err := r.store.Update(ctx, func(users *[]entities.User) error {
		for i := range *users {
			u := &(*users)[i]
			hit := false
			if entities.HasBook(u.Wishlist, bookID) {
				u.Wishlist = without(u.Wishlist, bookID)
				hit = true
			}
			if entities.HasBook(u.MaturitaList, bookID) {
				u.MaturitaList = without(u.MaturitaList, bookID)
				hit = true
			}
			if hit {
				affected++
			}
		}
		if affected == 0 {
			return storage.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func indexOf(users []entities.User, username string) int {
	for i := range users {
		if users[i].Username == username {
			return i
		}
	}
	return -1
}

func nextID(users []entities.User) int {
	max := 0
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if !entities.HasBook(out, v) {
			out = append(out, v)
		}
	}
	return out
}
