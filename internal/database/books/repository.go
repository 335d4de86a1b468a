// Package books provides persistence for the book catalog and its
// borrowing state.
//
// Borrow state changes only through Borrow and Return, so a stored book is
// unavailable exactly when it records a borrower.
package books

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/storage"
)

var ErrNotFound = errors.New("book not found")

// Repository handles all book persistence.
type Repository struct {
	store storage.Store[[]entities.Book]
	now   func() time.Time
}

// NewRepository creates a books repository backed by store.
func NewRepository(store storage.Store[[]entities.Book]) *Repository {
	return &Repository{store: store, now: time.Now}
}

// List returns every book in stored order.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	return r.store.Load(ctx)
}

func (r *Repository) FindByID(ctx context.Context, id int) (*entities.Book, error) {
	books, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(books, id); i >= 0 {
		return &books[i], nil
	}
	return nil, ErrNotFound
}

// FindByIDs resolves ids in order, skipping ids that no longer exist.
func (r *Repository) FindByIDs(ctx context.Context, ids []int) ([]entities.Book, error) {
	books, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Book, 0, len(ids))
	for _, id := range ids {
		if i := indexOf(books, id); i >= 0 {
			out = append(out, books[i])
		}
	}
	return out, nil
}

// Create adds a book with the next free id.
func (r *Repository) Create(ctx context.Context, in entities.NewBook) (*entities.Book, error) {
	var created entities.Book
	err := r.store.Update(ctx, func(books *[]entities.Book) error {
		created = entities.Book{
			ID:             nextID(*books),
			Title:          in.Title,
			Author:         in.Author,
			Genre:          in.Genre,
			Period:         in.Period,
			LiteratureType: normalizeLiteratureType(in.LiteratureType),
			Available:      !in.Unavailable,
			CreatedAt:      r.now(),
		}
		*books = append(*books, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies the non-nil metadata fields of upd.
func (r *Repository) Update(ctx context.Context, id int, upd entities.BookUpdate) (*entities.Book, error) {
	var updated entities.Book
	err := r.store.Update(ctx, func(books *[]entities.Book) error {
		i := indexOf(*books, id)
		if i < 0 {
			return ErrNotFound
		}
		b := &(*books)[i]
		if upd.Title != nil {
			b.Title = *upd.Title
		}
		if upd.Author != nil {
			b.Author = *upd.Author
		}
		if upd.Genre != nil {
			b.Genre = *upd.Genre
		}
		if upd.Period != nil {
			b.Period = *upd.Period
		}
		if upd.LiteratureType != nil {
			b.LiteratureType = normalizeLiteratureType(upd.LiteratureType)
		}
		updated = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Borrow lends an available book to username. It reports false when the
// book does not exist or is already out.
func (r *Repository) Borrow(ctx context.Context, id int, username string) (bool, error) {
	borrowed := false
	err := r.store.Update(ctx, func(books *[]entities.Book) error {
		i := indexOf(*books, id)
		if i < 0 || !(*books)[i].Available {
			return storage.ErrNoChange
		}
		now := r.now()
		b := &(*books)[i]
		b.Available = false
		b.BorrowedBy = &username
		b.BorrowedDate = &now
		borrowed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return borrowed, nil
}

// Return marks a lent book as available again. It reports false when the
// book does not exist or is not lent. The borrower is not checked here.
func (r *Repository) Return(ctx context.Context, id int) (bool, error) {
	returned := false
	err := r.store.Update(ctx, func(books *[]entities.Book) error {
		i := indexOf(*books, id)
		if i < 0 || (*books)[i].Available {
			return storage.ErrNoChange
		}
		b := &(*books)[i]
		b.Available = true
		b.BorrowedBy = nil
		b.BorrowedDate = nil
		returned = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return returned, nil
}

// Delete removes the book and returns the deleted record. References from
// users are cleaned up by the caller.
func (r *Repository) Delete(ctx context.Context, id int) (*entities.Book, error) {
	var deleted entities.Book
	err := r.store.Update(ctx, func(books *[]entities.Book) error {
		i := indexOf(*books, id)
		if i < 0 {
			return ErrNotFound
		}
		deleted = (*books)[i]
		*books = append((*books)[:i], (*books)[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func indexOf(books []entities.Book, id int) int {
	for i := range books {
		if books[i].ID == id {
			return i
		}
	}
	return -1
}

func nextID(books []entities.Book) int {
	max := 0
	for _, b := range books {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}

func normalizeLiteratureType(lt *string) *string {
	if lt == nil {
		return nil
	}
	v := strings.TrimSpace(*lt)
	if v == "" {
		return nil
	}
	return &v
}
