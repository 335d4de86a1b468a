// Package requests provides persistence for user book requests.
package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/storage"
)

var ErrNotFound = errors.New("book request not found")

type Repository struct {
	store storage.Store[[]entities.BookRequest]
	now   func() time.Time
}

func NewRepository(store storage.Store[[]entities.BookRequest]) *Repository {
	return &Repository{store: store, now: time.Now}
}

// Create stores a new pending request.
func (r *Repository) Create(ctx context.Context, username, title, author, reason string) (*entities.BookRequest, error) {
	var created entities.BookRequest
	err := r.store.Update(ctx, func(reqs *[]entities.BookRequest) error {
		created = entities.BookRequest{
			ID:        nextID(*reqs),
			Username:  username,
			Title:     title,
			Author:    author,
			Reason:    reason,
			Status:    entities.RequestStatusPending,
			CreatedAt: r.now(),
		}
		*reqs = append(*reqs, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*entities.BookRequest, error) {
	reqs, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].ID == id {
			return &reqs[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *Repository) List(ctx context.Context) ([]entities.BookRequest, error) {
	return r.store.Load(ctx)
}

// ListByStatus returns requests with the given status in stored order.
func (r *Repository) ListByStatus(ctx context.Context, status entities.RequestStatus) ([]entities.BookRequest, error) {
	reqs, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.BookRequest, 0, len(reqs))
	for _, req := range reqs {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

// UpdateStatus sets the status of a request regardless of its current one.
// Workflow rules are enforced by the caller.
func (r *Repository) UpdateStatus(ctx context.Context, id int, status entities.RequestStatus) (*entities.BookRequest, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid request status %q", status)
	}

	var updated entities.BookRequest
	err := r.store.Update(ctx, func(reqs *[]entities.BookRequest) error {
		for i := range *reqs {
			if (*reqs)[i].ID == id {
				(*reqs)[i].Status = status
				updated = (*reqs)[i]
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func nextID(reqs []entities.BookRequest) int {
	max := 0
	for _, req := range reqs {
		if req.ID > max {
			max = req.ID
		}
	}
	return max + 1
}
