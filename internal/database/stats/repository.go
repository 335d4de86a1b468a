// Package stats records site visits and e-book downloads and composes the
// admin dashboard snapshot.
package stats

import (
	"context"
	"time"

	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/storage"
)

// UserLister is the subset of the users repository the dashboard needs.
type UserLister interface {
	List(ctx context.Context) ([]entities.User, error)
}

// BookLister is the subset of the books repository the dashboard needs.
type BookLister interface {
	List(ctx context.Context) ([]entities.Book, error)
}

type Repository struct {
	store storage.Store[entities.Stats]
	users UserLister
	books BookLister
	now   func() time.Time
}

func NewRepository(store storage.Store[entities.Stats], users UserLister, books BookLister) *Repository {
	return &Repository{store: store, users: users, books: books, now: time.Now}
}

// EmptyStats is the storage.EmptyFunc for the stats document. Its
// LastUpdated stays zero until the repository stamps it with its clock.
func EmptyStats() entities.Stats {
	return entities.NewStats(time.Time{})
}

// Get returns the persisted aggregate, or a fresh one if none exists yet.
func (r *Repository) Get(ctx context.Context) (entities.Stats, error) {
	return r.load(ctx)
}

// load reads the document, dating a never-written one at r.now().
func (r *Repository) load(ctx context.Context) (entities.Stats, error) {
	s, err := r.store.Load(ctx)
	if err != nil {
		return s, err
	}
	if s.LastUpdated.IsZero() {
		s.LastUpdated = r.now()
	}
	return s, nil
}

// TrackVisitor records a login by username in the current month's bucket.
// An entry with the same username and timestamp is not added twice.
func (r *Repository) TrackVisitor(ctx context.Context, username string) error {
	now := r.now()
	return r.store.Update(ctx, func(s *entities.Stats) error {
		if s.MonthlyVisits == nil {
			s.MonthlyVisits = map[string][]entities.Visit{}
		}
		key := now.Format(entities.MonthKeyLayout)
		visit := entities.Visit{Username: username, Timestamp: now}
		if !containsVisit(s.MonthlyVisits[key], visit) {
			s.MonthlyVisits[key] = append(s.MonthlyVisits[key], visit)
		}
		s.LastUpdated = now
		return nil
	})
}

func (r *Repository) TrackEBookDownload(ctx context.Context) error {
	now := r.now()
	return r.store.Update(ctx, func(s *entities.Stats) error {
		s.EBookDownloads++
		s.LastUpdated = now
		return nil
	})
}

// CurrentMonthVisitors counts distinct usernames that visited this month.
func (r *Repository) CurrentMonthVisitors(ctx context.Context) (int, error) {
	s, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return distinctVisitors(s, r.now()), nil
}

// DashboardStats recomputes the dashboard snapshot from the stores.
func (r *Repository) DashboardStats(ctx context.Context) (*entities.DashboardStats, error) {
	s, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}
	books, err := r.books.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &entities.DashboardStats{
		TotalUsers:           len(users),
		CurrentMonthVisitors: distinctVisitors(s, r.now()),
		TotalBooks:           len(books),
		EBookDownloads:       s.EBookDownloads,
		LastUpdated:          s.LastUpdated,
	}
	for _, u := range users {
		if !u.IsAdmin {
			out.ActiveUsers++
		}
	}
	for _, b := range books {
		if !b.Available {
			out.BorrowedBooks++
		}
	}
	out.AvailableBooks = out.TotalBooks - out.BorrowedBooks
	return out, nil
}

// PruneVisits drops monthly visit buckets older than the newest keepMonths
// months (the current month included) and returns how many were removed.
func (r *Repository) PruneVisits(ctx context.Context, keepMonths int) (int, error) {
	if keepMonths < 1 {
		keepMonths = 1
	}
	now := r.now()
	cutoff := time.Date(now.Year(), now.Month()-time.Month(keepMonths-1), 1, 0, 0, 0, 0, now.Location()).
		Format(entities.MonthKeyLayout)

	removed := 0
	err := r.store.Update(ctx, func(s *entities.Stats) error {
		for key := range s.MonthlyVisits {
			if key < cutoff {
				delete(s.MonthlyVisits, key)
				removed++
			}
		}
		if removed == 0 {
			return storage.ErrNoChange
		}
		s.LastUpdated = now
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func distinctVisitors(s entities.Stats, now time.Time) int {
	seen := make(map[string]struct{})
	for _, v := range s.MonthlyVisits[now.Format(entities.MonthKeyLayout)] {
		seen[v.Username] = struct{}{}
	}
	return len(seen)
}

func containsVisit(visits []entities.Visit, v entities.Visit) bool {
	for _, existing := range visits {
		if existing.Username == v.Username && existing.Timestamp.Equal(v.Timestamp) {
			return true
		}
	}
	return false
}
