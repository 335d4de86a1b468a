package services

import (
	"context"

	"github.com/mrlokans/libris/internal/entities"
)

// UserStore is the user persistence the library service needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	Create(ctx context.Context, in entities.NewUser) (*entities.User, error)
	VerifyPassword(ctx context.Context, username, password string) (*entities.User, error)
	AddToWishlist(ctx context.Context, username string, bookID int) (bool, error)
	RemoveFromWishlist(ctx context.Context, username string, bookID int) (bool, error)
	AddToMaturita(ctx context.Context, username string, bookID int) (bool, error)
	RemoveFromMaturita(ctx context.Context, username string, bookID int) (bool, error)
	RemoveBookReferences(ctx context.Context, bookID int) (int, error)
}

// BookStore is the catalog persistence the library service needs.
type BookStore interface {
	List(ctx context.Context) ([]entities.Book, error)
	FindByID(ctx context.Context, id int) (*entities.Book, error)
	FindByIDs(ctx context.Context, ids []int) ([]entities.Book, error)
	Create(ctx context.Context, in entities.NewBook) (*entities.Book, error)
	Update(ctx context.Context, id int, upd entities.BookUpdate) (*entities.Book, error)
	Borrow(ctx context.Context, id int, username string) (bool, error)
	Return(ctx context.Context, id int) (bool, error)
	Delete(ctx context.Context, id int) (*entities.Book, error)
	BookFile(ctx context.Context, id int) (string, error)
}

// RequestStore is the book request persistence the library service needs.
type RequestStore interface {
	Create(ctx context.Context, username, title, author, reason string) (*entities.BookRequest, error)
	FindByID(ctx context.Context, id int) (*entities.BookRequest, error)
	ListByStatus(ctx context.Context, status entities.RequestStatus) ([]entities.BookRequest, error)
	UpdateStatus(ctx context.Context, id int, status entities.RequestStatus) (*entities.BookRequest, error)
}

// StatsTracker records usage and builds the dashboard snapshot.
type StatsTracker interface {
	TrackVisitor(ctx context.Context, username string) error
	TrackEBookDownload(ctx context.Context) error
	DashboardStats(ctx context.Context) (*entities.DashboardStats, error)
}

// PurgeEnqueuer schedules cleanup of user lists after a book is deleted.
type PurgeEnqueuer interface {
	EnqueuePurgeBookReferences(ctx context.Context, bookID int) error
}

// AuditLogger records admin actions.
type AuditLogger interface {
	LogBookCreated(actor string, book *entities.Book)
	LogBookUpdated(actor string, book *entities.Book)
	LogBookDeleted(actor string, book *entities.Book, cleanup string, err error)
	LogRequestReviewed(actor string, req *entities.BookRequest, bookID int)
}
