package http

import (
	"context"

	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/maturita"
	"github.com/mrlokans/libris/internal/services"
)

// Each controller depends on the narrow slice of the library service it
// calls. *services.LibraryService implements all of them.

type AccountService interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*entities.User, error)
	Login(ctx context.Context, username, password string) (*entities.User, error)
}

type CatalogService interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
	GetBook(ctx context.Context, id int) (*entities.Book, error)
	BorrowBook(ctx context.Context, bookID int, username string) (*entities.Book, error)
	ReturnBook(ctx context.Context, bookID int, username string) (*entities.Book, error)
	DownloadEBook(ctx context.Context, bookID int) (*services.EBook, error)
	BorrowPhysical(ctx context.Context, bookID int, username string) (*services.BorrowTicket, error)
}

type ReadingListService interface {
	Wishlist(ctx context.Context, username string) ([]entities.Book, error)
	AddToWishlist(ctx context.Context, username string, bookID int) (bool, error)
	RemoveFromWishlist(ctx context.Context, username string, bookID int) (bool, error)
	MaturitaProgress(ctx context.Context, username string) (*maturita.Progress, error)
	AddToMaturita(ctx context.Context, username string, bookID int) (bool, error)
	RemoveFromMaturita(ctx context.Context, username string, bookID int) (bool, error)
}

type RequestService interface {
	RequestBook(ctx context.Context, username string, in services.RequestInput) (*entities.BookRequest, error)
	Dashboard(ctx context.Context) (*entities.DashboardStats, error)
}

type AdminService interface {
	AdminDashboard(ctx context.Context) (*services.AdminDashboard, error)
	AddBook(ctx context.Context, actor string, in services.BookInput) (*entities.Book, error)
	EditBook(ctx context.Context, actor string, bookID int, in services.BookInput) (*entities.Book, error)
	DeleteBook(ctx context.Context, actor string, bookID int) (*entities.Book, error)
	PendingRequests(ctx context.Context) ([]entities.BookRequest, error)
	ApproveRequest(ctx context.Context, actor string, requestID int) (*entities.BookRequest, *entities.Book, error)
	RejectRequest(ctx context.Context, actor string, requestID int) (*entities.BookRequest, error)
}

// Library is everything the router needs from the service layer.
type Library interface {
	AccountService
	CatalogService
	ReadingListService
	RequestService
	AdminService
}

// TaskQueue is the background queue as seen by the health check.
type TaskQueue interface {
	Ping(ctx context.Context) error
}
