package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/maturita"
	"github.com/mrlokans/libris/internal/utils"
)

var (
	ErrBookUnavailable   = errors.New("book is already borrowed")
	ErrBookNotBorrowed   = errors.New("this book is not borrowed")
	ErrNotBorrower       = errors.New("you did not borrow this book")
	ErrRequestNotPending = errors.New("book request is not pending")
)

// Reference cleanup modes recorded in the audit trail.
const (
	CleanupQueued = "queued"
	CleanupInline = "inline"
)

// EBook is the electronic copy handed out for download.
type EBook struct {
	Filename string
	Content  string
}

// BorrowTicket is issued for a physical borrow; Token is the payload the
// desk scans at pickup.
type BorrowTicket struct {
	Book     entities.Book `json:"book"`
	Token    string        `json:"token"`
	Filename string        `json:"filename"`
}

// AdminDashboard is everything the admin overview shows.
type AdminDashboard struct {
	Stats           *entities.DashboardStats `json:"stats"`
	Books           []entities.Book          `json:"books"`
	PendingRequests []entities.BookRequest   `json:"pending_requests"`
}

// LibraryService orchestrates the repositories for user and admin actions.
type LibraryService struct {
	users    UserStore
	books    BookStore
	requests RequestStore
	stats    StatsTracker
	purger   PurgeEnqueuer
	auditor  AuditLogger
	log      *zap.Logger

	validator *validator.Validate
}

// NewLibraryService creates the service. purger may be nil, in which case
// deleted books are purged from user lists synchronously.
func NewLibraryService(users UserStore, books BookStore, requests RequestStore, stats StatsTracker, purger PurgeEnqueuer, auditor AuditLogger, log *zap.Logger) *LibraryService {
	return &LibraryService{
		users:     users,
		books:     books,
		requests:  requests,
		stats:     stats,
		purger:    purger,
		auditor:   auditor,
		log:       log,
		validator: newValidator(maturita.IsCategory),
	}
}

// SignUp creates a regular (non-admin) account.
func (s *LibraryService) SignUp(ctx context.Context, in SignUpInput) (*entities.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, entities.NewUser{
		Username: in.Username,
		Password: in.Password,
		Email:    in.Email,
		Tags:     in.Tags,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user signed up", zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and records the visit. A failure to record
// the visit is logged and does not fail the login.
func (s *LibraryService) Login(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.users.VerifyPassword(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.stats.TrackVisitor(ctx, user.Username); err != nil {
		s.log.Error("failed to track visitor", zap.String("username", user.Username), zap.Error(err))
	}
	return user, nil
}

func (s *LibraryService) CurrentUser(ctx context.Context, username string) (*entities.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *LibraryService) ListBooks(ctx context.Context) ([]entities.Book, error) {
	return s.books.List(ctx)
}

func (s *LibraryService) GetBook(ctx context.Context, id int) (*entities.Book, error) {
	return s.books.FindByID(ctx, id)
}

// BorrowBook lends the book to username.
func (s *LibraryService) BorrowBook(ctx context.Context, bookID int, username string) (*entities.Book, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.Available {
		return nil, ErrBookUnavailable
	}

	ok, err := s.books.Borrow(ctx, bookID, username)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race to another borrower, or the book was deleted.
		return nil, ErrBookUnavailable
	}
	return s.books.FindByID(ctx, bookID)
}

// ReturnBook returns a book, which only its borrower may do.
func (s *LibraryService) ReturnBook(ctx context.Context, bookID int, username string) (*entities.Book, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Available {
		return nil, ErrBookNotBorrowed
	}
	if !book.IsBorrowedBy(username) {
		return nil, ErrNotBorrower
	}

	ok, err := s.books.Return(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBookNotBorrowed
	}
	return s.books.FindByID(ctx, bookID)
}

// DownloadEBook renders the electronic copy and counts the download.
func (s *LibraryService) DownloadEBook(ctx context.Context, bookID int) (*EBook, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	content, err := s.books.BookFile(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.stats.TrackEBookDownload(ctx); err != nil {
		return nil, fmt.Errorf("track e-book download: %w", err)
	}
	return &EBook{Filename: utils.EBookFilename(book.Title), Content: content}, nil
}

// BorrowPhysical borrows the book and issues a pickup ticket.
func (s *LibraryService) BorrowPhysical(ctx context.Context, bookID int, username string) (*BorrowTicket, error) {
	book, err := s.BorrowBook(ctx, bookID, username)
	if err != nil {
		return nil, err
	}
	return &BorrowTicket{
		Book:     *book,
		Token:    fmt.Sprintf("LIBRARY_BORROW|book_id:%d|user:%s|title:%s", book.ID, username, book.Title),
		Filename: utils.BorrowTicketFilename(book.ID, username),
	}, nil
}

// Wishlist resolves the user's wishlist to books, skipping deleted ones.
func (s *LibraryService) Wishlist(ctx context.Context, username string) ([]entities.Book, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.books.FindByIDs(ctx, user.Wishlist)
}

// AddToWishlist reports false when the book is already listed.
func (s *LibraryService) AddToWishlist(ctx context.Context, username string, bookID int) (bool, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return false, err
	}
	return s.users.AddToWishlist(ctx, username, bookID)
}

func (s *LibraryService) RemoveFromWishlist(ctx context.Context, username string, bookID int) (bool, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return false, err
	}
	return s.users.RemoveFromWishlist(ctx, username, bookID)
}

// MaturitaProgress resolves the user's reading list and groups it by category.
func (s *LibraryService) MaturitaProgress(ctx context.Context, username string) (*maturita.Progress, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	books, err := s.books.FindByIDs(ctx, user.MaturitaList)
	if err != nil {
		return nil, err
	}
	p := maturita.Compute(books)
	return &p, nil
}

func (s *LibraryService) AddToMaturita(ctx context.Context, username string, bookID int) (bool, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return false, err
	}
	return s.users.AddToMaturita(ctx, username, bookID)
}

func (s *LibraryService) RemoveFromMaturita(ctx context.Context, username string, bookID int) (bool, error) {
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		return false, err
	}
	return s.users.RemoveFromMaturita(ctx, username, bookID)
}

// RequestBook files a pending acquisition request.
func (s *LibraryService) RequestBook(ctx context.Context, username string, in RequestInput) (*entities.BookRequest, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	return s.requests.Create(ctx, username, in.Title, in.Author, in.Reason)
}

// Dashboard returns the public usage snapshot.
func (s *LibraryService) Dashboard(ctx context.Context) (*entities.DashboardStats, error) {
	return s.stats.DashboardStats(ctx)
}

// AdminDashboard returns the catalog, pending requests and usage snapshot.
func (s *LibraryService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	stats, err := s.stats.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.requests.ListByStatus(ctx, entities.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{Stats: stats, Books: books, PendingRequests: pending}, nil
}

func (s *LibraryService) PendingRequests(ctx context.Context) ([]entities.BookRequest, error) {
	return s.requests.ListByStatus(ctx, entities.RequestStatusPending)
}

func literatureType(types []string) *string {
	if len(types) == 0 {
		return nil
	}
	joined := strings.Join(types, ", ")
	return &joined
}

// AddBook creates an available catalog entry.
func (s *LibraryService) AddBook(ctx context.Context, actor string, in BookInput) (*entities.Book, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	book, err := s.books.Create(ctx, entities.NewBook{
		Title:          in.Title,
		Author:         in.Author,
		Genre:          in.Genre,
		Period:         in.Period,
		LiteratureType: literatureType(in.LiteratureTypes),
	})
	if err != nil {
		return nil, err
	}
	s.auditor.LogBookCreated(actor, book)
	return book, nil
}

// EditBook replaces the catalog metadata. An empty literature type list
// clears the field.
func (s *LibraryService) EditBook(ctx context.Context, actor string, bookID int, in BookInput) (*entities.Book, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	lt := ""
	if v := literatureType(in.LiteratureTypes); v != nil {
		lt = *v
	}
	book, err := s.books.Update(ctx, bookID, entities.BookUpdate{
		Title:          &in.Title,
		Author:         &in.Author,
		Genre:          &in.Genre,
		Period:         &in.Period,
		LiteratureType: &lt,
	})
	if err != nil {
		return nil, err
	}
	s.auditor.LogBookUpdated(actor, book)
	return book, nil
}

// DeleteBook removes the book and cleans it out of every user's lists,
// through the task queue when available.
func (s *LibraryService) DeleteBook(ctx context.Context, actor string, bookID int) (*entities.Book, error) {
	book, err := s.books.Delete(ctx, bookID)
	if err != nil {
		return nil, err
	}

	cleanup, cleanupErr := s.purgeReferences(ctx, bookID)
	if cleanupErr != nil {
		s.log.Error("failed to purge book references", zap.Int("book_id", bookID), zap.Error(cleanupErr))
	}
	s.auditor.LogBookDeleted(actor, book, cleanup, cleanupErr)
	return book, nil
}

func (s *LibraryService) purgeReferences(ctx context.Context, bookID int) (string, error) {
	if s.purger != nil {
		err := s.purger.EnqueuePurgeBookReferences(ctx, bookID)
		if err == nil {
			return CleanupQueued, nil
		}
		s.log.Warn("failed to enqueue purge, purging inline", zap.Int("book_id", bookID), zap.Error(err))
	}
	_, err := s.users.RemoveBookReferences(ctx, bookID)
	return CleanupInline, err
}

// ApproveRequest adds the requested book to the catalog with placeholder
// genre and period, then marks the request approved.
func (s *LibraryService) ApproveRequest(ctx context.Context, actor string, requestID int) (*entities.BookRequest, *entities.Book, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	book, err := s.books.Create(ctx, entities.NewBook{
		Title:  req.Title,
		Author: req.Author,
		Genre:  entities.RequestedBookGenre,
		Period: entities.RequestedBookPeriod,
	})
	if err != nil {
		return nil, nil, err
	}

	req, err = s.requests.UpdateStatus(ctx, requestID, entities.RequestStatusApproved)
	if err != nil {
		return nil, nil, err
	}
	s.auditor.LogRequestReviewed(actor, req, book.ID)
	return req, book, nil
}

func (s *LibraryService) RejectRequest(ctx context.Context, actor string, requestID int) (*entities.BookRequest, error) {
	if _, err := s.pendingRequest(ctx, requestID); err != nil {
		return nil, err
	}
	req, err := s.requests.UpdateStatus(ctx, requestID, entities.RequestStatusRejected)
	if err != nil {
		return nil, err
	}
	s.auditor.LogRequestReviewed(actor, req, 0)
	return req, nil
}

func (s *LibraryService) pendingRequest(ctx context.Context, id int) (*entities.BookRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != entities.RequestStatusPending {
		return nil, ErrRequestNotPending
	}
	return req, nil
}
