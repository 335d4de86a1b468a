package audit

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/entities"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Event is one admin action as written to the audit directory.
type Event struct {
	Action      string         `json:"action"`
	Actor       string         `json:"actor"`
	EntityType  string         `json:"entity_type"`
	EntityID    int            `json:"entity_id"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Status      Status         `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Service records admin actions through an Auditor.
type Service struct {
	auditor *Auditor
	log     *zap.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewService(auditor *Auditor, log *zap.Logger) *Service {
	return &Service{auditor: auditor, log: log, now: time.Now}
}

// Log records an event synchronously.
func (s *Service) Log(event Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	_, err := s.auditor.SaveJSON(event)
	return err
}

// LogAsync records an event in the background (non-blocking).
func (s *Service) LogAsync(event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Log(event); err != nil {
			s.log.Error("failed to log audit event", zap.String("action", event.Action), zap.Error(err))
		}
	}()
}

// Wait blocks until pending asynchronous events are written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogBookCreated records a book added by an admin.
func (s *Service) LogBookCreated(actor string, book *entities.Book) {
	s.LogAsync(Event{
		Action:      "book_create",
		Actor:       actor,
		EntityType:  "book",
		EntityID:    book.ID,
		Description: fmt.Sprintf("Added book: %s by %s", book.Title, book.Author),
		Status:      StatusSuccess,
	})
}

// LogBookUpdated records an admin edit of catalog metadata.
func (s *Service) LogBookUpdated(actor string, book *entities.Book) {
	s.LogAsync(Event{
		Action:      "book_update",
		Actor:       actor,
		EntityType:  "book",
		EntityID:    book.ID,
		Description: "Edited book: " + book.Title,
		Status:      StatusSuccess,
	})
}

// LogBookDeleted records a book removal and the cleanup it triggered.
func (s *Service) LogBookDeleted(actor string, book *entities.Book, cleanup string, err error) {
	event := Event{
		Action:      "book_delete",
		Actor:       actor,
		EntityType:  "book",
		EntityID:    book.ID,
		Description: "Deleted book: " + book.Title,
		Metadata:    map[string]any{"reference_cleanup": cleanup},
		Status:      StatusSuccess,
	}
	if err != nil {
		event.Status = StatusFailed
		event.Error = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// LogRequestReviewed records an approval or rejection of a book request.
// bookID is the catalog entry created on approval, or 0.
func (s *Service) LogRequestReviewed(actor string, req *entities.BookRequest, bookID int) {
	event := Event{
		Action:      "request_" + string(req.Status),
		Actor:       actor,
		EntityType:  "book_request",
		EntityID:    req.ID,
		Description: fmt.Sprintf("Request for %q by %s marked %s", req.Title, req.Username, req.Status),
		Status:      StatusSuccess,
	}
	if bookID != 0 {
		event.Metadata = map[string]any{"book_id": bookID}
	}
	s.LogAsync(event)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
