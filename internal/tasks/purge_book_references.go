package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// BookReferenceRemover drops a book id from every user list.
type BookReferenceRemover interface {
	RemoveBookReferences(ctx context.Context, bookID int) (int, error)
}

// PurgeBookReferencesTask removes a deleted book from wishlists and
// maturita lists.
type PurgeBookReferencesTask struct {
	BookID int `json:"book_id"`
}

// Config returns the queue configuration for purge tasks.
func (t PurgeBookReferencesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_book_references",
		MaxAttempts: 5,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeBookReferencesProcessor creates a processor function for PurgeBookReferencesTask.
func PurgeBookReferencesProcessor(remover BookReferenceRemover, log *zap.Logger) backlite.QueueProcessor[PurgeBookReferencesTask] {
	return func(ctx context.Context, task PurgeBookReferencesTask) error {
		if remover == nil {
			return fmt.Errorf("book reference remover not configured")
		}

		affected, err := remover.RemoveBookReferences(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("purge references to book %d: %w", task.BookID, err)
		}

		log.Info("purged book references", zap.Int("book_id", task.BookID), zap.Int("users", affected))
		return nil
	}
}

// NewPurgeBookReferencesQueue creates a backlite queue for purge tasks.
func NewPurgeBookReferencesQueue(remover BookReferenceRemover, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(PurgeBookReferencesProcessor(remover, log))
}
