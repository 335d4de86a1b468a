package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Document is the row holding one entity type's encoded records.
type Document struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Body      string    `gorm:"type:text;not null"`
	Revision  int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Document) TableName() string {
	return "documents"
}

// Migrate creates the documents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Document{})
}

// SQLStore keeps a document as a row in a SQL database. Writes bump a
// revision counter and only succeed if the revision read at the start of
// the transaction is still current, so writers in other processes cannot
// silently overwrite each other.
type SQLStore[T any] struct {
	db    *gorm.DB
	name  string
	empty EmptyFunc[T]

	mu sync.Mutex
}

func NewSQLStore[T any](db *gorm.DB, name string, empty EmptyFunc[T]) *SQLStore[T] {
	return &SQLStore[T]{db: db, name: name, empty: empty}
}

func (s *SQLStore[T]) Load(ctx context.Context) (T, error) {
	row, found, err := s.read(s.db.WithContext(ctx))
	if err != nil {
		var zero T
		return zero, err
	}
	if !found {
		return s.empty(), nil
	}
	return decode(s.name, []byte(row.Body), s.empty)
}

func (s *SQLStore[T]) Save(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, found, err := s.read(tx)
		if err != nil {
			return err
		}
		return s.write(tx, row.Revision, found, doc)
	})
}

func (s *SQLStore[T]) Update(ctx context.Context, fn func(doc *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, found, err := s.read(tx)
		if err != nil {
			return err
		}

		doc := s.empty()
		if found {
			if doc, err = decode(s.name, []byte(row.Body), s.empty); err != nil {
				return err
			}
		}

		write, err := apply(&doc, fn)
		if err != nil || !write {
			return err
		}
		return s.write(tx, row.Revision, found, doc)
	})
}

func (s *SQLStore[T]) read(db *gorm.DB) (Document, bool, error) {
	var row Document
	err := db.Where("name = ?", s.name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("read document %s: %w", s.name, err)
	}
	return row, true, nil
}

func (s *SQLStore[T]) write(tx *gorm.DB, revision int64, exists bool, doc T) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	now := time.Now()

	if !exists {
		row := Document{Name: s.name, Body: string(body), Revision: 1, UpdatedAt: now}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("%w: create document %s: %v", ErrConflict, s.name, err)
		}
		return nil
	}

	res := tx.Model(&Document{}).
		Where("name = ? AND revision = ?", s.name, revision).
		Updates(map[string]any{
			"body":       string(body),
			"revision":   revision + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("write document %s: %w", s.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: document %s", ErrConflict, s.name)
	}
	return nil
}
