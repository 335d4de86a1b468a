package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/libris/internal/config"
	"github.com/mrlokans/libris/internal/database/books"
	"github.com/mrlokans/libris/internal/database/requests"
	"github.com/mrlokans/libris/internal/database/stats"
	"github.com/mrlokans/libris/internal/database/users"
	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/storage"
)

// File names inside the data directory, and document names in the
// documents table for the sqlite driver.
const (
	UsersDocument        = "users"
	BooksDocument        = "books"
	BookRequestsDocument = "book_requests"
	StatsDocument        = "stats"
)

// Database owns the SQLite connection and the record repositories.
type Database struct {
	DB *gorm.DB

	Users    *users.Repository
	Books    *books.Repository
	Requests *requests.Repository
	Stats    *stats.Repository

	userStore    storage.Store[[]entities.User]
	bookStore    storage.Store[[]entities.Book]
	requestStore storage.Store[[]entities.BookRequest]
}

// NewDatabase opens the SQLite database at cfg.DatabasePath and builds the
// record stores for the configured driver.
func NewDatabase(cfg config.Storage, bcryptCost int, log *zap.Logger) (*Database, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{DB: db}

	switch cfg.Driver {
	case config.StorageDriverJSON, "":
		d.userStore = storage.NewFileStore(filepath.Join(cfg.DataDir, UsersDocument+".json"), storage.EmptySlice[entities.User])
		d.bookStore = storage.NewFileStore(filepath.Join(cfg.DataDir, BooksDocument+".json"), storage.EmptySlice[entities.Book])
		d.requestStore = storage.NewFileStore(filepath.Join(cfg.DataDir, BookRequestsDocument+".json"), storage.EmptySlice[entities.BookRequest])
		d.wire(bcryptCost, storage.NewFileStore(filepath.Join(cfg.DataDir, StatsDocument+".json"), stats.EmptyStats))

	case config.StorageDriverSQLite:
		if err := storage.Migrate(db); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		d.userStore = storage.NewSQLStore(db, UsersDocument, storage.EmptySlice[entities.User])
		d.bookStore = storage.NewSQLStore(db, BooksDocument, storage.EmptySlice[entities.Book])
		d.requestStore = storage.NewSQLStore(db, BookRequestsDocument, storage.EmptySlice[entities.BookRequest])
		d.wire(bcryptCost, storage.NewSQLStore(db, StatsDocument, stats.EmptyStats))

	default:
		d.Close()
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	log.Info("database initialized",
		zap.String("driver", string(cfg.Driver)),
		zap.String("data_dir", cfg.DataDir),
		zap.String("database_path", cfg.DatabasePath))

	return d, nil
}

func (d *Database) wire(bcryptCost int, statsStore storage.Store[entities.Stats]) {
	d.Users = users.NewRepository(d.userStore, bcryptCost)
	d.Books = books.NewRepository(d.bookStore)
	d.Requests = requests.NewRepository(d.requestStore)
	d.Stats = stats.NewRepository(statsStore, d.Users, d.Books)
}

// SQLDB returns the underlying connection, shared with the session store.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

// Reset empties the user, book and request records. Stats are kept.
func (d *Database) Reset(ctx context.Context) error {
	if err := d.userStore.Save(ctx, []entities.User{}); err != nil {
		return fmt.Errorf("reset users: %w", err)
	}
	if err := d.bookStore.Save(ctx, []entities.Book{}); err != nil {
		return fmt.Errorf("reset books: %w", err)
	}
	if err := d.requestStore.Save(ctx, []entities.BookRequest{}); err != nil {
		return fmt.Errorf("reset book requests: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
