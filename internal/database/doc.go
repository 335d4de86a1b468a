// Package database provides the data access layer for the application.
//
// # Architecture
//
// Records are persisted as whole documents through internal/storage, one
// document per entity type. The layer is organized into domain-specific
// sub-packages:
//
//	database/
//	├── database.go      # Connection setup, store selection, repository wiring
//	├── users/           # Accounts, credentials, wishlist and maturita lists
//	├── books/           # Catalog, borrow/return transitions, e-book text
//	├── requests/        # Book requests and their status
//	└── stats/           # Visits, downloads, dashboard snapshot
//
// # Storage drivers
//
// With STORAGE_DRIVER=json every entity type lives in its own pretty-printed
// file in DATA_DIR (users.json, books.json, book_requests.json, stats.json).
// With STORAGE_DRIVER=sqlite the same documents are rows of the documents
// table in DATABASE_PATH. The SQLite database is opened in both modes since
// it also holds sessions.
//
// # Usage
//
//	db, err := database.NewDatabase(cfg.Storage, cfg.Auth.BcryptCost, log)
//	user, err := db.Users.FindByUsername(ctx, "alice")
//	ok, err := db.Books.Borrow(ctx, bookID, user.Username)
//
// Repositories never reach into each other's stores. Cross-entity
// operations (approving a request, deleting a book) are orchestrated by
// internal/services.
package database
