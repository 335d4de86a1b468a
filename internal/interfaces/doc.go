// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage
//
//   - storage.Store[T]: load, save and read-modify-write of one JSON document
//     (internal/storage/store.go). FileStore writes a file in DATA_DIR,
//     SQLStore a row in the documents table, MemoryStore backs tests.
//
// ## Data Access Interfaces
//
//   - UserStore, BookStore, RequestStore, StatsTracker: what the library
//     service needs from the repositories (internal/services/interfaces.go)
//   - UserLister, BookLister: dashboard totals (internal/database/stats)
//   - UserFinder: session user lookup (internal/auth/middleware.go)
//
// ## Background Work
//
//   - PurgeEnqueuer: queues list cleanup after a book is deleted
//     (internal/services/interfaces.go)
//   - PruneEnqueuer: queues monthly visit pruning (internal/scheduler)
//   - BookReferenceRemover, VisitPruner: what the task processors call
//     (internal/tasks)
//   - AuditLogger: records admin actions (internal/services/interfaces.go)
//
// ## HTTP
//
//   - AccountService, CatalogService, ReadingListService, RequestService,
//     AdminService, composed into Library (internal/http/stores.go)
//
// # Adding a New Record Type
//
//  1. Add the entity to internal/entities/
//
//  2. Create a repository over storage.Store:
//
//     type Repository struct { store storage.Store[[]entities.Loan] }
//
//     func NewRepository(store storage.Store[[]entities.Loan]) *Repository
//
//  3. Build the store for both drivers in database.NewDatabase
//
//  4. Add compile-time check:
//
//     var _ services.LoanStore = (*loans.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the current set.
package interfaces
