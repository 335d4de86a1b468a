package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/libris/internal/audit"
	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/database/books"
	"github.com/mrlokans/libris/internal/database/requests"
	"github.com/mrlokans/libris/internal/database/stats"
	"github.com/mrlokans/libris/internal/database/users"
	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/http"
	"github.com/mrlokans/libris/internal/scheduler"
	"github.com/mrlokans/libris/internal/services"
	"github.com/mrlokans/libris/internal/storage"
	"github.com/mrlokans/libris/internal/tasks"
)

// =============================================================================
// Storage
// =============================================================================

var _ storage.Store[[]entities.User] = (*storage.FileStore[[]entities.User])(nil)
var _ storage.Store[[]entities.Book] = (*storage.MemoryStore[[]entities.Book])(nil)
var _ storage.Store[entities.Stats] = (*storage.SQLStore[entities.Stats])(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.UserStore = (*users.Repository)(nil)
var _ services.BookStore = (*books.Repository)(nil)
var _ services.RequestStore = (*requests.Repository)(nil)
var _ services.StatsTracker = (*stats.Repository)(nil)

var _ stats.UserLister = (*users.Repository)(nil)
var _ stats.BookLister = (*books.Repository)(nil)

var _ auth.UserFinder = (*users.Repository)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ services.PurgeEnqueuer = (*tasks.Client)(nil)
var _ scheduler.PruneEnqueuer = (*tasks.Client)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ tasks.BookReferenceRemover = (*users.Repository)(nil)
var _ tasks.VisitPruner = (*stats.Repository)(nil)

var _ services.AuditLogger = (*audit.Service)(nil)

// =============================================================================
// HTTP
// =============================================================================

var _ http.Library = (*services.LibraryService)(nil)
