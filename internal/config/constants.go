package config

// Default paths for persisted state
const (
	// DefaultDataDir holds users.json, books.json, book_requests.json and stats.json
	DefaultDataDir = "./data"

	// DefaultDatabasePath is the SQLite database for sessions and, with the
	// sqlite storage driver, the record documents
	DefaultDatabasePath = "./data/libris.db"

	// DefaultAuditDir is where admin audit records are written
	DefaultAuditDir = "./data/audit"
)

type StorageDriver string

const (
	StorageDriverJSON   StorageDriver = "json"   // One JSON file per entity type (default)
	StorageDriverSQLite StorageDriver = "sqlite" // One document row per entity type
)
