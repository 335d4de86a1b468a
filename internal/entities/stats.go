package entities

import "time"

// MonthKeyLayout formats the keys of Stats.MonthlyVisits (YYYY-MM).
const MonthKeyLayout = "2006-01"

type Visit struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the single persisted usage aggregate.
type Stats struct {
	TotalVisitors  int                `json:"total_visitors"`
	MonthlyVisits  map[string][]Visit `json:"monthly_visits"`
	EBookDownloads int                `json:"e_book_downloads"`
	LastUpdated    time.Time          `json:"last_updated"`
}

// NewStats returns the default aggregate used when nothing is persisted yet.
func NewStats(now time.Time) Stats {
	return Stats{
		MonthlyVisits: map[string][]Visit{},
		LastUpdated:   now,
	}
}

// DashboardStats is a read-only snapshot for the admin dashboard.
type DashboardStats struct {
	TotalUsers           int       `json:"total_users"`
	ActiveUsers          int       `json:"active_users"`
	CurrentMonthVisitors int       `json:"current_month_visitors"`
	TotalBooks           int       `json:"total_books"`
	BorrowedBooks        int       `json:"borrowed_books"`
	AvailableBooks       int       `json:"available_books"`
	EBookDownloads       int       `json:"e_book_downloads"`
	LastUpdated          time.Time `json:"last_updated"`
}
