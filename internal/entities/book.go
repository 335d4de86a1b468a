package entities

import "time"

// Book is a catalog entry. Available is false exactly when BorrowedBy is set.
type Book struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Author         string     `json:"author"`
	Genre          string     `json:"genre"`
	Period         string     `json:"period"`
	LiteratureType *string    `json:"literature_type"` // comma-joined maturita categories
	Available      bool       `json:"available"`
	BorrowedBy     *string    `json:"borrowed_by"`
	BorrowedDate   *time.Time `json:"borrowed_date"`
	CreatedAt      time.Time  `json:"created_at"`
}

type NewBook struct {
	Title          string
	Author         string
	Genre          string
	Period         string
	LiteratureType *string
	// Unavailable creates the book already marked as not available.
	Unavailable bool
}

// BookUpdate edits catalog metadata. A LiteratureType pointing at an
// empty string clears the field.
type BookUpdate struct {
	Title          *string
	Author         *string
	Genre          *string
	Period         *string
	LiteratureType *string
}

// IsBorrowedBy reports whether the book is currently lent to username.
func (b *Book) IsBorrowedBy(username string) bool {
	return b.BorrowedBy != nil && *b.BorrowedBy == username
}
