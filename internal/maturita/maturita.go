// Package maturita tracks progress on the Czech school-leaving exam
// reading list. Books are assigned to categories through their
// literature_type, a comma-joined list of category keys.
package maturita

import (
	"strings"

	"github.com/mrlokans/libris/internal/entities"
)

// TotalRequired is the number of books a complete reading list holds.
const TotalRequired = 20

type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Min   int    `json:"min"`
}

// Categories lists the exam categories in display order.
var Categories = []Category{
	{Key: "world_czech_18", Label: "World & Czech Literature until 1800", Min: 2},
	{Key: "world_czech_19", Label: "World & Czech Literature 1800-1900", Min: 3},
	{Key: "world_20_21", Label: "World Literature 20th-21st century", Min: 4},
	{Key: "czech_20_21", Label: "Czech Literature 20th-21st century", Min: 5},
}

// IsCategory reports whether key names one of Categories.
func IsCategory(key string) bool {
	for _, c := range Categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Parse splits a literature type into its trimmed, non-empty parts.
func Parse(literatureType *string) []string {
	if literatureType == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(*literatureType, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// InCategory reports whether the book counts toward the category key.
func InCategory(book entities.Book, key string) bool {
	for _, k := range Parse(book.LiteratureType) {
		if k == key {
			return true
		}
	}
	return false
}

type CategoryProgress struct {
	Category
	Books    []entities.Book `json:"books"`
	Count    int             `json:"count"`
	Complete bool            `json:"complete"`
}

type Progress struct {
	Books         []entities.Book    `json:"books"`
	Categories    []CategoryProgress `json:"categories"`
	TotalProgress int                `json:"total_progress"`
	TotalRequired int                `json:"total_required"`
}

// Compute groups a reading list by category. A book may count toward
// several categories, and every listed book counts toward the total.
func Compute(books []entities.Book) Progress {
	if books == nil {
		books = []entities.Book{}
	}
	p := Progress{
		Books:         books,
		Categories:    make([]CategoryProgress, 0, len(Categories)),
		TotalProgress: len(books),
		TotalRequired: TotalRequired,
	}
	for _, c := range Categories {
		cp := CategoryProgress{Category: c, Books: []entities.Book{}}
		for _, b := range books {
			if InCategory(b, c.Key) {
				cp.Books = append(cp.Books, b)
			}
		}
		cp.Count = len(cp.Books)
		cp.Complete = cp.Count >= c.Min
		p.Categories = append(p.Categories, cp)
	}
	return p
}

// Complete reports whether every category minimum and the overall total are met.
func (p Progress) Complete() bool {
	for _, c := range p.Categories {
		if !c.Complete {
			return false
		}
	}
	return p.TotalProgress >= p.TotalRequired
}

// Distribution counts catalog books per category key.
func Distribution(books []entities.Book) map[string]int {
	counts := make(map[string]int, len(Categories))
	for _, c := range Categories {
		counts[c.Key] = 0
	}
	for _, b := range books {
		for _, k := range Parse(b.LiteratureType) {
			if _, ok := counts[k]; ok {
				counts[k]++
			}
		}
	}
	return counts
}
