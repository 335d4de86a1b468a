package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceChars      = regexp.MustCompile(`[\r\n\t]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename strips characters that are invalid in filenames or
// unsafe in a Content-Disposition header.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Leave room for an extension
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	if filename == "" {
		filename = "untitled"
	}
	return filename
}

// EBookFilename names the downloadable copy of a book:
// lowercased title, spaces as underscores, ".txt" suffix.
// Example: "The Great Gatsby" -> "the_great_gatsby.txt"
func EBookFilename(title string) string {
	name := strings.ToLower(SanitizeFilename(title))
	return strings.ReplaceAll(name, " ", "_") + ".txt"
}

// BorrowTicketFilename names the pickup ticket image for a physical borrow.
func BorrowTicketFilename(bookID int, username string) string {
	return fmt.Sprintf("borrow_qr_%d_%s.png", bookID, SanitizeFilename(username))
}
