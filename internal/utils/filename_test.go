package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "trims whitespace",
			input:    "  filename  ",
			expected: "filename",
		},
		{
			name:     "falls back for empty",
			input:    "",
			expected: "untitled",
		},
		{
			name:     "falls back for only special chars",
			input:    "<>:?*",
			expected: "untitled",
		},
		{
			name:     "truncates long names",
			input:    strings.Repeat("a", 250),
			expected: strings.Repeat("a", 200),
		},
		{
			name:     "keeps unicode",
			input:    "Babička",
			expected: "Babička",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestEBookFilename(t *testing.T) {
	assert.Equal(t, "the_great_gatsby.txt", EBookFilename("The Great Gatsby"))
	assert.Equal(t, "dune.txt", EBookFilename("Dune"))
	assert.Equal(t, "r.u.r..txt", EBookFilename("R.U.R."))
	assert.Equal(t, "babička.txt", EBookFilename("Babička"))
	assert.Equal(t, "what_if.txt", EBookFilename("What If?"))
}

func TestBorrowTicketFilename(t *testing.T) {
	assert.Equal(t, "borrow_qr_3_alice.png", BorrowTicketFilename(3, "alice"))
}
