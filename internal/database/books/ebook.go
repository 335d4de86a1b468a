package books

import (
	"context"
	"strings"
	"text/template"

	"github.com/mrlokans/libris/internal/entities"
)

var bookFileTemplate = template.Must(template.New("book_file").Parse(`
╔════════════════════════════════════════════════════════════════════╗
║                      DIGITAL BOOK EDITION                          ║
╚════════════════════════════════════════════════════════════════════╝

Title: {{.Title}}
Author: {{.Author}}
Genre: {{.Genre}}
Time Period: {{.Period}}

──────────────────────────────────────────────────────────────────────

CHAPTER 1: Introduction

This is an electronic copy of "{{.Title}}" by {{.Author}}.

Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod
tempor incididunt ut labore et dolore magna aliqua. Ut enim ad minim
veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex
ea commodo consequat.

Duis aute irure dolor in reprehenderit in voluptate velit esse cillum
dolore eu fugiat nulla pariatur. Excepteur sint occaecat cupidatat non
proident, sunt in culpa qui officia deserunt mollit anim id est laborum.

──────────────────────────────────────────────────────────────────────

CHAPTER 2: Main Content

Sed ut perspiciatis unde omnis iste natus error sit voluptatem
accusantium doloremque laudantium, totam rem aperiam, eaque ipsa quae
ab illo inventore veritatis et quasi architecto beatae vitae dicta sunt
explicabo.

Nemo enim ipsam voluptatem quia voluptas sit aspernatur aut odit aut
fugit, sed quia consequuntur magni dolores eos qui ratione voluptatem
sequi nesciunt.

──────────────────────────────────────────────────────────────────────

CHAPTER 3: Conclusion

At vero eos et accusamus et iusto odio dignissimos ducimus qui blanditiis
praesentium voluptatum deleniti atque corrupti quos dolores et quas
molestias excepturi sint occaecati cupiditate non provident.

Similique sunt in culpa qui officia deserunt mollitia animi, id est
laborum et dolorum fuga. Et harum quidem rerum facilis est et expedita
distinctio.

──────────────────────────────────────────────────────────────────────

Downloaded from Library System
`))

// BookFile renders the placeholder digital edition handed out for
// electronic borrowing.
func (r *Repository) BookFile(ctx context.Context, id int) (string, error) {
	book, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderBookFile(book)
}

// RenderBookFile renders the digital edition text for book.
func RenderBookFile(book *entities.Book) (string, error) {
	var sb strings.Builder
	if err := bookFileTemplate.Execute(&sb, book); err != nil {
		return "", err
	}
	return sb.String(), nil
}
