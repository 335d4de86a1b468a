package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/auth"
)

type BooksController struct {
	catalog CatalogService
	log     *zap.Logger
}

func NewBooksController(catalog CatalogService, log *zap.Logger) *BooksController {
	return &BooksController{catalog: catalog, log: log}
}

func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.catalog.ListBooks(c.Request.Context())
	if err != nil {
		respondInternalError(c, bc.log, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, bc.log, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (bc *BooksController) Borrow(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.catalog.BorrowBook(c.Request.Context(), id, auth.Username(c))
	if err != nil {
		respondServiceError(c, bc.log, err, "borrow book")
		return
	}
	respondSuccess(c, fmt.Sprintf("You have borrowed %q", book.Title), book)
}

func (bc *BooksController) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.catalog.ReturnBook(c.Request.Context(), id, auth.Username(c))
	if err != nil {
		respondServiceError(c, bc.log, err, "return book")
		return
	}
	respondSuccess(c, fmt.Sprintf("You have returned %q", book.Title), book)
}

// EBook streams the electronic copy as a text attachment.
func (bc *BooksController) EBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ebook, err := bc.catalog.DownloadEBook(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, bc.log, err, "download e-book")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ebook.Filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(ebook.Content))
}

// BorrowPhysical borrows the book and returns the pickup ticket.
func (bc *BooksController) BorrowPhysical(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ticket, err := bc.catalog.BorrowPhysical(c.Request.Context(), id, auth.Username(c))
	if err != nil {
		respondServiceError(c, bc.log, err, "borrow physical")
		return
	}
	c.JSON(http.StatusOK, ticket)
}
