package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/libris/internal/auth"
)

// ListsController serves the wishlist and maturita reading list.
type ListsController struct {
	lists ReadingListService
	log   *zap.Logger
}

func NewListsController(lists ReadingListService, log *zap.Logger) *ListsController {
	return &ListsController{lists: lists, log: log}
}

func (lc *ListsController) Wishlist(c *gin.Context) {
	books, err := lc.lists.Wishlist(c.Request.Context(), auth.Username(c))
	if err != nil {
		respondServiceError(c, lc.log, err, "wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (lc *ListsController) AddToWishlist(c *gin.Context) {
	lc.toggle(c, lc.lists.AddToWishlist, "Added to wishlist", "Book is already in your wishlist")
}

func (lc *ListsController) RemoveFromWishlist(c *gin.Context) {
	lc.toggle(c, lc.lists.RemoveFromWishlist, "Removed from wishlist", "Book is not in your wishlist")
}

func (lc *ListsController) Maturita(c *gin.Context) {
	progress, err := lc.lists.MaturitaProgress(c.Request.Context(), auth.Username(c))
	if err != nil {
		respondServiceError(c, lc.log, err, "maturita progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (lc *ListsController) AddToMaturita(c *gin.Context) {
	lc.toggle(c, lc.lists.AddToMaturita, "Added to maturita list", "Book is already in your maturita list")
}

func (lc *ListsController) RemoveFromMaturita(c *gin.Context) {
	lc.toggle(c, lc.lists.RemoveFromMaturita, "Removed from maturita list", "Book is not in your maturita list")
}

type toggleFunc func(ctx context.Context, username string, bookID int) (bool, error)

// toggle answers 200 when the list changed and 409 when it already had
// the requested state.
func (lc *ListsController) toggle(c *gin.Context, fn toggleFunc, changed, unchanged string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ok, err := fn(c.Request.Context(), auth.Username(c), id)
	if err != nil {
		respondServiceError(c, lc.log, err, "reading list")
		return
	}
	if !ok {
		respondError(c, http.StatusConflict, unchanged)
		return
	}
	respondSuccess(c, changed, gin.H{"book_id": id})
}
