package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mlibrary/internal/pkg/response"
	"github.com/xxxsen/mlibrary/internal/service"
)

type BookHandler struct {
	books *service.BookService
}

func NewBookHandler(books *service.BookService) *BookHandler {
	return &BookHandler{books: books}
}

type isbnRequest struct {
	ISBN string `json:"isbn"`
}

func bindISBN(c *gin.Context) (string, bool) {
	var req isbnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return "", false
	}
	isbn := strings.TrimSpace(req.ISBN)
	if isbn == "" {
		badRequest(c, "isbn required")
		return "", false
	}
	return isbn, true
}

func (h *BookHandler) Lookup(c *gin.Context) {
	isbn, ok := bindISBN(c)
	if !ok {
		return
	}
	rec, err := h.books.Lookup(c.Request.Context(), isbn)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, rec)
}

func (h *BookHandler) Ingest(c *gin.Context) {
	isbn, ok := bindISBN(c)
	if !ok {
		return
	}
	book, created, err := h.books.Ingest(c.Request.Context(), isbn)
	if err != nil {
		handleError(c, err)
		return
	}
	if created {
		response.Created(c, book)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) Enrich(c *gin.Context) {
	book, err := h.books.Enrich(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, book)
}
