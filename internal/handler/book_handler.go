package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"altiushub/internal/model"
	"altiushub/internal/service"
)

// BookHandler bundles book record HTTP handlers.
type BookHandler struct {
	svc service.BookService
}

// NewBookHandler creates a handler layer.
func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

// CreateBookRequest represents a book creation request.
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Genre  string `json:"genre"`
	Year   int    `json:"year"`
}

// UpdateBookRequest represents a partial book update.
type UpdateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Genre  *string `json:"genre"`
	Year   *int    `json:"year"`
}

// CreateBook godoc
// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Param request body CreateBookRequest true "Book payload"
// @Success 201 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	var req CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book := &model.Book{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Year:   req.Year,
	}
	created, err := h.svc.CreateBook(c.Request().Context(), book)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetBook godoc
// @Summary Get book by id
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	book, err := h.svc.GetBook(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// ListBooks godoc
// @Summary List books
// @Tags books
// @Produce json
// @Success 200 {array} model.Book
// @Router /books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	books, err := h.svc.ListBooks(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, books)
}

// UpdateBook godoc
// @Summary Update book fields
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body UpdateBookRequest true "Fields to update"
// @Success 200 {object} model.Book
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	book, err := h.svc.UpdateBook(c.Request().Context(), id, service.BookUpdate{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Year:   req.Year,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary Delete book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBook(c.Request().Context(), id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "book deleted"})
}
