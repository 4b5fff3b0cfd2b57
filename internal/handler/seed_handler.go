package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"altiushub/internal/model"
	"altiushub/internal/service"
)

// SeedHandler handles catalog seeding for development environments.
type SeedHandler struct {
	books    service.BookService
	products service.ProductService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(books service.BookService, products service.ProductService) *SeedHandler {
	return &SeedHandler{books: books, products: products}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message  string `json:"message"`
	Books    int    `json:"books"`
	Products int    `json:"products"`
}

// SeedCatalog godoc
// @Summary Seed sample books and products
// @Tags seed
// @Produce json
// @Success 200 {object} SeedResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /seed/catalog [get]
func (h *SeedHandler) SeedCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	books := []model.Book{
		{Title: "The Go Programming Language", Author: "Donovan & Kernighan", Genre: "Programming", Year: 2015},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Genre: "Databases", Year: 2017},
		{Title: "The Pragmatic Programmer", Author: "Hunt & Thomas", Genre: "Programming", Year: 1999},
	}
	booksCreated := 0
	for i := range books {
		if _, err := h.books.CreateBook(ctx, &books[i]); err != nil {
			return domainError(err)
		}
		booksCreated++
	}

	products := []model.Product{
		{Name: "Notebook", Description: "A5 ruled notebook", Price: decimal.NewFromFloat(4.50), Quantity: 100},
		{Name: "Mechanical Keyboard", Description: "87-key tenkeyless", Price: decimal.NewFromFloat(89.99), Quantity: 25},
		{Name: "USB-C Cable", Description: "1m braided cable", Price: decimal.NewFromFloat(9.99), Quantity: 200},
	}
	productsCreated := 0
	for i := range products {
		if _, err := h.products.CreateProduct(ctx, &products[i]); err != nil {
			return domainError(err)
		}
		productsCreated++
	}

	return c.JSON(http.StatusOK, SeedResponse{
		Message:  "catalog seeded successfully",
		Books:    booksCreated,
		Products: productsCreated,
	})
}
