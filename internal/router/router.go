package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"altiushub/internal/auth"
	"altiushub/internal/handler"
	"altiushub/internal/model"
)

// Register wires routes and middleware. Reads are public; mutations require
// an admin bearer token. Password changes additionally require a fresh token
// (issued by a password login, not a refresh).
func Register(
	e *echo.Echo,
	gate *auth.Gate,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	productHandler *handler.ProductHandler,
	seedHandler *handler.SeedHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Public reads
	api.GET("/users", userHandler.ListUsers)
	api.GET("/users/:id", userHandler.GetUser)
	api.GET("/books", bookHandler.ListBooks)
	api.GET("/books/:id", bookHandler.GetBook)
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/:id", productHandler.GetProduct)

	// Admin mutations: verified access token with role=admin. Refreshed
	// (non-fresh) tokens are accepted here.
	admin := api.Group("", gate.Authenticate(false), gate.RequireRole(model.RoleAdmin))
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)
	admin.POST("/books", bookHandler.CreateBook)
	admin.PUT("/books/:id", bookHandler.UpdateBook)
	admin.DELETE("/books/:id", bookHandler.DeleteBook)
	admin.POST("/products", productHandler.CreateProduct)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)
	admin.GET("/seed/catalog", seedHandler.SeedCatalog)

	// Credential changes demand a token from an actual password login.
	fresh := api.Group("", gate.Authenticate(true), gate.RequireRole(model.RoleAdmin))
	fresh.PUT("/users/:id/password", authHandler.ChangePassword)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
