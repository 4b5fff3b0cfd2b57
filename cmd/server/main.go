package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "altiushub/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"altiushub/internal/auth"
	"altiushub/internal/cache"
	"altiushub/internal/config"
	"altiushub/internal/db"
	"altiushub/internal/handler"
	"altiushub/internal/model"
	"altiushub/internal/repository"
	"altiushub/internal/router"
	"altiushub/internal/service"
)

// @title Hub API
// @version 1.0
// @description CRUD backend for users, books, and products with JWT authentication and admin-gated mutations.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.User{},
			&model.Book{},
			&model.Product{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Book{},
		&model.Product{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("redis unreachable, serving without cache: %v", err)
	}
	cancel()

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	bookRepo := repository.NewBookRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	gate := auth.NewGate(jwtService)

	// Services
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo)
	bookService := service.NewBookService(bookRepo, cacheClient)
	productService := service.NewProductService(productRepo, cacheClient)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	bookHandler := handler.NewBookHandler(bookService)
	productHandler := handler.NewProductHandler(productService)
	seedHandler := handler.NewSeedHandler(bookService, productService)

	router.Register(
		e,
		gate,
		authHandler,
		userHandler,
		bookHandler,
		productHandler,
		seedHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
