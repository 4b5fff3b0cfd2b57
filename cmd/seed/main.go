package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"altiushub/internal/auth"
	"altiushub/internal/config"
	"altiushub/internal/db"
	"altiushub/internal/model"
	"altiushub/internal/repository"
)

func main() {
	adminUser := flag.String("admin-user", "admin", "username for the seeded admin account")
	adminPass := flag.String("admin-pass", "", "password for the seeded admin account (required)")
	flag.Parse()

	if *adminPass == "" {
		log.Fatal("-admin-pass is required")
	}

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Book{}, &model.Product{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	if err := seedAdmin(ctx, repository.NewUserRepository(gormDB), *adminUser, *adminPass); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	books, err := seedBooks(ctx, repository.NewBookRepository(gormDB))
	if err != nil {
		log.Fatalf("Failed to seed books: %v", err)
	}

	products, err := seedProducts(ctx, repository.NewProductRepository(gormDB))
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seed completed successfully!")
	log.Printf("  - Books created: %d", books)
	log.Printf("  - Products created: %d", products)
}

// seedAdmin creates the admin account if it does not exist yet.
func seedAdmin(ctx context.Context, users repository.UserRepository, username, password string) error {
	existing, err := users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		log.Printf("Admin user %q already exists, skipping", username)
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if err := users.Create(ctx, &model.User{
		Username:     username,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}); err != nil {
		return err
	}
	log.Printf("Admin user %q created", username)
	return nil
}

func seedBooks(ctx context.Context, books repository.BookRepository) (int, error) {
	fixtures := []model.Book{
		{Title: "The Go Programming Language", Author: "Donovan & Kernighan", Genre: "Programming", Year: 2015},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Genre: "Databases", Year: 2017},
		{Title: "The Pragmatic Programmer", Author: "Hunt & Thomas", Genre: "Programming", Year: 1999},
	}

	created := 0
	for i := range fixtures {
		if err := books.Create(ctx, &fixtures[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func seedProducts(ctx context.Context, products repository.ProductRepository) (int, error) {
	fixtures := []model.Product{
		{Name: "Notebook", Description: "A5 ruled notebook", Price: decimal.NewFromFloat(4.50), Quantity: 100},
		{Name: "Mechanical Keyboard", Description: "87-key tenkeyless", Price: decimal.NewFromFloat(89.99), Quantity: 25},
		{Name: "USB-C Cable", Description: "1m braided cable", Price: decimal.NewFromFloat(9.99), Quantity: 200},
	}

	created := 0
	for i := range fixtures {
		if err := products.Create(ctx, &fixtures[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
