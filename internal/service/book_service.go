package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"altiushub/internal/cache"
	apperrors "altiushub/internal/errors"
	"altiushub/internal/model"
	"altiushub/internal/repository"
)

const bookCacheTTL = 5 * time.Minute

// BookUpdate carries the mutable fields of a book record.
type BookUpdate struct {
	Title  *string
	Author *string
	Genre  *string
	Year   *int
}

// BookService handles book record operations. Reads go through the cache;
// mutations invalidate it.
type BookService interface {
	CreateBook(ctx context.Context, book *model.Book) (*model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, update BookUpdate) (*model.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

type bookService struct {
	repo  repository.BookRepository
	cache *cache.Client
}

// NewBookService builds a BookService with repository and cache.
func NewBookService(repo repository.BookRepository, cache *cache.Client) BookService {
	return &bookService{repo: repo, cache: cache}
}

func (s *bookService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("book:%s", id.String())
}

func (s *bookService) CreateBook(ctx context.Context, book *model.Book) (*model.Book, error) {
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", storeErr(err))
	}
	return book, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Book
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", storeErr(err))
	}

	if payload, err := json.Marshal(book); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, bookCacheTTL)
	}

	return book, nil
}

func (s *bookService) ListBooks(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", storeErr(err))
	}
	return books, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, update BookUpdate) (*model.Book, error) {
	fields := map[string]interface{}{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Author != nil {
		fields["author"] = *update.Author
	}
	if update.Genre != nil {
		fields["genre"] = *update.Genre
	}
	if update.Year != nil {
		fields["year"] = *update.Year
	}

	if len(fields) > 0 {
		matched, err := s.repo.UpdateFields(ctx, id, fields)
		if err != nil {
			return nil, fmt.Errorf("update book: %w", storeErr(err))
		}
		if matched == 0 {
			return nil, apperrors.ErrBookNotFound
		}
		_ = s.cache.Delete(ctx, s.cacheKey(id))
	}

	return s.GetBook(ctx, id)
}

func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", storeErr(err))
	}
	if deleted == 0 {
		return apperrors.ErrBookNotFound
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
