package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"altiushub/internal/cache"
	apperrors "altiushub/internal/errors"
	"altiushub/internal/model"
	"altiushub/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// ProductUpdate carries the mutable fields of a product record.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
}

// ProductService handles product record operations.
type ProductService interface {
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, update ProductUpdate) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo  repository.ProductRepository
	cache *cache.Client
}

// NewProductService builds a ProductService with repository and cache.
func NewProductService(repo repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id.String())
}

func (s *productService) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", storeErr(err))
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", storeErr(err))
	}

	if payload, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, productCacheTTL)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", storeErr(err))
	}
	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, update ProductUpdate) (*model.Product, error) {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Price != nil {
		fields["price"] = *update.Price
	}
	if update.Quantity != nil {
		fields["quantity"] = *update.Quantity
	}

	if len(fields) > 0 {
		matched, err := s.repo.UpdateFields(ctx, id, fields)
		if err != nil {
			return nil, fmt.Errorf("update product: %w", storeErr(err))
		}
		if matched == 0 {
			return nil, apperrors.ErrProductNotFound
		}
		_ = s.cache.Delete(ctx, s.cacheKey(id))
	}

	return s.GetProduct(ctx, id)
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", storeErr(err))
	}
	if deleted == 0 {
		return apperrors.ErrProductNotFound
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
