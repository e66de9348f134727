package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/internal/infrastructure/cache"
	"github.com/sangkips/optica-api/pkg/apperror"
	"github.com/sangkips/optica-api/pkg/pagination"
)

// ProductService handles catalog operations
type ProductService struct {
	productRepo repository.ProductRepository
	cache       cache.Cache
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, c cache.Cache) *ProductService {
	return &ProductService{productRepo: productRepo, cache: c}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
}

// UpdateProductInput carries optional product changes
type UpdateProductInput struct {
	Name  *string
	Price *decimal.Decimal
}

func validateProduct(name string, price decimal.Decimal) error {
	var fields []apperror.FieldError
	if strings.TrimSpace(name) == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if price.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "price", Message: "Price must not be negative"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// CreateProduct appends a product at the end of the catalog
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateProduct(input.Name, input.Price); err != nil {
		return nil, err
	}

	last, err := s.productRepo.MaxPosition(ctx)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		UserID:   ownerID,
		Name:     strings.TrimSpace(input.Name),
		Price:    input.Price,
		Position: last + 1,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, s.cache, ownerID)
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts returns a page of the catalog in position order
func (s *ProductService) ListProducts(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, &repository.ProductFilterParams{
		Pagination: params,
		Search:     strings.TrimSpace(search),
	})
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(products, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ListAllProducts returns the whole catalog in position order
func (s *ProductService) ListAllProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.ListOrdered(ctx)
}

// UpdateProduct updates a product. Existing receipts keep their captured prices.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if err := validateProduct(product.Name, product.Price); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, s.cache, product.UserID)
	return product, nil
}

// DeleteProduct deletes a product. Receipt items referencing it are detached.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	invalidateDashboard(ctx, s.cache, product.UserID)
	return nil
}

// Reorder moves the product at index from to index to and persists
// positions 1..N. On failure the stored order is unchanged.
func (s *ProductService) Reorder(ctx context.Context, from, to int) ([]entity.Product, error) {
	products, err := s.productRepo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if from < 0 || from >= len(products) || to < 0 || to >= len(products) {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Reorder indices must be between 0 and %d", len(products)-1))
	}

	moved := Move(products, from, to)
	ids := make([]uuid.UUID, len(moved))
	for i := range moved {
		ids[i] = moved[i].ID
	}

	if err := s.productRepo.UpdatePositions(ctx, ids); err != nil {
		return nil, fmt.Errorf("reorder products: %w", err)
	}

	for i := range moved {
		moved[i].Position = i + 1
	}
	return moved, nil
}

// Move returns a copy of items with the element at from moved to index to
func Move[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)

	moved := items[from]
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved
	return out
}
