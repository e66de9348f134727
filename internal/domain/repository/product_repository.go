package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations.
// Every method is scoped to the owner carried by ctx.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// ListOrdered returns the whole catalog ordered by position
	ListOrdered(ctx context.Context) ([]entity.Product, error)
	MaxPosition(ctx context.Context) (int, error)
	Count(ctx context.Context) (int64, error)
	// UpdatePositions assigns positions 1..N following ids, atomically
	UpdatePositions(ctx context.Context, ids []uuid.UUID) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}
