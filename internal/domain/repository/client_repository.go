package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/pkg/pagination"
)

// ClientRepository defines the interface for client data operations.
// Every method is scoped to the owner carried by ctx.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	// Delete returns ErrInUse when receipts still reference the client
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ClientFilterParams) ([]entity.Client, int64, error)
	ListAll(ctx context.Context) ([]entity.Client, error)
}

// ClientFilterParams contains filtering parameters for client queries
type ClientFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}
