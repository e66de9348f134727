package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/pkg/pagination"
)

// ReceiptRepository defines the interface for receipt data operations.
// Every method is scoped to the owner carried by ctx.
type ReceiptRepository interface {
	// Create inserts the receipt row only; items are stored separately
	Create(ctx context.Context, receipt *entity.Receipt) error
	// GetByID loads the receipt with its client and items
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	Update(ctx context.Context, receipt *entity.Receipt) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ReceiptFilterParams) ([]entity.Receipt, int64, error)
	// ListAll returns every receipt, with items and their products when withItems is set
	ListAll(ctx context.Context, withItems bool) ([]entity.Receipt, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Receipt, error)
}

// ReceiptFilterParams contains filtering parameters for receipt queries
type ReceiptFilterParams struct {
	Pagination     *pagination.PaginationParams
	Search         string
	ClientID       *uuid.UUID
	DeliveryStatus *enum.DeliveryStatus
	MontageStatus  *enum.MontageStatus
	StartDate      *time.Time
	EndDate        *time.Time
}

// ReceiptItemRepository defines the interface for receipt item data operations
type ReceiptItemRepository interface {
	Create(ctx context.Context, item *entity.ReceiptItem) error
	GetByReceiptID(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptItem, error)
	DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) error
}
