package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/optica-api/internal/domain/entity"
	domainRepo "github.com/sangkips/optica-api/internal/domain/repository"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return r.db.WithContext(ctx).Omit("Client", "Items").Create(receipt).Error
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	return r.db.WithContext(ctx).Omit("Client", "Items").Save(receipt).Error
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Delete(&entity.Receipt{}, "id = ?", id).Error
}

func (r *receiptRepository) List(ctx context.Context, params *domainRepo.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	var receipts []entity.Receipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receipt{}).Scopes(OwnerScope(ctx))

	if params.Search != "" {
		query = query.Where("receipt_no ILIKE ? OR client_id IN (?)",
			"%"+params.Search+"%",
			r.db.Model(&entity.Client{}).Select("id").Where("name ILIKE ? OR phone ILIKE ?",
				"%"+params.Search+"%", "%"+params.Search+"%"),
		)
	}

	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}

	if params.DeliveryStatus != nil {
		query = query.Where("delivery_status = ?", *params.DeliveryStatus)
	}

	if params.MontageStatus != nil {
		query = query.Where("montage_status = ?", *params.MontageStatus)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Client").
		Order("created_at DESC").
		Find(&receipts).Error

	return receipts, total, err
}

func (r *receiptRepository) ListAll(ctx context.Context, withItems bool) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	query := r.db.WithContext(ctx).Scopes(OwnerScope(ctx))
	if withItems {
		query = query.
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
			Preload("Items.Product")
	}
	err := query.Order("created_at ASC").Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at ASC").
		Find(&receipts).Error
	return receipts, err
}

type receiptItemRepository struct {
	db *gorm.DB
}

// NewReceiptItemRepository creates a new receipt item repository
func NewReceiptItemRepository(db *gorm.DB) domainRepo.ReceiptItemRepository {
	return &receiptItemRepository{db: db}
}

func (r *receiptItemRepository) Create(ctx context.Context, item *entity.ReceiptItem) error {
	return r.db.WithContext(ctx).Omit("Product").Create(item).Error
}

func (r *receiptItemRepository) GetByReceiptID(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptItem, error) {
	var items []entity.ReceiptItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *receiptItemRepository) DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Delete(&entity.ReceiptItem{}).Error
}
