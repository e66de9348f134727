package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/internal/domain/pricing"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/internal/infrastructure/cache"
	"github.com/sangkips/optica-api/internal/infrastructure/realtime"
	"github.com/sangkips/optica-api/pkg/apperror"
	"github.com/sangkips/optica-api/pkg/pagination"
	"github.com/sangkips/optica-api/pkg/utils"
)

// ReceiptService manages the receipt lifecycle
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	itemRepo    repository.ReceiptItemRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
	events      realtime.Publisher
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	receiptRepo repository.ReceiptRepository,
	itemRepo repository.ReceiptItemRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	c cache.Cache,
	events realtime.Publisher,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		itemRepo:    itemRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		cache:       c,
		events:      events,
	}
}

// ReceiptItemInput is one requested line
type ReceiptItemInput struct {
	ProductID      *uuid.UUID
	CustomItemName *string
	Quantity       int
	Price          decimal.Decimal
}

// CreateReceiptInput represents the create receipt input
type CreateReceiptInput struct {
	ClientID       uuid.UUID
	Items          []ReceiptItemInput
	Discount       *pricing.Discount
	TaxInput       decimal.Decimal
	AdvancePayment decimal.Decimal
	Cost           decimal.Decimal
	Prescription   entity.Prescription
}

// CreateReceiptResult carries the stored receipt and any item that failed to save
type CreateReceiptResult struct {
	Receipt  *entity.Receipt `json:"receipt"`
	Warnings []string        `json:"warnings,omitempty"`
}

// UpdateReceiptInput carries the editable fields; nil leaves a field unchanged
type UpdateReceiptInput struct {
	AdvancePayment *decimal.Decimal
	Cost           *decimal.Decimal
	CreatedAt      *time.Time
	Prescription   *entity.Prescription
}

// ListReceiptsInput filters the receipt list
type ListReceiptsInput struct {
	Search         string
	ClientID       *uuid.UUID
	DeliveryStatus *enum.DeliveryStatus
	MontageStatus  *enum.MontageStatus
	StartDate      *time.Time
	EndDate        *time.Time
}

const tooPrecise = "At most 4 decimal places are allowed"

// checkAmount rejects negative amounts and amounts finer than the stored scale
func checkAmount(field, label string, v decimal.Decimal) []apperror.FieldError {
	switch {
	case v.IsNegative():
		return []apperror.FieldError{{Field: field, Message: label + " must not be negative"}}
	case !pricing.FitsScale(v):
		return []apperror.FieldError{{Field: field, Message: tooPrecise}}
	}
	return nil
}

func (in *CreateReceiptInput) validate() error {
	var fields []apperror.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperror.FieldError{Field: field, Message: msg})
	}

	if in.ClientID == uuid.Nil {
		add("client_id", "Client is required")
	}
	if len(in.Items) == 0 {
		add("items", "At least one item is required")
	}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		hasProduct := item.ProductID != nil && *item.ProductID != uuid.Nil
		hasCustom := item.CustomItemName != nil && strings.TrimSpace(*item.CustomItemName) != ""
		if hasProduct == hasCustom {
			add(prefix, "Item needs exactly one of product_id or custom_item_name")
		}
		if item.Quantity <= 0 {
			add(prefix+".quantity", "Quantity must be greater than zero")
		}
		fields = append(fields, checkAmount(prefix+".price", "Price", item.Price)...)
	}
	if in.Discount != nil {
		if !in.Discount.Type.IsValid() {
			add("discount.type", "Discount type must be percentage or fixed")
		}
		fields = append(fields, checkAmount("discount.value", "Discount", in.Discount.Value)...)
	}
	fields = append(fields, checkAmount("tax", "Tax", in.TaxInput)...)
	fields = append(fields, checkAmount("advance_payment", "Advance payment", in.AdvancePayment)...)
	fields = append(fields, checkAmount("cost", "Cost", in.Cost)...)

	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// CreateReceipt validates, prices and stores a receipt, then its items one by one.
// A failed item is reported as a warning and does not roll the receipt back.
func (s *ReceiptService) CreateReceipt(ctx context.Context, input *CreateReceiptInput) (*CreateReceiptResult, error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	lines := make([]pricing.Item, len(input.Items))
	for i, item := range input.Items {
		lines[i] = pricing.Item{Price: item.Price, Quantity: item.Quantity}
	}
	fin := pricing.Compute(pricing.Input{
		Items:          lines,
		Discount:       input.Discount,
		TaxInput:       input.TaxInput,
		AdvancePayment: input.AdvancePayment,
	})

	receipt := &entity.Receipt{
		UserID:         ownerID,
		ClientID:       client.ID,
		ReceiptNo:      utils.GenerateReceiptNo(),
		Prescription:   input.Prescription,
		Subtotal:       fin.Subtotal,
		Tax:            fin.Tax,
		Total:          fin.Total,
		AdvancePayment: fin.AdvancePayment,
		Balance:        fin.Balance,
		Cost:           input.Cost,
		DeliveryStatus: enum.DeliveryStatusUndelivered,
		MontageStatus:  enum.MontageStatusUnOrdered,
	}
	if input.Discount != nil {
		pct, amount := fin.DiscountPercentage, fin.Discount
		receipt.DiscountPercentage = &pct
		receipt.DiscountAmount = &amount
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}

	result := &CreateReceiptResult{Receipt: receipt}
	for i, in := range input.Items {
		item := entity.ReceiptItem{
			ReceiptID: receipt.ID,
			Quantity:  in.Quantity,
			Price:     in.Price,
		}
		if in.ProductID != nil && *in.ProductID != uuid.Nil {
			item.ProductID = in.ProductID
		} else {
			name := strings.TrimSpace(*in.CustomItemName)
			item.CustomItemName = &name
		}

		if err := s.itemRepo.Create(ctx, &item); err != nil {
			log.Warn().Err(err).
				Str("receipt_id", receipt.ID.String()).
				Int("item", i).
				Msg("Failed to save receipt item")
			result.Warnings = append(result.Warnings, fmt.Sprintf("item %d could not be saved", i+1))
			continue
		}
		receipt.Items = append(receipt.Items, item)
	}
	receipt.Client = client
	s.attachProducts(ctx, receipt.Items)

	log.Info().
		Str("receipt_id", receipt.ID.String()).
		Str("receipt_no", receipt.ReceiptNo).
		Str("total", receipt.Total.String()).
		Msg("Receipt created")

	s.changed(ctx, ownerID, realtime.EventReceiptCreated, receipt)
	return result, nil
}

// GetReceipt retrieves a receipt with its client and items
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// ListReceipts lists receipts newest first
func (s *ReceiptService) ListReceipts(ctx context.Context, params *pagination.PaginationParams, filter ListReceiptsInput) (*pagination.PaginatedResult[entity.Receipt], error) {
	receipts, total, err := s.receiptRepo.List(ctx, &repository.ReceiptFilterParams{
		Pagination:     params,
		Search:         strings.TrimSpace(filter.Search),
		ClientID:       filter.ClientID,
		DeliveryStatus: filter.DeliveryStatus,
		MontageStatus:  filter.MontageStatus,
		StartDate:      filter.StartDate,
		EndDate:        filter.EndDate,
	})
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(receipts, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// ListClientReceipts lists the receipts of one client
func (s *ReceiptService) ListClientReceipts(ctx context.Context, clientID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Receipt], error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return s.ListReceipts(ctx, params, ListReceiptsInput{ClientID: &clientID})
}

// UpdateReceipt edits advance payment, prescription, cost and date.
// Total is never recomputed; balance follows the new advance.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, id uuid.UUID, input *UpdateReceiptInput) (*entity.Receipt, error) {
	var fields []apperror.FieldError
	if input.AdvancePayment != nil {
		fields = append(fields, checkAmount("advance_payment", "Advance payment", *input.AdvancePayment)...)
	}
	if input.Cost != nil {
		fields = append(fields, checkAmount("cost", "Cost", *input.Cost)...)
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidationError(fields)
	}

	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.AdvancePayment != nil {
		receipt.AdvancePayment = *input.AdvancePayment
		receipt.Balance = pricing.Balance(receipt.Total, receipt.AdvancePayment)
	}
	if input.Cost != nil {
		receipt.Cost = *input.Cost
	}
	if input.CreatedAt != nil {
		receipt.CreatedAt = *input.CreatedAt
	}
	if input.Prescription != nil {
		receipt.Prescription = *input.Prescription
	}

	return s.save(ctx, receipt)
}

// MarkPaid settles the remaining balance
func (s *ReceiptService) MarkPaid(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt.AdvancePayment = receipt.Total
	receipt.Balance = decimal.Zero
	return s.save(ctx, receipt)
}

// ToggleDelivery flips Undelivered and Delivered
func (s *ReceiptService) ToggleDelivery(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt.DeliveryStatus = receipt.DeliveryStatus.Toggle()
	return s.save(ctx, receipt)
}

// SetMontageStatus sets any valid montage status
func (s *ReceiptService) SetMontageStatus(ctx context.Context, id uuid.UUID, status enum.MontageStatus) (*entity.Receipt, error) {
	if !status.IsValid() {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "montage_status", Message: "Invalid montage status"},
		})
	}

	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt.MontageStatus = status
	return s.save(ctx, receipt)
}

// DeleteReceipt removes the items, then the receipt
func (s *ReceiptService) DeleteReceipt(ctx context.Context, id uuid.UUID) error {
	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return err
	}

	if err := s.itemRepo.DeleteByReceiptID(ctx, id); err != nil {
		return fmt.Errorf("delete receipt items: %w", err)
	}
	if err := s.receiptRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}

	s.changed(ctx, receipt.UserID, realtime.EventReceiptDeleted, map[string]string{"id": id.String()})
	return nil
}

// attachProducts fills Product on product-linked items so names render
func (s *ReceiptService) attachProducts(ctx context.Context, items []entity.ReceiptItem) {
	var ids []uuid.UUID
	for _, item := range items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}
	if len(ids) == 0 {
		return
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load receipt item products")
		return
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		if items[i].ProductID != nil {
			items[i].Product = byID[*items[i].ProductID]
		}
	}
}

func (s *ReceiptService) save(ctx context.Context, receipt *entity.Receipt) (*entity.Receipt, error) {
	if err := s.receiptRepo.Update(ctx, receipt); err != nil {
		return nil, fmt.Errorf("update receipt: %w", err)
	}

	s.changed(ctx, receipt.UserID, realtime.EventReceiptUpdated, receipt)
	return receipt, nil
}

func (s *ReceiptService) changed(ctx context.Context, ownerID uuid.UUID, event string, data interface{}) {
	invalidateDashboard(ctx, s.cache, ownerID)
	if s.events != nil {
		s.events.Publish(ownerID, event, data)
	}
}
