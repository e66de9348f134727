package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/optica-api/internal/domain/entity"
)

// ReceiptItemRequest is one line; either product_id or custom_item_name
type ReceiptItemRequest struct {
	ProductID      *uuid.UUID      `json:"product_id"`
	CustomItemName *string         `json:"custom_item_name"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
}

// DiscountRequest selects a percentage or fixed discount
type DiscountRequest struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// CreateReceiptRequest represents a receipt creation request
type CreateReceiptRequest struct {
	ClientID       uuid.UUID            `json:"client_id" binding:"required"`
	Items          []ReceiptItemRequest `json:"items"`
	Discount       *DiscountRequest     `json:"discount"`
	Tax            decimal.Decimal      `json:"tax"`
	AdvancePayment decimal.Decimal      `json:"advance_payment"`
	Cost           decimal.Decimal      `json:"cost"`
	Prescription   entity.Prescription  `json:"prescription"`
}

// UpdateReceiptRequest carries the editable receipt fields
type UpdateReceiptRequest struct {
	AdvancePayment *decimal.Decimal     `json:"advance_payment"`
	Cost           *decimal.Decimal     `json:"cost"`
	CreatedAt      *time.Time           `json:"created_at"`
	Prescription   *entity.Prescription `json:"prescription"`
}

// MontageStatusRequest sets the montage stage by name
type MontageStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReceiptFilterRequest represents the receipt list query
type ReceiptFilterRequest struct {
	Search         string `form:"search"`
	ClientID       string `form:"client_id"`
	DeliveryStatus string `form:"delivery_status"`
	MontageStatus  string `form:"montage_status"`
	StartDate      string `form:"start_date"`
	EndDate        string `form:"end_date"`
	Page           int    `form:"page"`
	PerPage        int    `form:"per_page"`
}
