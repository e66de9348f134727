package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name  string          `json:"name" binding:"required,max=255"`
	Price decimal.Decimal `json:"price"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name  *string          `json:"name" binding:"omitempty,max=255"`
	Price *decimal.Decimal `json:"price"`
}

// ReorderProductsRequest moves the product at From to index To
type ReorderProductsRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}
