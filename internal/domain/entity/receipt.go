package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/internal/domain/pricing"
)

// Prescription holds the optional eyewear measurements of a receipt
type Prescription struct {
	RightEyeSph *decimal.Decimal `gorm:"type:numeric(6,2)" json:"right_eye_sph"`
	RightEyeCyl *decimal.Decimal `gorm:"type:numeric(6,2)" json:"right_eye_cyl"`
	RightEyeAxe *decimal.Decimal `gorm:"type:numeric(6,2)" json:"right_eye_axe"`
	LeftEyeSph  *decimal.Decimal `gorm:"type:numeric(6,2)" json:"left_eye_sph"`
	LeftEyeCyl  *decimal.Decimal `gorm:"type:numeric(6,2)" json:"left_eye_cyl"`
	LeftEyeAxe  *decimal.Decimal `gorm:"type:numeric(6,2)" json:"left_eye_axe"`
	AddValue    *decimal.Decimal `gorm:"type:numeric(6,2)" json:"add_value"`
}

// Receipt is a sale to a client with a frozen financial snapshot
type Receipt struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	UserID             uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID           uuid.UUID           `gorm:"type:uuid;not null;index" json:"client_id"`
	ReceiptNo          string              `gorm:"size:50;not null" json:"receipt_no"`
	Prescription       Prescription        `gorm:"embedded" json:"prescription"`
	Subtotal           decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"subtotal"`
	Tax                decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"tax"`
	DiscountPercentage *decimal.Decimal    `gorm:"type:numeric(14,4)" json:"discount_percentage"`
	DiscountAmount     *decimal.Decimal    `gorm:"type:numeric(14,4)" json:"discount_amount"`
	Total              decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"total"`
	AdvancePayment     decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"advance_payment"`
	Balance            decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"balance"`
	Cost               decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"cost"`
	DeliveryStatus     enum.DeliveryStatus `gorm:"type:varchar(20);not null;default:'Undelivered'" json:"delivery_status"`
	MontageStatus      enum.MontageStatus  `gorm:"type:varchar(20);not null;default:'UnOrdered'" json:"montage_status"`
	CreatedAt          time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`

	Client *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// PaymentStatus is derived on read from the stored balance
func (r *Receipt) PaymentStatus() enum.PaymentStatus {
	return pricing.DerivePaymentStatus(r.Balance, r.AdvancePayment)
}

// MarshalJSON adds the derived payment_status to the stored fields
func (r Receipt) MarshalJSON() ([]byte, error) {
	type plain Receipt
	return json.Marshal(struct {
		plain
		PaymentStatus enum.PaymentStatus `json:"payment_status"`
	}{plain(r), r.PaymentStatus()})
}

// Discount returns the stored discount amount or zero
func (r *Receipt) Discount() decimal.Decimal {
	if r.DiscountAmount == nil {
		return decimal.Zero
	}
	return *r.DiscountAmount
}

// ReceiptItem is one line of a receipt. Exactly one of ProductID and
// CustomItemName is set; Price is captured at sale time.
type ReceiptItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ProductID      *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	CustomItemName *string         `gorm:"size:255" json:"custom_item_name,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"price"`
	CreatedAt      time.Time       `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *ReceiptItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptItem model
func (ReceiptItem) TableName() string {
	return "receipt_items"
}

// DisplayName is the product name or the custom label
func (i *ReceiptItem) DisplayName() string {
	if i.Product != nil {
		return i.Product.Name
	}
	if i.CustomItemName != nil {
		return *i.CustomItemName
	}
	return ""
}

// LineTotal is price × quantity
func (i *ReceiptItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
