package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/optica-api/internal/domain/enum"
)

// Subscription gates a shop owner's access to the API
type Subscription struct {
	ID                  uuid.UUID               `gorm:"type:uuid;primary_key" json:"id"`
	UserID              uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Status              enum.SubscriptionStatus `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	Type                enum.SubscriptionType   `gorm:"type:varchar(20);not null;default:'Trial'" json:"subscription_type"`
	StartDate           time.Time               `gorm:"not null" json:"start_date"`
	EndDate             time.Time               `gorm:"not null;index" json:"end_date"`
	TrialUsed           bool                    `gorm:"not null;default:false" json:"trial_used"`
	ExpiryWarningSentAt *time.Time              `json:"expiry_warning_sent_at,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate generates a UUID before creating a new subscription
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Subscription model
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsExpired reports whether the end date has passed
func (s *Subscription) IsExpired(now time.Time) bool {
	return !now.Before(s.EndDate)
}

// Allows reports whether the owner may use the API at now
func (s *Subscription) Allows(now time.Time) bool {
	return s.Status == enum.SubscriptionStatusActive && !s.IsExpired(now)
}

// Remaining splits the time left into whole days and leftover hours
func (s *Subscription) Remaining(now time.Time) (days, hours int) {
	left := s.EndDate.Sub(now)
	if left <= 0 {
		return 0, 0
	}
	totalHours := int(left / time.Hour)
	return totalHours / 24, totalHours % 24
}

// SubscriptionAuditLog records an admin change to a subscription
type SubscriptionAuditLog struct {
	ID             uuid.UUID                `gorm:"type:uuid;primary_key" json:"id"`
	SubscriptionID uuid.UUID                `gorm:"type:uuid;not null;index" json:"subscription_id"`
	Action         string                   `gorm:"size:50;not null" json:"action"`
	PreviousStatus *enum.SubscriptionStatus `gorm:"type:varchar(20)" json:"previous_status,omitempty"`
	NewStatus      *enum.SubscriptionStatus `gorm:"type:varchar(20)" json:"new_status,omitempty"`
	PreviousType   *enum.SubscriptionType   `gorm:"type:varchar(20)" json:"previous_type,omitempty"`
	NewType        *enum.SubscriptionType   `gorm:"type:varchar(20)" json:"new_type,omitempty"`
	PreviousEnd    *time.Time               `json:"previous_end_date,omitempty"`
	NewEnd         *time.Time               `json:"new_end_date,omitempty"`
	ModifiedBy     uuid.UUID                `gorm:"type:uuid;not null" json:"modified_by"`
	Notes          *string                  `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new audit entry
func (l *SubscriptionAuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SubscriptionAuditLog model
func (SubscriptionAuditLog) TableName() string {
	return "subscription_audit_logs"
}
