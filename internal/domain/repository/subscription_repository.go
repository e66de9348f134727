package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/pkg/pagination"
)

// SubscriptionRepository defines the interface for subscription data
// operations. It is not owner-scoped.
type SubscriptionRepository interface {
	// Create returns ErrDuplicate when the user already has a subscription
	Create(ctx context.Context, sub *entity.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error)
	List(ctx context.Context, params *SubscriptionFilterParams) ([]entity.Subscription, int64, error)
	// ListActiveEndingBefore returns active subscriptions with their users
	ListActiveEndingBefore(ctx context.Context, before time.Time) ([]entity.Subscription, error)
	MarkWarningSent(ctx context.Context, id uuid.UUID, at time.Time) error
	// UpdateWithAudit saves sub and appends log in one transaction
	UpdateWithAudit(ctx context.Context, sub *entity.Subscription, log *entity.SubscriptionAuditLog) error
	ListAuditLogs(ctx context.Context, params *AuditLogFilterParams) ([]entity.SubscriptionAuditLog, int64, error)
}

// SubscriptionFilterParams contains filtering parameters for subscription queries
type SubscriptionFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.SubscriptionStatus
}

// AuditLogFilterParams contains filtering parameters for audit log queries
type AuditLogFilterParams struct {
	Pagination     *pagination.PaginationParams
	SubscriptionID *uuid.UUID
}
