package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/enum"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/pkg/apperror"
	"github.com/sangkips/optica-api/pkg/pagination"
)

const auditActionUpdate = "update"

// SubscriptionService manages trials, access checks and admin changes
type SubscriptionService struct {
	subRepo   repository.SubscriptionRepository
	trialDays int
	now       func() time.Time
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(subRepo repository.SubscriptionRepository, trialDays int) *SubscriptionService {
	if trialDays <= 0 {
		trialDays = 7
	}
	return &SubscriptionService{subRepo: subRepo, trialDays: trialDays, now: time.Now}
}

// SubscriptionView is what an owner sees about their own subscription
type SubscriptionView struct {
	EndDate        time.Time               `json:"end_date"`
	DaysRemaining  int                     `json:"days_remaining"`
	HoursRemaining int                     `json:"hours_remaining"`
	Status         enum.SubscriptionStatus `json:"status"`
	Type           enum.SubscriptionType   `json:"type"`
	Expired        bool                    `json:"expired"`
}

// UpdateSubscriptionInput carries admin changes; nil keeps the stored value
type UpdateSubscriptionInput struct {
	EndDate *time.Time
	Type    *enum.SubscriptionType
	Status  *enum.SubscriptionStatus
	Notes   *string
}

// EnsureTrial returns the user's subscription, starting a trial on first use.
// A concurrent insert for the same user reuses the row that won.
func (s *SubscriptionService) EnsureTrial(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		return sub, nil
	}

	now := s.now()
	sub = &entity.Subscription{
		UserID:    userID,
		Status:    enum.SubscriptionStatusActive,
		Type:      enum.SubscriptionTypeTrial,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, s.trialDays),
		TrialUsed: true,
	}

	err = s.subRepo.Create(ctx, sub)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, err := s.subRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("subscription for user %s vanished after duplicate insert", userID)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create trial: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Time("end_date", sub.EndDate).
		Msg("Trial subscription started")
	return sub, nil
}

// CheckAccess fails with ErrSubscriptionExpired unless the user may sign in
func (s *SubscriptionService) CheckAccess(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	sub, err := s.EnsureTrial(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Allows(s.now()) {
		return sub, apperror.ErrSubscriptionExpired
	}
	return sub, nil
}

// IsActive reports whether userID currently has access, without creating a trial
func (s *SubscriptionService) IsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.Allows(s.now()), nil
}

// GetStatus returns the remaining time on the user's subscription
func (s *SubscriptionService) GetStatus(ctx context.Context, userID uuid.UUID) (*SubscriptionView, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NewNotFoundError("Subscription")
	}
	return s.view(sub), nil
}

func (s *SubscriptionService) view(sub *entity.Subscription) *SubscriptionView {
	now := s.now()
	days, hours := sub.Remaining(now)
	return &SubscriptionView{
		EndDate:        sub.EndDate,
		DaysRemaining:  days,
		HoursRemaining: hours,
		Status:         sub.Status,
		Type:           sub.Type,
		Expired:        !sub.Allows(now),
	}
}

// ListSubscriptions lists every subscription with its user
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, params *pagination.PaginationParams, search string, status *enum.SubscriptionStatus) (*pagination.PaginatedResult[entity.Subscription], error) {
	subs, total, err := s.subRepo.List(ctx, &repository.SubscriptionFilterParams{
		Pagination: params,
		Search:     strings.TrimSpace(search),
		Status:     status,
	})
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(subs, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateSubscription applies an admin change and records it in the audit log
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, adminID, id uuid.UUID, input *UpdateSubscriptionInput) (*entity.Subscription, error) {
	var fields []apperror.FieldError
	if input.Type != nil && !input.Type.IsValid() {
		fields = append(fields, apperror.FieldError{Field: "subscription_type", Message: "Invalid subscription type"})
	}
	if input.Status != nil && !input.Status.IsValid() {
		fields = append(fields, apperror.FieldError{Field: "status", Message: "Invalid subscription status"})
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidationError(fields)
	}

	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NewNotFoundError("Subscription")
	}

	prevStatus, prevType, prevEnd := sub.Status, sub.Type, sub.EndDate
	entry := &entity.SubscriptionAuditLog{
		SubscriptionID: sub.ID,
		Action:         auditActionUpdate,
		PreviousStatus: &prevStatus,
		PreviousType:   &prevType,
		PreviousEnd:    &prevEnd,
		ModifiedBy:     adminID,
		Notes:          input.Notes,
	}

	if input.Status != nil {
		sub.Status = *input.Status
	}
	if input.Type != nil {
		sub.Type = *input.Type
	}
	if input.EndDate != nil {
		sub.EndDate = *input.EndDate
	}
	if sub.EndDate.After(s.now()) {
		sub.ExpiryWarningSentAt = nil
	}

	newStatus, newType, newEnd := sub.Status, sub.Type, sub.EndDate
	entry.NewStatus = &newStatus
	entry.NewType = &newType
	entry.NewEnd = &newEnd

	if err := s.subRepo.UpdateWithAudit(ctx, sub, entry); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	log.Info().
		Str("subscription_id", sub.ID.String()).
		Str("modified_by", adminID.String()).
		Str("status", sub.Status.String()).
		Str("type", sub.Type.String()).
		Time("end_date", sub.EndDate).
		Msg("Subscription updated")
	return sub, nil
}

// ListAuditLogs lists audit entries, optionally for one subscription
func (s *SubscriptionService) ListAuditLogs(ctx context.Context, params *pagination.PaginationParams, subscriptionID *uuid.UUID) (*pagination.PaginatedResult[entity.SubscriptionAuditLog], error) {
	logs, total, err := s.subRepo.ListAuditLogs(ctx, &repository.AuditLogFilterParams{
		Pagination:     params,
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(logs, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
