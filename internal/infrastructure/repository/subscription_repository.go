package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/enum"
	domainRepo "github.com/sangkips/optica-api/internal/domain/repository"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	err := r.db.WithContext(ctx).Omit("User").Create(sub).Error
	if isUniqueViolation(err) {
		return domainRepo.ErrDuplicate
	}
	return err
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	var sub entity.Subscription
	err := r.db.WithContext(ctx).Preload("User").First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	var sub entity.Subscription
	err := r.db.WithContext(ctx).First(&sub, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) List(ctx context.Context, params *domainRepo.SubscriptionFilterParams) ([]entity.Subscription, int64, error) {
	var subs []entity.Subscription
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Subscription{})

	if params.Search != "" {
		query = query.Where("user_id IN (?)",
			r.db.Model(&entity.User{}).Select("id").Where("email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
				"%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%"),
		)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("User").
		Order("end_date ASC").
		Find(&subs).Error

	return subs, total, err
}

func (r *subscriptionRepository) ListActiveEndingBefore(ctx context.Context, before time.Time) ([]entity.Subscription, error) {
	var subs []entity.Subscription
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ? AND end_date <= ?", enum.SubscriptionStatusActive, before).
		Order("end_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) MarkWarningSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Subscription{}).
		Where("id = ?", id).
		Update("expiry_warning_sent_at", at).Error
}

func (r *subscriptionRepository) UpdateWithAudit(ctx context.Context, sub *entity.Subscription, log *entity.SubscriptionAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Save(sub).Error; err != nil {
			return err
		}
		return tx.Create(log).Error
	})
}

func (r *subscriptionRepository) ListAuditLogs(ctx context.Context, params *domainRepo.AuditLogFilterParams) ([]entity.SubscriptionAuditLog, int64, error) {
	var logs []entity.SubscriptionAuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SubscriptionAuditLog{})
	if params.SubscriptionID != nil {
		query = query.Where("subscription_id = ?", *params.SubscriptionID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&logs).Error

	return logs, total, err
}
