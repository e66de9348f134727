package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	infraRepo "github.com/sangkips/optica-api/internal/infrastructure/repository"
	"github.com/sangkips/optica-api/pkg/email"
)

var testOwner = uuid.MustParse("6f1c1d2e-1111-4a4a-9b9b-000000000001")

func ownerCtx() context.Context {
	return infraRepo.WithOwner(context.Background(), testOwner)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, r *entity.Receipt) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) Update(ctx context.Context, r *entity.Receipt) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReceiptRepository) List(ctx context.Context, params *repository.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]entity.Receipt), args.Get(1).(int64), args.Error(2)
}

func (m *MockReceiptRepository) ListAll(ctx context.Context, withItems bool) ([]entity.Receipt, error) {
	args := m.Called(ctx, withItems)
	return args.Get(0).([]entity.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]entity.Receipt, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]entity.Receipt), args.Error(1)
}

type MockReceiptItemRepository struct {
	mock.Mock
}

func (m *MockReceiptItemRepository) Create(ctx context.Context, item *entity.ReceiptItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockReceiptItemRepository) GetByReceiptID(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptItem, error) {
	args := m.Called(ctx, receiptID)
	return args.Get(0).([]entity.ReceiptItem), args.Error(1)
}

func (m *MockReceiptItemRepository) DeleteByReceiptID(ctx context.Context, receiptID uuid.UUID) error {
	args := m.Called(ctx, receiptID)
	return args.Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *entity.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, c *entity.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) List(ctx context.Context, params *repository.ClientFilterParams) ([]entity.Client, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]entity.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) ListAll(ctx context.Context) ([]entity.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entity.Client), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *entity.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *entity.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]entity.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ListOrdered(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) MaxPosition(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) UpdatePositions(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) List(ctx context.Context, params *repository.SubscriptionFilterParams) ([]entity.Subscription, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]entity.Subscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionRepository) ListActiveEndingBefore(ctx context.Context, before time.Time) ([]entity.Subscription, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) MarkWarningSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) UpdateWithAudit(ctx context.Context, sub *entity.Subscription, log *entity.SubscriptionAuditLog) error {
	args := m.Called(ctx, sub, log)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListAuditLogs(ctx context.Context, params *repository.AuditLogFilterParams) ([]entity.SubscriptionAuditLog, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]entity.SubscriptionAuditLog), args.Get(1).(int64), args.Error(2)
}

// published records events instead of pushing them to sockets
type published struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	UserID uuid.UUID
	Type   string
}

func (p *published) Publish(userID uuid.UUID, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType})
}

func (p *published) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// memCache is an in-process cache.Cache
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, prefix)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockNotifier) SendSubscriptionExpiring(n email.ExpiryNotice) error {
	return m.Called(n).Error(0)
}
