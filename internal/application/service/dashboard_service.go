package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/repository"
	"github.com/sangkips/optica-api/internal/domain/revenue"
	"github.com/sangkips/optica-api/internal/infrastructure/cache"
)

const (
	topProductsLimit = 5
	monthlyPoints    = 6
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	receiptRepo repository.ReceiptRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
	ttl         time.Duration
	loc         *time.Location
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	receiptRepo repository.ReceiptRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	c cache.Cache,
	ttl time.Duration,
	loc *time.Location,
) *DashboardService {
	return &DashboardService{
		receiptRepo: receiptRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		cache:       c,
		ttl:         ttl,
		loc:         loc,
		now:         time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalRevenue       decimal.Decimal      `json:"total_revenue"`
	ActiveClients      int                  `json:"active_clients"`
	NewClients         int                  `json:"new_clients"`
	PeriodReceipts     int                  `json:"period_receipts"`
	TotalReceipts      int                  `json:"total_receipts"`
	ProductsCount      int64                `json:"products_count"`
	AvgSaleValue       decimal.Decimal      `json:"avg_sale_value"`
	TotalUnpaidBalance decimal.Decimal      `json:"total_unpaid_balance"`
	MonthlyRevenue     []revenue.MonthPoint `json:"monthly_revenue"`
	TopProducts        []ProductSales       `json:"top_products"`
	TimeRange          revenue.TimeRange    `json:"time_range"`
}

// ProductSales is one row of the top products table
type ProductSales struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StatsInput is the snapshot ComputeStats works on
type StatsInput struct {
	Range         revenue.TimeRange
	Now           time.Time
	Location      *time.Location
	Receipts      []entity.Receipt
	Clients       []entity.Client
	ProductsCount int64
}

// StatsBounds returns the inclusive window used for KPIs. RangeAll spans
// 2000-01-01 to January 1st of next year.
func StatsBounds(r revenue.TimeRange, now time.Time, loc *time.Location) (time.Time, time.Time) {
	if r == revenue.RangeAll {
		now = now.In(loc)
		return time.Date(2000, time.January, 1, 0, 0, 0, 0, loc),
			time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
	}
	return revenue.Bounds(r, now, loc)
}

// ComputeStats derives the dashboard KPIs from a data snapshot
func ComputeStats(in StatsInput) DashboardStats {
	start, end := StatsBounds(in.Range, in.Now, in.Location)
	within := func(t time.Time) bool {
		return !t.Before(start) && !t.After(end)
	}

	stats := DashboardStats{
		TotalRevenue:       decimal.Zero,
		AvgSaleValue:       decimal.Zero,
		TotalUnpaidBalance: decimal.Zero,
		ActiveClients:      len(in.Clients),
		TotalReceipts:      len(in.Receipts),
		ProductsCount:      in.ProductsCount,
		TimeRange:          in.Range,
	}

	for _, c := range in.Clients {
		if within(c.CreatedAt) {
			stats.NewClients++
		}
	}

	records := make([]revenue.Record, 0, len(in.Receipts))
	for _, r := range in.Receipts {
		records = append(records, revenue.Record{CreatedAt: r.CreatedAt, Total: r.Total, Cost: r.Cost})
		if !within(r.CreatedAt) {
			continue
		}
		stats.PeriodReceipts++
		stats.TotalRevenue = stats.TotalRevenue.Add(r.Total.Sub(r.Cost))
		stats.TotalUnpaidBalance = stats.TotalUnpaidBalance.Add(r.Balance)
	}

	if stats.PeriodReceipts > 0 {
		stats.AvgSaleValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.PeriodReceipts)))
	}

	stats.MonthlyRevenue = revenue.LastMonths(records, monthlyPoints, in.Now, in.Location)
	stats.TopProducts = TopProducts(in.Receipts, topProductsLimit)
	return stats
}

// TopProducts groups product-linked items by product name and returns the
// best sellers by revenue. Equal revenues keep first-appearance order.
func TopProducts(receipts []entity.Receipt, limit int) []ProductSales {
	index := make(map[string]int)
	sales := []ProductSales{}

	for _, r := range receipts {
		for _, item := range r.Items {
			if item.ProductID == nil {
				continue
			}
			name := "Unknown"
			if item.Product != nil {
				name = item.Product.Name
			}

			i, ok := index[name]
			if !ok {
				i = len(sales)
				index[name] = i
				sales = append(sales, ProductSales{Name: name, Revenue: decimal.Zero})
			}
			sales[i].Count += item.Quantity
			sales[i].Revenue = sales[i].Revenue.Add(item.LineTotal())
		}
	}

	sort.SliceStable(sales, func(a, b int) bool {
		return sales[a].Revenue.GreaterThan(sales[b].Revenue)
	})
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales
}

const dayKey = "2006-01-02"

// GetStats returns the KPIs for r, served from cache when possible
func (s *DashboardService) GetStats(ctx context.Context, r revenue.TimeRange) (*DashboardStats, error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%sstats:%s:%s", dashboardPrefix(ownerID), r, s.now().In(s.loc).Format(dayKey))
	var stats DashboardStats
	if s.cached(ctx, key, &stats) {
		return &stats, nil
	}

	receipts, err := s.receiptRepo.ListAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load receipts: %w", err)
	}
	clients, err := s.clientRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	stats = ComputeStats(StatsInput{
		Range:         r,
		Now:           s.now(),
		Location:      s.loc,
		Receipts:      receipts,
		Clients:       clients,
		ProductsCount: products,
	})

	s.store(ctx, key, stats)
	return &stats, nil
}

// GetRevenueChart returns the zero-filled revenue series for r
func (s *DashboardService) GetRevenueChart(ctx context.Context, r revenue.TimeRange) ([]revenue.Bucket, error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start, end := revenue.Bounds(r, now, s.loc)
	key := fmt.Sprintf("%schart:%s:%s:%s", dashboardPrefix(ownerID), r,
		start.In(s.loc).Format(dayKey), end.In(s.loc).Format(dayKey))
	var buckets []revenue.Bucket
	if s.cached(ctx, key, &buckets) {
		return buckets, nil
	}

	var receipts []entity.Receipt
	if r.Filter() {
		receipts, err = s.receiptRepo.ListCreatedBetween(ctx, start, end)
	} else {
		receipts, err = s.receiptRepo.ListAll(ctx, false)
	}
	if err != nil {
		return nil, fmt.Errorf("load receipts: %w", err)
	}

	records := make([]revenue.Record, len(receipts))
	for i, rec := range receipts {
		records[i] = revenue.Record{CreatedAt: rec.CreatedAt, Total: rec.Total, Cost: rec.Cost}
	}

	buckets = revenue.Aggregate(records, r, now, s.loc)
	s.store(ctx, key, buckets)
	return buckets, nil
}

func (s *DashboardService) cached(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Dashboard cache read failed")
		return false
	}
	return found
}

func (s *DashboardService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Dashboard cache write failed")
	}
}
