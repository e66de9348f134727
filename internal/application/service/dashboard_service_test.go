package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/internal/domain/revenue"
)

var (
	statsNow   = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	decimalCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
)

func productItem(p *entity.Product, qty int, price string) entity.ReceiptItem {
	return entity.ReceiptItem{ProductID: &p.ID, Product: p, Quantity: qty, Price: dec(price)}
}

func statsFixture() ([]entity.Receipt, []entity.Client) {
	frame := &entity.Product{ID: uuid.New(), Name: "Frame"}
	lens := &entity.Product{ID: uuid.New(), Name: "Lens"}

	receipts := []entity.Receipt{
		{
			CreatedAt: time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC),
			Total:     dec("1000"), Cost: dec("400"), Balance: dec("200"),
			Items: []entity.ReceiptItem{
				productItem(frame, 2, "300"),
				{CustomItemName: strPtr("Repair"), Quantity: 1, Price: dec("400")},
			},
		},
		{
			CreatedAt: time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC),
			Total:     dec("500"), Cost: dec("0"), Balance: dec("0"),
			Items: []entity.ReceiptItem{productItem(lens, 1, "600")},
		},
		{
			CreatedAt: time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC),
			Total:     dec("300"), Cost: dec("100"), Balance: dec("300"),
			Items: []entity.ReceiptItem{productItem(frame, 1, "300")},
		},
	}
	clients := []entity.Client{
		{Name: "A", CreatedAt: time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "B", CreatedAt: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)},
		{Name: "C", CreatedAt: time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)},
	}
	return receipts, clients
}

func TestComputeStats_Month(t *testing.T) {
	receipts, clients := statsFixture()

	stats := ComputeStats(StatsInput{
		Range:         revenue.RangeMonth,
		Now:           statsNow,
		Location:      time.UTC,
		Receipts:      receipts,
		Clients:       clients,
		ProductsCount: 12,
	})

	want := DashboardStats{
		TotalRevenue:       dec("1100"),
		ActiveClients:      3,
		NewClients:         1,
		PeriodReceipts:     2,
		TotalReceipts:      3,
		ProductsCount:      12,
		AvgSaleValue:       dec("550"),
		TotalUnpaidBalance: dec("200"),
		MonthlyRevenue: []revenue.MonthPoint{
			{Month: "Oct", Revenue: dec("0")},
			{Month: "Nov", Revenue: dec("0")},
			{Month: "Dec", Revenue: dec("0")},
			{Month: "Jan", Revenue: dec("300")},
			{Month: "Feb", Revenue: dec("0")},
			{Month: "Mar", Revenue: dec("1500")},
		},
		TopProducts: []ProductSales{
			{Name: "Frame", Count: 3, Revenue: dec("900")},
			{Name: "Lens", Count: 1, Revenue: dec("600")},
		},
		TimeRange: revenue.RangeMonth,
	}

	if diff := cmp.Diff(want, stats, decimalCmp); diff != "" {
		t.Errorf("ComputeStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStats_YearAndAll(t *testing.T) {
	receipts, clients := statsFixture()

	for _, r := range []revenue.TimeRange{revenue.RangeYear, revenue.RangeAll} {
		t.Run(string(r), func(t *testing.T) {
			stats := ComputeStats(StatsInput{Range: r, Now: statsNow, Location: time.UTC, Receipts: receipts, Clients: clients})

			assert.True(t, stats.TotalRevenue.Equal(dec("1300")), stats.TotalRevenue.String())
			assert.Equal(t, 3, stats.PeriodReceipts)
			assert.True(t, stats.TotalUnpaidBalance.Equal(dec("500")))
			assert.True(t, stats.AvgSaleValue.Sub(dec("433.3333")).Abs().LessThan(dec("0.0001")))
		})
	}
}

func TestComputeStats_EmptyHasNoDivision(t *testing.T) {
	stats := ComputeStats(StatsInput{Range: revenue.RangeToday, Now: statsNow, Location: time.UTC})

	assert.True(t, stats.AvgSaleValue.IsZero())
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Equal(t, 0, stats.PeriodReceipts)
	assert.Empty(t, stats.TopProducts)
	assert.Len(t, stats.MonthlyRevenue, 6)
}

func TestTopProducts_TiesKeepFirstAppearance(t *testing.T) {
	var items []entity.ReceiptItem
	for i := 0; i < 7; i++ {
		p := &entity.Product{ID: uuid.New(), Name: fmt.Sprintf("P%d", i)}
		items = append(items, productItem(p, 1, "100"))
	}
	big := &entity.Product{ID: uuid.New(), Name: "Big"}
	items = append(items, productItem(big, 1, "250"))

	top := TopProducts([]entity.Receipt{{Items: items}}, 5)

	names := make([]string, len(top))
	for i, p := range top {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Big", "P0", "P1", "P2", "P3"}, names)
}

func TestStatsBounds_All(t *testing.T) {
	start, end := StatsBounds(revenue.RangeAll, statsNow, time.UTC)

	assert.True(t, start.Equal(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDashboardService_GetStats_UsesCache(t *testing.T) {
	receiptsRepo := new(MockReceiptRepository)
	clientsRepo := new(MockClientRepository)
	productsRepo := new(MockProductRepository)
	cache := newMemCache()

	svc := NewDashboardService(receiptsRepo, clientsRepo, productsRepo, cache, time.Minute, time.UTC)
	svc.now = func() time.Time { return statsNow }

	receipts, clients := statsFixture()
	receiptsRepo.On("ListAll", mock.Anything, true).Return(receipts, nil).Once()
	clientsRepo.On("ListAll", mock.Anything).Return(clients, nil).Once()
	productsRepo.On("Count", mock.Anything).Return(int64(2), nil).Once()

	first, err := svc.GetStats(ownerCtx(), revenue.RangeMonth)
	require.NoError(t, err)
	second, err := svc.GetStats(ownerCtx(), revenue.RangeMonth)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, decimalCmp); diff != "" {
		t.Errorf("cached stats differ (-first +second):\n%s", diff)
	}

	receiptsRepo.AssertExpectations(t)
	clientsRepo.AssertExpectations(t)
	productsRepo.AssertExpectations(t)
}

func TestDashboardService_GetRevenueChart_Week(t *testing.T) {
	receiptsRepo := new(MockReceiptRepository)
	svc := NewDashboardService(receiptsRepo, new(MockClientRepository), new(MockProductRepository), newMemCache(), 0, time.UTC)
	svc.now = func() time.Time { return statsNow }

	monday := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	receiptsRepo.On("ListCreatedBetween", mock.Anything, monday, mock.AnythingOfType("time.Time")).
		Return([]entity.Receipt{
			{CreatedAt: monday.Add(9 * time.Hour), Total: dec("120"), Cost: dec("20")},
			{CreatedAt: statsNow, Total: dec("80")},
		}, nil).Once()

	buckets, err := svc.GetRevenueChart(ownerCtx(), revenue.RangeWeek)
	require.NoError(t, err)

	require.Len(t, buckets, 7)
	assert.Equal(t, "Mon", buckets[0].Name)
	assert.True(t, buckets[0].Revenue.Equal(dec("120")))
	assert.Equal(t, "Fri", buckets[4].Name)
	assert.True(t, buckets[4].Revenue.Equal(dec("80")))
	receiptsRepo.AssertExpectations(t)
}

func TestDashboardService_GetRevenueChart_CacheRollsOverAtMidnight(t *testing.T) {
	receiptsRepo := new(MockReceiptRepository)
	svc := NewDashboardService(receiptsRepo, new(MockClientRepository), new(MockProductRepository), newMemCache(), time.Hour, time.UTC)

	lateEvening := time.Date(2024, time.March, 13, 23, 0, 0, 0, time.UTC)
	afterMidnight := time.Date(2024, time.March, 14, 0, 30, 0, 0, time.UTC)
	day1 := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)

	receiptsRepo.On("ListCreatedBetween", mock.Anything, day1, mock.AnythingOfType("time.Time")).
		Return([]entity.Receipt{{CreatedAt: day1.Add(22 * time.Hour), Total: dec("300")}}, nil).Once()
	receiptsRepo.On("ListCreatedBetween", mock.Anything, day2, mock.AnythingOfType("time.Time")).
		Return([]entity.Receipt{}, nil).Once()

	svc.now = func() time.Time { return lateEvening }
	first, err := svc.GetRevenueChart(ownerCtx(), revenue.RangeToday)
	require.NoError(t, err)
	cached, err := svc.GetRevenueChart(ownerCtx(), revenue.RangeToday)
	require.NoError(t, err)
	assert.True(t, first[22].Revenue.Equal(dec("300")))
	assert.True(t, cached[22].Revenue.Equal(dec("300")))

	svc.now = func() time.Time { return afterMidnight }
	next, err := svc.GetRevenueChart(ownerCtx(), revenue.RangeToday)
	require.NoError(t, err)
	require.Len(t, next, 24)
	assert.True(t, next[22].Revenue.IsZero(), "yesterday's buckets served after midnight")

	receiptsRepo.AssertExpectations(t)
}

func TestDashboardService_GetStats_CacheKeyedByDay(t *testing.T) {
	receiptsRepo := new(MockReceiptRepository)
	clientsRepo := new(MockClientRepository)
	productsRepo := new(MockProductRepository)
	svc := NewDashboardService(receiptsRepo, clientsRepo, productsRepo, newMemCache(), time.Hour, time.UTC)

	receipts, clients := statsFixture()
	receiptsRepo.On("ListAll", mock.Anything, true).Return(receipts, nil).Twice()
	clientsRepo.On("ListAll", mock.Anything).Return(clients, nil).Twice()
	productsRepo.On("Count", mock.Anything).Return(int64(2), nil).Twice()

	svc.now = func() time.Time { return statsNow }
	_, err := svc.GetStats(ownerCtx(), revenue.RangeToday)
	require.NoError(t, err)
	_, err = svc.GetStats(ownerCtx(), revenue.RangeToday)
	require.NoError(t, err)

	svc.now = func() time.Time { return statsNow.AddDate(0, 0, 1) }
	_, err = svc.GetStats(ownerCtx(), revenue.RangeToday)
	require.NoError(t, err)

	receiptsRepo.AssertExpectations(t)
	clientsRepo.AssertExpectations(t)
	productsRepo.AssertExpectations(t)
}
