package revenue_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/optica-api/internal/domain/revenue"
	"github.com/sangkips/optica-api/pkg/localtime"
)

var loc = time.FixedZone("UTC+1", 3600)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, loc)
}

func rec(t time.Time, total, cost int64) revenue.Record {
	return revenue.Record{CreatedAt: t, Total: decimal.NewFromInt(total), Cost: decimal.NewFromInt(cost)}
}

func revenues(buckets []revenue.Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Revenue.String()
	}
	return out
}

func TestParseTimeRange(t *testing.T) {
	r, err := revenue.ParseTimeRange("month")
	require.NoError(t, err)
	assert.Equal(t, revenue.RangeMonth, r)

	r, err = revenue.ParseTimeRange("")
	require.NoError(t, err)
	assert.Equal(t, revenue.RangeWeek, r)

	_, err = revenue.ParseTimeRange("decade")
	require.Error(t, err)
}

func TestAggregate_TodayAlwaysHas24Buckets(t *testing.T) {
	now := at(2024, time.March, 13, 15, 0)

	buckets := revenue.Aggregate(nil, revenue.RangeToday, now, loc)

	require.Len(t, buckets, 24)
	assert.Equal(t, "12 AM", buckets[0].Name)
	assert.Equal(t, "1 AM", buckets[1].Name)
	assert.Equal(t, "12 PM", buckets[12].Name)
	assert.Equal(t, "11 PM", buckets[23].Name)
	for _, b := range buckets {
		assert.True(t, b.Revenue.IsZero())
	}
}

func TestAggregate_TodayBucketsByHourInZone(t *testing.T) {
	now := at(2024, time.March, 13, 15, 0)
	records := []revenue.Record{
		rec(at(2024, time.March, 13, 9, 10), 120, 20),
		rec(at(2024, time.March, 13, 9, 50), 30, 0),
		// 23:30 UTC on the 12th is 00:30 on the 13th in the shop zone
		rec(time.Date(2024, time.March, 12, 23, 30, 0, 0, time.UTC), 45, 0),
		rec(at(2024, time.March, 12, 9, 0), 999, 0),
	}

	buckets := revenue.Aggregate(records, revenue.RangeToday, now, loc)

	assert.Equal(t, "45", buckets[0].Revenue.String())
	assert.Equal(t, "150", buckets[9].Revenue.String())
}

func TestAggregate_TodayOnSpringForwardDay(t *testing.T) {
	casablanca := localtime.Load(localtime.DefaultZone)
	// Clocks jump from 02:00 to 03:00 on 2025-04-06 in Casablanca.
	now := time.Date(2025, time.April, 6, 12, 0, 0, 0, casablanca)
	records := []revenue.Record{
		rec(time.Date(2025, time.April, 6, 1, 30, 0, 0, casablanca), 10, 0),
		rec(time.Date(2025, time.April, 6, 3, 30, 0, 0, casablanca), 20, 0),
	}

	buckets := revenue.Aggregate(records, revenue.RangeToday, now, casablanca)

	require.Len(t, buckets, 24)
	keys := make(map[string]bool, 24)
	for _, b := range buckets {
		keys[b.Key] = true
	}
	assert.Len(t, keys, 24)
	assert.Equal(t, []string{"1 AM", "2 AM", "3 AM"}, []string{buckets[1].Name, buckets[2].Name, buckets[3].Name})
	assert.Equal(t, "10", buckets[1].Revenue.String())
	assert.Equal(t, "0", buckets[2].Revenue.String())
	assert.Equal(t, "20", buckets[3].Revenue.String())
}

func TestAggregate_WeekStartsMonday(t *testing.T) {
	now := at(2024, time.March, 13, 12, 0) // Wednesday
	records := []revenue.Record{
		rec(at(2024, time.March, 11, 0, 0), 10, 0),
		rec(at(2024, time.March, 17, 23, 30), 70, 5),
		rec(at(2024, time.March, 10, 23, 59), 500, 0),
		rec(at(2024, time.March, 18, 0, 0), 500, 0),
	}

	buckets := revenue.Aggregate(records, revenue.RangeWeek, now, loc)

	require.Len(t, buckets, 7)
	names := make([]string, 0, 7)
	for _, b := range buckets {
		names = append(names, b.FullName)
	}
	want := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("week labels mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Mon", buckets[0].Name)
	assert.Equal(t, "2024-03-11", buckets[0].Key)
	assert.Equal(t, "2024-03-17", buckets[6].Key)
	assert.Equal(t, []string{"10", "0", "0", "0", "0", "0", "70"}, revenues(buckets))
}

func TestAggregate_WeekOnSunday(t *testing.T) {
	now := at(2024, time.March, 17, 20, 0)

	buckets := revenue.Aggregate(nil, revenue.RangeWeek, now, loc)

	require.Len(t, buckets, 7)
	assert.Equal(t, "2024-03-11", buckets[0].Key)
}

func TestAggregate_MonthUsesTotalYearUsesMargin(t *testing.T) {
	now := at(2024, time.March, 25, 12, 0)
	records := []revenue.Record{
		rec(at(2024, time.March, 3, 10, 0), 100, 10),
		rec(at(2024, time.March, 10, 10, 0), 200, 20),
		rec(at(2024, time.March, 20, 10, 0), 300, 30),
	}

	month := revenue.Aggregate(records, revenue.RangeMonth, now, loc)
	require.Len(t, month, 31)
	assert.Equal(t, "1", month[0].Name)
	assert.Equal(t, "Mar 1, 2024", month[0].FullDate)
	assert.Equal(t, "100", month[2].Revenue.String())
	assert.Equal(t, "200", month[9].Revenue.String())
	assert.Equal(t, "300", month[19].Revenue.String())
	sum := decimal.Zero
	for _, b := range month {
		sum = sum.Add(b.Revenue)
	}
	assert.Equal(t, "600", sum.String())

	year := revenue.Aggregate(records, revenue.RangeYear, now, loc)
	require.Len(t, year, 12)
	assert.Equal(t, "Mar", year[2].Name)
	assert.Equal(t, "March 2024", year[2].FullName)
	assert.Equal(t, "540", year[2].Revenue.String())
	assert.True(t, year[0].Revenue.IsZero())
}

func TestAggregate_FebruaryLeapYear(t *testing.T) {
	buckets := revenue.Aggregate(nil, revenue.RangeMonth, at(2024, time.February, 10, 0, 0), loc)
	assert.Len(t, buckets, 29)
}

func TestAggregate_AllIgnoresDateFilter(t *testing.T) {
	now := at(2024, time.March, 25, 12, 0)
	records := []revenue.Record{
		rec(at(2022, time.June, 3, 10, 0), 100, 40),
		rec(at(2024, time.June, 9, 10, 0), 50, 0),
	}

	all := revenue.Aggregate(records, revenue.RangeAll, now, loc)
	require.Len(t, all, 12)
	assert.Equal(t, "110", all[5].Revenue.String())

	year := revenue.Aggregate(records, revenue.RangeYear, now, loc)
	assert.Equal(t, "50", year[5].Revenue.String())
}

func TestBounds_Week(t *testing.T) {
	start, end := revenue.Bounds(revenue.RangeWeek, at(2024, time.March, 13, 12, 0), loc)

	assert.True(t, start.Equal(at(2024, time.March, 11, 0, 0)), start)
	assert.True(t, end.Equal(time.Date(2024, time.March, 17, 23, 59, 59, 999999999, loc)), end)
}

func TestLastMonths(t *testing.T) {
	now := at(2024, time.March, 25, 12, 0)
	records := []revenue.Record{
		rec(at(2024, time.March, 1, 0, 0), 100, 90),
		rec(at(2023, time.October, 31, 23, 0), 40, 0),
		rec(at(2023, time.September, 30, 23, 0), 999, 0),
	}

	points := revenue.LastMonths(records, 6, now, loc)

	want := []revenue.MonthPoint{
		{Month: "Oct", Revenue: decimal.NewFromInt(40)},
		{Month: "Nov", Revenue: decimal.Zero},
		{Month: "Dec", Revenue: decimal.Zero},
		{Month: "Jan", Revenue: decimal.Zero},
		{Month: "Feb", Revenue: decimal.Zero},
		{Month: "Mar", Revenue: decimal.NewFromInt(100)},
	}
	opt := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, points, opt); diff != "" {
		t.Errorf("LastMonths mismatch (-want +got):\n%s", diff)
	}
}
