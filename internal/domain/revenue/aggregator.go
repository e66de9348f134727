// Package revenue buckets receipt amounts into calendar slots for charting.
//
// Every series is zero-filled: the bucket skeleton for a range is always
// returned in full, and records are matched to buckets with the same key
// function that built the skeleton. Records whose key matches no bucket are
// dropped.
package revenue

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimeRange selects the window and granularity of a series
type TimeRange string

const (
	RangeToday TimeRange = "today"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
	RangeAll   TimeRange = "all"
)

// ParseTimeRange validates a query value; empty means week.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(s); r {
	case RangeToday, RangeWeek, RangeMonth, RangeYear, RangeAll:
		return r, nil
	case "":
		return RangeWeek, nil
	default:
		return "", fmt.Errorf("unknown time range %q", s)
	}
}

// Filter reports whether records must fall inside Bounds to be counted
func (r TimeRange) Filter() bool {
	return r != RangeAll
}

// Record is the part of a receipt the aggregator reads
type Record struct {
	CreatedAt time.Time
	Total     decimal.Decimal
	Cost      decimal.Decimal
}

// Bucket is one slot of a series
type Bucket struct {
	Name     string          `json:"name"`
	FullName string          `json:"fullName,omitempty"`
	FullDate string          `json:"fullDate,omitempty"`
	Key      string          `json:"key"`
	Revenue  decimal.Decimal `json:"revenue"`
}

const dateKey = "2006-01-02"

// Bounds returns the inclusive window of r around now, in loc.
// For RangeAll it returns the current year, which only shapes the skeleton.
func Bounds(r TimeRange, now time.Time, loc *time.Location) (time.Time, time.Time) {
	now = now.In(loc)
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch r {
	case RangeToday:
		return day, endOf(day.AddDate(0, 0, 1))
	case RangeMonth:
		first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return first, endOf(first.AddDate(0, 1, 0))
	case RangeYear, RangeAll:
		first := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return first, endOf(first.AddDate(1, 0, 0))
	default:
		monday := day.AddDate(0, 0, -daysSinceMonday(now.Weekday()))
		return monday, endOf(monday.AddDate(0, 0, 7))
	}
}

// StartOfWeek returns Monday 00:00 of the week containing t
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d-daysSinceMonday(t.Weekday()), 0, 0, 0, 0, loc)
}

func daysSinceMonday(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// endOf is the last instant before next
func endOf(next time.Time) time.Time {
	return next.Add(-time.Nanosecond)
}

// Aggregate builds the zero-filled series for r and sums records into it.
func Aggregate(records []Record, r TimeRange, now time.Time, loc *time.Location) []Bucket {
	start, end := Bounds(r, now, loc)
	buckets, keyOf := skeleton(r, start, end, loc)

	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	margin := r == RangeYear || r == RangeAll
	for _, rec := range records {
		if r.Filter() && (rec.CreatedAt.Before(start) || rec.CreatedAt.After(end)) {
			continue
		}
		i, ok := index[keyOf(rec.CreatedAt.In(loc))]
		if !ok {
			continue
		}
		amount := rec.Total
		if margin {
			amount = amount.Sub(rec.Cost)
		}
		buckets[i].Revenue = buckets[i].Revenue.Add(amount)
	}
	return buckets
}

// skeleton returns the empty buckets for r and the key function shared by
// buckets and records.
func skeleton(r TimeRange, start, end time.Time, loc *time.Location) ([]Bucket, func(time.Time) string) {
	switch r {
	case RangeToday:
		keyOf := func(t time.Time) string { return strconv.Itoa(t.Hour()) }
		buckets := make([]Bucket, 0, 24)
		// One bucket per wall-clock hour, including hours a DST change skips.
		for h := 0; h < 24; h++ {
			label := time.Date(2000, time.January, 1, h, 0, 0, 0, time.UTC).Format("3 PM")
			buckets = append(buckets, Bucket{Name: label, Key: strconv.Itoa(h), Revenue: decimal.Zero})
		}
		return buckets, keyOf

	case RangeMonth:
		keyOf := func(t time.Time) string { return t.Format(dateKey) }
		var buckets []Bucket
		for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
			buckets = append(buckets, Bucket{
				Name:     strconv.Itoa(t.Day()),
				FullDate: t.Format("Jan 2, 2006"),
				Key:      keyOf(t),
				Revenue:  decimal.Zero,
			})
		}
		return buckets, keyOf

	case RangeYear, RangeAll:
		keyOf := func(t time.Time) string { return strconv.Itoa(int(t.Month()) - 1) }
		buckets := make([]Bucket, 0, 12)
		for m := time.January; m <= time.December; m++ {
			t := time.Date(start.Year(), m, 1, 0, 0, 0, 0, loc)
			buckets = append(buckets, Bucket{
				Name:     t.Format("Jan"),
				FullName: t.Format("January 2006"),
				Key:      keyOf(t),
				Revenue:  decimal.Zero,
			})
		}
		return buckets, keyOf

	default:
		keyOf := func(t time.Time) string { return t.Format(dateKey) }
		buckets := make([]Bucket, 0, 7)
		for i := 0; i < 7; i++ {
			t := start.AddDate(0, 0, i)
			buckets = append(buckets, Bucket{
				Name:     t.Format("Mon"),
				FullName: t.Format("Monday"),
				Key:      keyOf(t),
				Revenue:  decimal.Zero,
			})
		}
		return buckets, keyOf
	}
}

// MonthPoint is one entry of the trailing monthly series
type MonthPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// LastMonths sums totals for the n calendar months ending with now's month,
// oldest first.
func LastMonths(records []Record, n int, now time.Time, loc *time.Location) []MonthPoint {
	if n <= 0 {
		return []MonthPoint{}
	}
	now = now.In(loc)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	points := make([]MonthPoint, n)
	starts := make([]time.Time, n)
	for i := 0; i < n; i++ {
		starts[i] = current.AddDate(0, i-(n-1), 0)
		points[i] = MonthPoint{Month: starts[i].Format("Jan"), Revenue: decimal.Zero}
	}

	for _, rec := range records {
		t := rec.CreatedAt.In(loc)
		for i, s := range starts {
			if !t.Before(s) && t.Before(s.AddDate(0, 1, 0)) {
				points[i].Revenue = points[i].Revenue.Add(rec.Total)
				break
			}
		}
	}
	return points
}
