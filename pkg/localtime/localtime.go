// Package localtime pins the shop's wall clock. Receipts are stored in UTC;
// every calendar decision (day boundaries, week start, printed dates) is made
// in the shop's zone.
package localtime

import (
	"time"
	_ "time/tzdata"
)

// DefaultZone is the zone the shop operates in.
const DefaultZone = "Africa/Casablanca"

// Load returns the named location. Unknown names fall back to a fixed UTC+1
// zone, which is what Casablanca observes outside Ramadan.
func Load(name string) *time.Location {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("UTC+1", 60*60)
	}
	return loc
}

// FormatDateTime renders t as "01/02/2006, 03:04 PM" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("01/02/2006, 03:04 PM")
}

// FormatDate renders t as "01/02/2006" in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("01/02/2006")
}
