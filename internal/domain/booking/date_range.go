package booking

import (
	"fmt"
	"time"
)

// DateRange is an inclusive rental period [Pickup, Return]. Both bounds count
// as rental days for overlap purposes: the vehicle is out the pickup day and
// back only after the return day.
type DateRange struct {
	Pickup time.Time `json:"pickup_date"`
	Return time.Time `json:"return_date"`
}

// NewDateRange validates and creates a DateRange. The return date must be
// strictly after the pickup date.
func NewDateRange(pickup, ret time.Time) (DateRange, error) {
	if pickup.IsZero() || ret.IsZero() {
		return DateRange{}, fmt.Errorf("pickup and return dates are required")
	}
	if !ret.After(pickup) {
		return DateRange{}, fmt.Errorf("return date must be after pickup date")
	}
	return DateRange{Pickup: pickup.UTC(), Return: ret.UTC()}, nil
}

// Days returns the billable day count: the elapsed time rounded up to whole
// days, never less than one.
func (r DateRange) Days() int {
	d := r.Return.Sub(r.Pickup)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Overlaps reports whether two inclusive ranges share at least one day:
// r.Pickup <= other.Return AND r.Return >= other.Pickup.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Pickup.After(other.Return) && !r.Return.Before(other.Pickup)
}

// ContainsDay reports whether the given instant's calendar day falls inside
// the range, comparing at day granularity.
func (r DateRange) ContainsDay(t time.Time) bool {
	day := dayFloor(t)
	return !day.Before(dayFloor(r.Pickup)) && !day.After(dayFloor(r.Return))
}

func dayFloor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
