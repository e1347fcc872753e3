package booking

import (
	"strings"
	"time"

	"github.com/shareit-market/service-booking/internal/domain"
)

// Category is the time/status classification bucket used to filter booking
// listings. CURRENT, PAST and FUTURE are derived from the wall clock and are
// mutually exclusive at any fixed instant; WAITING and REJECTED filter purely
// by status and may overlap the temporal buckets.
type Category string

const (
	CategoryAll      Category = "ALL"
	CategoryCurrent  Category = "CURRENT"
	CategoryPast     Category = "PAST"
	CategoryFuture   Category = "FUTURE"
	CategoryWaiting  Category = "WAITING"
	CategoryRejected Category = "REJECTED"
)

// ParseCategory converts a request parameter into a Category. The empty
// string defaults to ALL; anything unrecognized is a validation error.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryAll, nil
	}
	switch c := Category(strings.ToUpper(s)); c {
	case CategoryAll, CategoryCurrent, CategoryPast, CategoryFuture, CategoryWaiting, CategoryRejected:
		return c, nil
	default:
		return "", domain.NewValidationError("Unknown state: " + s)
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Matches reports whether a booking with the given interval and status falls
// into the category at the instant now. CURRENT includes both boundaries:
// start <= now <= end.
func (c Category) Matches(status BookingStatus, start, end, now time.Time) bool {
	switch c {
	case CategoryCurrent:
		return !now.Before(start) && !now.After(end)
	case CategoryPast:
		return now.After(end)
	case CategoryFuture:
		return now.Before(start)
	case CategoryWaiting:
		return status == StatusWaiting
	case CategoryRejected:
		return status == StatusRejected
	default:
		return true
	}
}
