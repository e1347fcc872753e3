package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
// Query methods take the caller's observation of the wall clock so a single
// request classifies every row against one consistent instant.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists a status decision with optimistic locking.
	Update(ctx context.Context, b *Booking) error

	// FindForBooker retrieves the booker's bookings in the given category,
	// sorted by start descending. A nil page returns the unbounded set.
	FindForBooker(ctx context.Context, bookerID uuid.UUID, category Category, now time.Time, page *Page) ([]*Booking, error)

	// FindForOwner retrieves bookings against any of the owner's items in the
	// given category, sorted by start descending. A nil page returns the
	// unbounded set.
	FindForOwner(ctx context.Context, ownerID uuid.UUID, category Category, now time.Time, page *Page) ([]*Booking, error)

	// FindLastForItem returns the item's booking with start before now,
	// ordered by end descending, or nil when there is none.
	FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindNextForItem returns the item's booking with start after now,
	// ordered by end ascending, or nil when there is none.
	FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindLastForOwnerItems returns bookings with start before now across all
	// of the owner's items, ordered by end descending.
	FindLastForOwnerItems(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*Booking, error)

	// FindNextForOwnerItems returns bookings with start after now across all
	// of the owner's items, ordered by end ascending.
	FindNextForOwnerItems(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*Booking, error)

	// ExistsFinished reports whether the user has a booking for the item
	// whose end is strictly before now.
	ExistsFinished(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
