package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shareit-market/service-booking/internal/domain"
	"github.com/shareit-market/service-booking/internal/domain/item"
	"github.com/shareit-market/service-booking/internal/domain/user"
)

// Booking is the aggregate root for the booking domain. It borrows read-only
// snapshots of the booked item and the booker; both are owned by the
// persistence layer.
type Booking struct {
	id     uuid.UUID
	start  time.Time
	end    time.Time
	item   item.Item
	booker user.User
	status BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking in WAITING status. The start/end pair is
// validated at the transport boundary; the aggregate only rejects a plainly
// inverted interval.
func NewBooking(booker user.User, it item.Item, start, end time.Time) (*Booking, error) {
	if booker.ID == uuid.Nil {
		return nil, domain.NewValidationError("booker is required")
	}
	if it.ID == uuid.Nil {
		return nil, domain.NewValidationError("item is required")
	}
	if !end.After(start) {
		return nil, domain.NewValidationError("booking end must be after start")
	}

	now := time.Now().UTC()
	return &Booking{
		id:        uuid.New(),
		start:     start,
		end:       end,
		item:      it,
		booker:    booker,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	start, end time.Time,
	it item.Item,
	booker user.User,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		start:     start,
		end:       end,
		item:      it,
		booker:    booker,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Start returns the rental start time.
func (b *Booking) Start() time.Time { return b.start }

// End returns the rental end time.
func (b *Booking) End() time.Time { return b.end }

// Item returns a snapshot of the booked item.
func (b *Booking) Item() item.Item { return b.item }

// Booker returns a snapshot of the user who requested the booking.
func (b *Booking) Booker() user.User { return b.booker }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// InCategory reports whether the booking falls into the category at now.
func (b *Booking) InCategory(c Category, now time.Time) bool {
	return c.Matches(b.status, b.start, b.end, now)
}

// Decide applies the owner's ruling: APPROVED when approve is true, REJECTED
// otherwise. Re-approving an already-approved booking fails with the
// duplicate-status error; re-rejecting is idempotent.
func (b *Booking) Decide(approve bool) error {
	target := StatusRejected
	if approve {
		target = StatusApproved
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewDuplicateStatusError()
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
