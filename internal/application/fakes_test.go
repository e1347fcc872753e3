package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shareit-market/service-booking/internal/domain"
	bookingDomain "github.com/shareit-market/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-market/service-booking/internal/domain/item"
	userDomain "github.com/shareit-market/service-booking/internal/domain/user"
	"github.com/shareit-market/service-booking/internal/kafka"
)

// memBookingRepo is an in-memory BookingRepository for unit tests. It mirrors
// the SQL implementation's ordering and filtering so service tests exercise
// the same result shapes.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return bk, nil
}

func (r *memBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = b
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID()]; !ok {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *memBookingRepo) FindForBooker(_ context.Context, bookerID uuid.UUID, category bookingDomain.Category, now time.Time, page *bookingDomain.Page) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool {
		return b.Booker().ID == bookerID && b.InCategory(category, now)
	}, byStartDesc, page), nil
}

func (r *memBookingRepo) FindForOwner(_ context.Context, ownerID uuid.UUID, category bookingDomain.Category, now time.Time, page *bookingDomain.Page) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool {
		return b.Item().OwnerID == ownerID && b.InCategory(category, now)
	}, byStartDesc, page), nil
}

func (r *memBookingRepo) FindLastForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	list := r.filter(func(b *bookingDomain.Booking) bool {
		return b.Item().ID == itemID && b.Start().Before(now)
	}, byEndDesc, nil)
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *memBookingRepo) FindNextForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	list := r.filter(func(b *bookingDomain.Booking) bool {
		return b.Item().ID == itemID && b.Start().After(now)
	}, byEndAsc, nil)
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *memBookingRepo) FindLastForOwnerItems(_ context.Context, ownerID uuid.UUID, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool {
		return b.Item().OwnerID == ownerID && b.Start().Before(now)
	}, byEndDesc, nil), nil
}

func (r *memBookingRepo) FindNextForOwnerItems(_ context.Context, ownerID uuid.UUID, now time.Time) ([]*bookingDomain.Booking, error) {
	return r.filter(func(b *bookingDomain.Booking) bool {
		return b.Item().OwnerID == ownerID && b.Start().After(now)
	}, byEndAsc, nil), nil
}

func (r *memBookingRepo) ExistsFinished(_ context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error) {
	list := r.filter(func(b *bookingDomain.Booking) bool {
		return b.Booker().ID == bookerID && b.Item().ID == itemID && b.End().Before(now)
	}, byStartDesc, nil)
	return len(list) > 0, nil
}

func (r *memBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	all := r.filter(func(*bookingDomain.Booking) bool { return true }, byStartDesc, nil)
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

type lessFunc func(a, b *bookingDomain.Booking) bool

func byStartDesc(a, b *bookingDomain.Booking) bool { return a.Start().After(b.Start()) }
func byEndDesc(a, b *bookingDomain.Booking) bool   { return a.End().After(b.End()) }
func byEndAsc(a, b *bookingDomain.Booking) bool    { return a.End().Before(b.End()) }

func (r *memBookingRepo) filter(keep func(*bookingDomain.Booking) bool, less lessFunc, page *bookingDomain.Page) []*bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	var list []*bookingDomain.Booking
	for _, b := range r.bookings {
		if keep(b) {
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return less(list[i], list[j]) })

	if page == nil {
		return list
	}
	offset := page.Offset()
	if offset >= len(list) {
		return nil
	}
	end := offset + page.Size
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userDomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	return u, nil
}

func (r *memUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *memUserRepo) Upsert(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// memItemRepo is an in-memory ItemRepository.
type memItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*itemDomain.Item
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[uuid.UUID]*itemDomain.Item)}
}

func (r *memItemRepo) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("item", id.String())
	}
	return it, nil
}

func (r *memItemRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*itemDomain.Item
	for _, it := range r.items {
		if it.OwnerID == ownerID {
			list = append(list, it)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID.String() < list[j].ID.String() })
	return list, nil
}

func (r *memItemRepo) Upsert(_ context.Context, it *itemDomain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []kafka.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.CloudEvent(nil), p.events...)
}
