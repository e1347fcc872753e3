package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit-market/service-booking/internal/domain"
	bookingDomain "github.com/shareit-market/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-market/service-booking/internal/domain/item"
	userDomain "github.com/shareit-market/service-booking/internal/domain/user"
	"github.com/shareit-market/service-booking/internal/events"
	"github.com/shareit-market/service-booking/internal/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking. The
// gateway tier guarantees start < end before the request reaches this
// service; the binding tags re-check presence.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// UserDTO is the response representation of a booker.
type UserDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ItemDTO is the response representation of a booked item.
type ItemDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	OwnerID   uuid.UUID `json:"owner_id"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     uuid.UUID `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Item   ItemDTO   `json:"item"`
	Booker UserDTO   `json:"booker"`
}

// BookingRefDTO is the compact booking reference embedded in item views.
type BookingRefDTO struct {
	ID       uuid.UUID `json:"id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	BookerID uuid.UUID `json:"booker_id"`
}

// ItemBookingSummaryDTO pairs an item's most recent and upcoming bookings.
// When Last is absent, Next is reported absent as well; the item-detail view
// depends on that exact shape.
type ItemBookingSummaryDTO struct {
	ItemID uuid.UUID      `json:"item_id"`
	Last   *BookingRefDTO `json:"last_booking,omitempty"`
	Next   *BookingRefDTO `json:"next_booking,omitempty"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// EventPublisher publishes CloudEvents to the bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
// It is the sole entry point the transport layer calls.
type BookingService struct {
	bookings bookingDomain.BookingRepository
	users    userDomain.UserRepository
	items    itemDomain.ItemRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	users userDomain.UserRepository,
	items itemDomain.ItemRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		items:    items,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a new WAITING booking for the requesting user.
// Owners may not book their own items; that failure is reported with the
// same status as an unknown user.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	booker, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !it.Available {
		return nil, domain.NewNotAvailableError(it.ID.String())
	}
	if it.OwnerID == userID {
		return nil, domain.NewNotOwnerError(fmt.Sprintf("user %s is the owner of item %s", userID, it.ID))
	}

	bk, err := bookingDomain.NewBooking(*booker, *it, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishBookingRequested(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// DecideBooking applies the owner's approve/reject ruling on a booking.
func (s *BookingService) DecideBooking(ctx context.Context, userID, bookingID uuid.UUID, approve bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if bk.Item().OwnerID != userID {
		return nil, domain.NewNotOwnerError(fmt.Sprintf("user %s is not the owner of item %s", userID, bk.Item().ID))
	}

	if err := bk.Decide(approve); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	eventType := events.BookingRejected
	if approve {
		eventType = events.BookingApproved
	}
	s.publishBookingDecided(ctx, bk, eventType)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking, visible only to the item owner or
// the booking author.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if userID != bk.Item().OwnerID && userID != bk.Booker().ID {
		return nil, domain.NewNotOwnerOrBookerError(userID.String())
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookerBookings retrieves the user's own bookings in the given category,
// sorted by start descending. A nil page returns the unbounded result set.
func (s *BookingService) ListBookerBookings(ctx context.Context, userID uuid.UUID, category bookingDomain.Category, page *bookingDomain.Page) ([]BookingDTO, error) {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	list, err := s.bookings.FindForBooker(ctx, userID, category, now, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list booker bookings: %w", err)
	}
	return toBookingDTOs(list), nil
}

// ListOwnerBookings retrieves bookings against any of the user's items in the
// given category, sorted by start descending.
func (s *BookingService) ListOwnerBookings(ctx context.Context, userID uuid.UUID, category bookingDomain.Category, page *bookingDomain.Page) ([]BookingDTO, error) {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	list, err := s.bookings.FindForOwner(ctx, userID, category, now, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return toBookingDTOs(list), nil
}

// GetItemBookingSummary returns the last and next bookings for one item.
// Only the owner sees the pair; everyone else gets an empty summary, which is
// how the item-detail view has always rendered for non-owners.
func (s *BookingService) GetItemBookingSummary(ctx context.Context, userID, itemID uuid.UUID) (*ItemBookingSummaryDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	summary := &ItemBookingSummaryDTO{ItemID: it.ID}
	if it.OwnerID != userID {
		return summary, nil
	}

	now := time.Now().UTC()
	last, err := s.bookings.FindLastForItem(ctx, itemID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find last booking: %w", err)
	}
	if last == nil {
		// No last booking means no next booking either, even when one exists.
		return summary, nil
	}
	summary.Last = toBookingRefDTO(last)

	next, err := s.bookings.FindNextForItem(ctx, itemID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find next booking: %w", err)
	}
	if next != nil {
		summary.Next = toBookingRefDTO(next)
	}
	return summary, nil
}

// ListOwnerItemSummaries returns last/next pairs for every item of the owner
// that has bookings, using two bulk queries instead of one pair per item.
func (s *BookingService) ListOwnerItemSummaries(ctx context.Context, ownerID uuid.UUID) ([]ItemBookingSummaryDTO, error) {
	if err := s.checkUserExists(ctx, ownerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lastList, err := s.bookings.FindLastForOwnerItems(ctx, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find last bookings: %w", err)
	}
	nextList, err := s.bookings.FindNextForOwnerItems(ctx, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find next bookings: %w", err)
	}

	// Lists are ordered by end desc/asc, so the first hit per item wins.
	lastByItem := make(map[uuid.UUID]*bookingDomain.Booking)
	order := make([]uuid.UUID, 0, len(lastList))
	for _, bk := range lastList {
		id := bk.Item().ID
		if _, seen := lastByItem[id]; !seen {
			lastByItem[id] = bk
			order = append(order, id)
		}
	}
	nextByItem := make(map[uuid.UUID]*bookingDomain.Booking)
	for _, bk := range nextList {
		id := bk.Item().ID
		if _, seen := nextByItem[id]; !seen {
			nextByItem[id] = bk
		}
	}

	summaries := make([]ItemBookingSummaryDTO, 0, len(order))
	for _, id := range order {
		summary := ItemBookingSummaryDTO{
			ItemID: id,
			Last:   toBookingRefDTO(lastByItem[id]),
		}
		if next, ok := nextByItem[id]; ok {
			summary.Next = toBookingRefDTO(next)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// HasCompletedRental reports whether the user has a finished rental of the
// item. The comment subsystem gates comment creation on this predicate.
func (s *BookingService) HasCompletedRental(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	finished, err := s.bookings.ExistsFinished(ctx, userID, itemID, now)
	if err != nil {
		return false, fmt.Errorf("failed to check finished rental: %w", err)
	}
	return finished, nil
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	list, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(list), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) findUser(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *BookingService) checkUserExists(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return domain.NewNotFoundError("user", userID.String())
	}
	return nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	it := bk.Item()
	booker := bk.Booker()
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: bk.Status().String(),
		Item: ItemDTO{
			ID:        it.ID,
			Name:      it.Name,
			Available: it.Available,
			OwnerID:   it.OwnerID,
		},
		Booker: UserDTO{
			ID:   booker.ID,
			Name: booker.Name,
		},
	}
}

func toBookingDTOs(list []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(list))
	for i, bk := range list {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toBookingRefDTO(bk *bookingDomain.Booking) *BookingRefDTO {
	if bk == nil {
		return nil
	}
	return &BookingRefDTO{
		ID:       bk.ID(),
		Start:    bk.Start(),
		End:      bk.End(),
		BookerID: bk.Booker().ID,
	}
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.Item().ID,
		OwnerID:    bk.Item().OwnerID,
		BookerID:   bk.Booker().ID,
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, evt)
}

func (s *BookingService) publishBookingDecided(ctx context.Context, bk *bookingDomain.Booking, eventType string) {
	evt := events.BookingDecidedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.Item().ID,
		OwnerID:    bk.Item().OwnerID,
		BookerID:   bk.Booker().ID,
		Status:     bk.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, eventType, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
