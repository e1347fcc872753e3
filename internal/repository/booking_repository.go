package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shareit-market/service-booking/internal/domain"
	bookingDomain "github.com/shareit-market/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StartTime time.Time `gorm:"not null;index"`
	EndTime   time.Time `gorm:"not null"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Item   ItemModel `gorm:"foreignKey:ItemID"`
	Booker UserModel `gorm:"foreignKey:BookerID"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists a status decision with optimistic locking. Two concurrent
// decisions on the same booking cannot both pass: the version predicate lets
// only one UPDATE through.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// FindForBooker retrieves the booker's bookings in the given category,
// sorted by start descending.
func (r *GormBookingRepository) FindForBooker(ctx context.Context, bookerID uuid.UUID, category bookingDomain.Category, now time.Time, page *bookingDomain.Page) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Where("booker_id = ?", bookerID)
	q = applyCategory(q, category, now)
	q = applyPage(q.Order("start_time DESC"), page)

	var models []BookingModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booker bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindForOwner retrieves bookings against any of the owner's items in the
// given category, sorted by start descending.
func (r *GormBookingRepository) FindForOwner(ctx context.Context, ownerID uuid.UUID, category bookingDomain.Category, now time.Time, page *bookingDomain.Page) ([]*bookingDomain.Booking, error) {
	q := r.ownerScope(ctx, ownerID)
	q = applyCategory(q, category, now)
	q = applyPage(q.Order("bookings.start_time DESC"), page)

	var models []BookingModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindLastForItem returns the item's booking with start before now, ordered
// by end descending, or nil when there is none.
func (r *GormBookingRepository) FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Where("item_id = ? AND start_time < ?", itemID, now).
		Order("end_time DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last booking: %w", err)
	}
	return toDomainBooking(&model)
}

// FindNextForItem returns the item's booking with start after now, ordered
// by end ascending, or nil when there is none.
func (r *GormBookingRepository) FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Where("item_id = ? AND start_time > ?", itemID, now).
		Order("end_time ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find next booking: %w", err)
	}
	return toDomainBooking(&model)
}

// FindLastForOwnerItems returns bookings with start before now across all of
// the owner's items, ordered by end descending.
func (r *GormBookingRepository) FindLastForOwnerItems(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	err := r.ownerScope(ctx, ownerID).
		Where("bookings.start_time < ?", now).
		Order("bookings.end_time DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find last owner bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindNextForOwnerItems returns bookings with start after now across all of
// the owner's items, ordered by end ascending.
func (r *GormBookingRepository) FindNextForOwnerItems(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	err := r.ownerScope(ctx, ownerID).
		Where("bookings.start_time > ?", now).
		Order("bookings.end_time ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find next owner bookings: %w", err)
	}
	return toDomainBookings(models)
}

// ExistsFinished reports whether the user has a booking for the item whose
// end is strictly before now.
func (r *GormBookingRepository) ExistsFinished(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("booker_id = ? AND item_id = ? AND end_time < ?", bookerID, itemID, now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return count > 0, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Order("start_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Query Helpers ---

// ownerScope joins bookings to the owner's items.
func (r *GormBookingRepository) ownerScope(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Preload("Item").
		Preload("Booker").
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("items.owner_id = ?", ownerID)
}

// applyCategory adds the temporal/status predicate for a listing category.
// CURRENT includes both interval boundaries; PAST and FUTURE are strict.
func applyCategory(q *gorm.DB, category bookingDomain.Category, now time.Time) *gorm.DB {
	switch category {
	case bookingDomain.CategoryCurrent:
		return q.Where("bookings.start_time <= ? AND bookings.end_time >= ?", now, now)
	case bookingDomain.CategoryPast:
		return q.Where("bookings.end_time < ?", now)
	case bookingDomain.CategoryFuture:
		return q.Where("bookings.start_time > ?", now)
	case bookingDomain.CategoryWaiting:
		return q.Where("bookings.status = ?", bookingDomain.StatusWaiting.String())
	case bookingDomain.CategoryRejected:
		return q.Where("bookings.status = ?", bookingDomain.StatusRejected.String())
	default:
		return q
	}
}

// applyPage converts the item-offset page to a row window; nil means unbounded.
func applyPage(q *gorm.DB, page *bookingDomain.Page) *gorm.DB {
	if page == nil {
		return q
	}
	return q.Offset(page.Offset()).Limit(page.Size)
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) BookingModel {
	return BookingModel{
		ID:        bk.ID(),
		StartTime: bk.Start(),
		EndTime:   bk.End(),
		ItemID:    bk.Item().ID,
		BookerID:  bk.Booker().ID,
		Status:    bk.Status().String(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.StartTime,
		m.EndTime,
		toDomainItem(&m.Item),
		*toDomainUser(&m.Booker),
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
