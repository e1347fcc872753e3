package item

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Item is the local read model of the item catalog. The `Available` flag is
// the single gate checked at booking-creation time; this service never flips
// it.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemRepository defines the lookups the booking core needs from the item
// catalog, plus the sync operations used by the catalog consumer.
type ItemRepository interface {
	// FindByID retrieves an item by id.
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// ListByOwner retrieves all items owned by the given user.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)

	// Upsert inserts or updates the local copy of an item.
	Upsert(ctx context.Context, it *Item) error
}
