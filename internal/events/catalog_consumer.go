package events

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit-market/service-booking/internal/domain/item"
	"github.com/shareit-market/service-booking/internal/domain/user"
	"github.com/shareit-market/service-booking/internal/kafka"
)

// CatalogEventConsumer keeps the local user and item read models in sync with
// the user directory and item catalog services. The booking core only ever
// reads these tables.
type CatalogEventConsumer struct {
	consumer *kafka.Consumer
	users    user.UserRepository
	items    item.ItemRepository
	logger   *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	users user.UserRepository,
	items item.ItemRepository,
	logger *zap.Logger,
) *CatalogEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicCatalogEvents, logger)
	return &CatalogEventConsumer{
		consumer: consumer,
		users:    users,
		items:    items,
		logger:   logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case UserCreated, UserUpdated:
		return c.handleUserUpserted(ctx, cloudEvent)
	case UserDeleted:
		return c.handleUserDeleted(ctx, cloudEvent)
	case ItemCreated, ItemUpdated:
		return c.handleItemUpserted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CatalogEventConsumer) handleUserUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt UserEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse user event data", zap.Error(err))
		return nil
	}

	now := time.Now().UTC()
	err := c.users.Upsert(ctx, &user.User{
		ID:        evt.UserID,
		Name:      evt.Name,
		Email:     evt.Email,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		c.logger.Error("failed to upsert user read model",
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *CatalogEventConsumer) handleUserDeleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt UserEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse user event data", zap.Error(err))
		return nil
	}

	if err := c.users.Delete(ctx, evt.UserID); err != nil {
		c.logger.Error("failed to delete user read model",
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *CatalogEventConsumer) handleItemUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt ItemEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse item event data", zap.Error(err))
		return nil
	}

	now := time.Now().UTC()
	err := c.items.Upsert(ctx, &item.Item{
		ID:          evt.ItemID,
		Name:        evt.Name,
		Description: evt.Description,
		Available:   evt.Available,
		OwnerID:     evt.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		c.logger.Error("failed to upsert item read model",
			zap.String("item_id", evt.ItemID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
