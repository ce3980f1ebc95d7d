package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	store  port.DocumentStore
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(store port.DocumentStore, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		store:  store,
		logger: logger,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if err := r.store.Create(ctx, entity.CollectionNotifications, n.ID, newNotificationDocument(n)); err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("notification_id", n.ID),
			zap.String("order_id", n.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListForDepartment returns the newest notifications addressed to department.
// An empty department lists all of them.
func (r *NotificationRepository) ListForDepartment(ctx context.Context, department entity.Department, limit int) ([]*entity.Notification, error) {
	docs, err := r.store.List(ctx, entity.CollectionNotifications, port.Filter{OrderBy: "-" + createdKey})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	var out []*entity.Notification
	for _, doc := range docs {
		var n entity.Notification
		if err := json.Unmarshal(doc, &n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		if department != "" && !n.AddressedTo(department) {
			continue
		}
		out = append(out, &n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkRead records that userID has read the notification
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	var n entity.Notification
	err := r.store.Get(ctx, entity.CollectionNotifications, id, &n)
	if errors.Is(err, port.ErrDocumentNotFound) {
		return domainwf.NewNotFoundError("notification", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get notification: %w", err)
	}
	if n.IsReadBy(userID) {
		return nil
	}

	return r.store.Update(ctx, entity.CollectionNotifications, id, map[string]interface{}{
		"read_by": append(n.ReadBy, userID),
	})
}
