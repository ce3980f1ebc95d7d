package repository

import (
	"time"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

// createdKey is the stored creation time in UTC microseconds. Newest-first lists
// sort on it since RFC 3339 text drops trailing zeros and keeps the writer's zone.
const createdKey = "created_at_unix_micro"

func createdMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

// orderDocument is the stored form of an order
type orderDocument struct {
	*entity.Order
	CreatedAtUnixMicro int64 `json:"created_at_unix_micro"`
}

func newOrderDocument(o *entity.Order) orderDocument {
	return orderDocument{Order: o, CreatedAtUnixMicro: createdMicros(o.CreatedAt)}
}

type notificationDocument struct {
	*entity.Notification
	CreatedAtUnixMicro int64 `json:"created_at_unix_micro"`
}

func newNotificationDocument(n *entity.Notification) notificationDocument {
	return notificationDocument{Notification: n, CreatedAtUnixMicro: createdMicros(n.CreatedAt)}
}
