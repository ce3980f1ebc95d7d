package port

import (
	"context"
	"errors"
	"io"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

// ErrUnauthenticated is returned when no valid identity accompanies a request
var ErrUnauthenticated = errors.New("unauthenticated")

// IdentityProvider resolves the acting user from a bearer token
type IdentityProvider interface {
	CurrentUser(ctx context.Context, token string) (*entity.User, error)
}

// NotificationSink delivers a workflow notification. Callers treat failures as non-fatal.
type NotificationSink interface {
	Notify(ctx context.Context, n *entity.Notification) error
}

// OrderExporter writes an order report
type OrderExporter interface {
	Export(ctx context.Context, orders []*entity.Order, w io.Writer) error
	ContentType() string
	Extension() string
}
