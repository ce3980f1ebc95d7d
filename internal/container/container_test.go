package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/application/service"
	"github.com/garyjia/print-order-tracker/internal/application/workflow"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

func testConfig(driver string, t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.Database.Driver = driver
	cfg.Database.Path = filepath.Join(t.TempDir(), "orders.db")
	cfg.Auth.JWTSecret = "test-secret"
	return cfg
}

func TestNewContainer_Validates(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	cfg := DefaultConfig()
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err, "jwt secret is required")

	cfg.Auth.JWTSecret = "x"
	cfg.Lark.Enabled = true
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			c, err := NewContainer(testConfig(driver, t), zap.NewNop())
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, c.Start(ctx))
			assert.True(t, c.Ready())
			assert.Error(t, c.Start(ctx))

			health := c.Health(ctx)
			assert.True(t, health.Overall)
			assert.Equal(t, "handlers: 1", health.Components["dispatcher"].Message)

			admin := &entity.User{ID: "root", Name: "Root", Role: entity.RoleAdmin, Department: entity.DepartmentAdmin}
			sales, err := c.Services().User.Create(ctx, admin, service.NewUser{
				Name: "Sara", Email: "Sara@Example.com", Department: entity.DepartmentSales, Role: entity.RoleManager,
			})
			require.NoError(t, err)

			token, err := c.Identity().Issue(sales)
			require.NoError(t, err)
			actor, err := c.Identity().CurrentUser(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, "sara@example.com", actor.Email)

			order, err := c.Services().Order.Create(ctx, actor, workflow.NewOrder{
				ClientName: "Acme", Amount: decimal.NewFromInt(100), Items: []string{"Cards"},
			})
			require.NoError(t, err)

			listed, err := c.Services().Order.List(ctx, actor, port.OrderFilter{})
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, order.OrderNumber, listed[0].OrderNumber)

			require.NoError(t, c.Close())
			assert.False(t, c.Ready())
			assert.Error(t, c.Close())

			// The order created notification was stored before the dispatcher drained
			inbox, err := c.Repositories().Notification.ListForDepartment(ctx, entity.DepartmentSales, 10)
			if driver == "memory" {
				require.NoError(t, err)
				assert.Len(t, inbox, 1)
			}
		})
	}
}
