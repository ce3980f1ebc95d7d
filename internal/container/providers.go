package container

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/dispatcher"
	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/application/service"
	"github.com/garyjia/print-order-tracker/internal/application/workflow"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/infrastructure/auth"
	"github.com/garyjia/print-order-tracker/internal/infrastructure/export"
	infraLark "github.com/garyjia/print-order-tracker/internal/infrastructure/external/lark"
	"github.com/garyjia/print-order-tracker/internal/infrastructure/persistence/memory"
	"github.com/garyjia/print-order-tracker/internal/infrastructure/persistence/repository"
	"github.com/garyjia/print-order-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/print-order-tracker/migrations"
	"github.com/garyjia/print-order-tracker/pkg/database"
)

// DatabaseBundle holds the document store and its transaction manager.
// SqlDB is nil for the memory driver.
type DatabaseBundle struct {
	SqlDB     *database.DB
	Store     port.DocumentStore
	TxManager port.TransactionManager
}

// ProvideDatabase opens the configured store and applies pending migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if cfg.Driver == "memory" {
		store := memory.NewDocumentStore(logger,
			memory.WithUniqueField(entity.CollectionOrders, "order_number"),
			memory.WithUniqueField(entity.CollectionUsers, "email"),
		)
		logger.Warn("Using in-memory document store; data is lost on restart")
		return &DatabaseBundle{Store: store, TxManager: store}, nil
	}

	sqlDB, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(sqlDB, logger)
	if cfg.MigrationsDir != "" {
		err = migrator.RunMigrationsDir(cfg.MigrationsDir)
	} else {
		err = migrator.RunMigrations(migrations.FS)
	}
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db := sqlite.NewDB(sqlDB.DB, logger)
	return &DatabaseBundle{
		SqlDB:     sqlDB,
		Store:     sqlite.NewDocumentStore(db, logger),
		TxManager: db,
	}, nil
}

// ProvideRepositories creates the repositories over a document store.
func ProvideRepositories(store port.DocumentStore, logger *zap.Logger) (*RepositoryBundle, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Order:        repository.NewOrderRepository(store, logger),
		User:         repository.NewUserRepository(store, logger),
		Notification: repository.NewNotificationRepository(store, logger),
	}, nil
}

// ProvideNotificationSink returns the Lark messenger, or nil when chat delivery is disabled.
func ProvideNotificationSink(cfg *LarkConfig, logger *zap.Logger) port.NotificationSink {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Lark delivery disabled; notifications are stored only")
		return nil
	}

	larkCfg := infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		ChatIDs:   cfg.ChatIDs,
	}
	return infraLark.NewMessenger(infraLark.NewSDKClient(larkCfg), larkCfg, logger)
}

// ProvideIdentity creates the bearer token identity provider.
func ProvideIdentity(cfg *AuthConfig, users port.UserRepository, logger *zap.Logger) (*auth.JWTProvider, error) {
	return auth.NewJWTProvider(auth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.Issuer,
		TTL:    cfg.TokenTTL,
	}, users, logger)
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) dispatcher.Dispatcher {
	return dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger.Named("dispatcher")}))
}

// ProvideWorkflowEngine creates the order workflow engine.
func ProvideWorkflowEngine(cfg *WorkflowConfig) workflow.WorkflowEngine {
	var opts []workflow.EngineOption
	if cfg.History.EditWindow > 0 && cfg.History.UndoWindow > 0 {
		opts = append(opts, workflow.WithHistoryPolicy(cfg.History))
	}
	return workflow.NewEngine(opts...)
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Engine     workflow.WorkflowEngine
	Dispatcher dispatcher.Dispatcher
	Sink       port.NotificationSink
	Workflow   *WorkflowConfig
	Export     *ExportConfig
	Logger     *zap.Logger
}

// ProvideServices creates the application services and subscribes notifications to the dispatcher.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	logger := &zapLoggerAdapter{logger: deps.Logger}

	orders := service.NewOrderService(
		deps.Repos.Order,
		deps.TxManager,
		deps.Engine,
		deps.Dispatcher,
		logger,
		service.WithActionTimeout(deps.Workflow.ActionTimeout),
		service.WithExporter(export.NewExcelExporter(deps.Export.SheetName, deps.Logger)),
	)

	notifications := service.NewNotificationService(
		deps.Repos.Notification,
		deps.Sink,
		logger,
		service.WithNotifyTimeout(deps.Workflow.NotifyTimeout),
	)
	notifications.Register(deps.Dispatcher)

	return &ServiceBundle{
		Order:        orders,
		User:         service.NewUserService(deps.Repos.User, deps.TxManager, logger),
		Notification: notifications,
	}, nil
}
