package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/config"
	"github.com/garyjia/print-order-tracker/internal/container"
	httpapi "github.com/garyjia/print-order-tracker/internal/interfaces/http"
	"github.com/garyjia/print-order-tracker/pkg/utils"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config.yaml")
	adminEmail := flag.String("bootstrap-admin-email", "", "Create the first administrator when no users exist")
	adminName := flag.String("bootstrap-admin-name", "Administrator", "Name of the bootstrap administrator")
	issueFor := flag.String("issue-token", "", "Print a bearer token for the user id and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    "print-order-tracker",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting print order tracker",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Driver))

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Start(ctx); err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Container shutdown error", zap.Error(err))
		}
	}()

	if *adminEmail != "" {
		admin, created, err := c.Services().User.Bootstrap(ctx, *adminName, *adminEmail)
		switch {
		case err != nil:
			logger.Fatal("Failed to bootstrap administrator", zap.Error(err))
		case created:
			logger.Info("Bootstrap administrator created", zap.String("user_id", admin.ID))
			*issueFor = admin.ID
		default:
			logger.Info("Users already exist; bootstrap skipped")
		}
	}

	if *issueFor != "" {
		if err := printToken(ctx, c, *issueFor); err != nil {
			logger.Fatal("Failed to issue token", zap.Error(err))
		}
		return
	}

	server := httpapi.NewServer(
		serverConfig(c.Config().Server),
		httpapi.Services{
			Orders:        c.Services().Order,
			Users:         c.Services().User,
			Notifications: c.Services().Notification,
		},
		c.Identity(),
		c,
		c.NamedLogger("http"),
	)

	logger.Info("Server listening", zap.String("address", server.Address()))
	if err := server.Start(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server exited gracefully")
}

// printToken writes a bearer token for an existing user to stdout
func printToken(ctx context.Context, c *container.Container, userID string) error {
	user, err := c.Services().User.Get(ctx, userID)
	if err != nil {
		return err
	}
	token, err := c.Identity().Issue(user)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func serverConfig(s container.ServerConfig) httpapi.ServerConfig {
	return httpapi.ServerConfig{
		Host:            s.Host,
		Port:            s.Port,
		Mode:            s.Mode,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}
}
