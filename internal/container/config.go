// Package container provides dependency injection and lifecycle management
// for the order tracker.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// Config holds all configuration for the Container.
type Config struct {
	Database DatabaseConfig
	Auth     AuthConfig
	Lark     LarkConfig
	Workflow WorkflowConfig
	Export   ExportConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver is "sqlite" or "memory"
	Driver string

	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MigrationsDir replaces the embedded migrations when set
	MigrationsDir string
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// LarkConfig holds Lark bot settings.
type LarkConfig struct {
	// Enabled turns on chat delivery. Notifications are still stored when false.
	Enabled bool

	AppID     string
	AppSecret string

	// ChatIDs maps departments to the group chat that hears about their orders
	ChatIDs map[entity.Department]string
}

// WorkflowConfig holds history windows and timeouts.
type WorkflowConfig struct {
	History       domainwf.HistoryPolicy
	ActionTimeout time.Duration
	NotifyTimeout time.Duration
}

// ExportConfig holds report settings.
type ExportConfig struct {
	SheetName string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       "sqlite",
			Path:         "data/orders.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Auth: AuthConfig{
			Issuer:   "print-order-tracker",
			TokenTTL: 12 * time.Hour,
		},
		Workflow: WorkflowConfig{
			History:       domainwf.DefaultHistoryPolicy(),
			ActionTimeout: 10 * time.Second,
			NotifyTimeout: 15 * time.Second,
		},
		Export: ExportConfig{
			SheetName: "Orders",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Lark.Enabled && (c.Lark.AppID == "" || c.Lark.AppSecret == "") {
		return fmt.Errorf("lark.app_id and lark.app_secret are required when lark is enabled")
	}

	return nil
}
