package config

import (
	"strings"

	"github.com/garyjia/print-order-tracker/internal/container"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// ToContainerConfig converts the file-based Config into the container's configuration.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Driver:          c.Database.Driver,
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Auth: container.AuthConfig{
			JWTSecret: c.Auth.JWTSecret,
			Issuer:    c.Auth.Issuer,
			TokenTTL:  c.Auth.TokenTTL,
		},
		Lark: container.LarkConfig{
			Enabled:   c.Lark.Enabled,
			AppID:     c.Lark.AppID,
			AppSecret: c.Lark.AppSecret,
			ChatIDs:   c.Lark.chatIDs(),
		},
		Workflow: container.WorkflowConfig{
			History: domainwf.HistoryPolicy{
				EditWindow: c.Workflow.EditWindow,
				UndoWindow: c.Workflow.UndoWindow,
			},
			ActionTimeout: c.Workflow.ActionTimeout,
			NotifyTimeout: c.Workflow.NotifyTimeout,
		},
		Export: container.ExportConfig{
			SheetName: c.Export.SheetName,
		},
		Server: container.ServerConfig{
			Host:            c.Server.Host,
			Port:            c.Server.Port,
			Mode:            c.Server.Mode,
			ReadTimeout:     c.Server.ReadTimeout,
			WriteTimeout:    c.Server.WriteTimeout,
			ShutdownTimeout: c.Server.ShutdownTimeout,
		},
	}
}

// chatIDs resolves the lower-cased keys viper produces back to departments
func (l LarkConfig) chatIDs() map[entity.Department]string {
	out := make(map[entity.Department]string)
	for _, dept := range entity.WorkflowDepartments {
		if id := l.Chats[strings.ToLower(dept.String())]; id != "" {
			out[dept] = id
		}
	}
	return out
}
