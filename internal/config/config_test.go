package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
auth:
  jwt_secret: from-file
lark:
  enabled: true
  app_id: cli_a
  app_secret: secret
  chats:
    Sales: oc_sales
    production: oc_prod
workflow:
  undo_window: 10m
`)

	cfg, err := LoadWithEnvFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/orders.db", cfg.Database.Path)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Workflow.EditWindow)
	assert.Equal(t, 10*time.Minute, cfg.Workflow.UndoWindow)
	assert.Equal(t, 10*time.Second, cfg.Workflow.ActionTimeout)

	cc := cfg.ToContainerConfig()
	assert.Equal(t, map[entity.Department]string{
		entity.DepartmentSales:      "oc_sales",
		entity.DepartmentProduction: "oc_prod",
	}, cc.Lark.ChatIDs)
	assert.Equal(t, 10*time.Minute, cc.Workflow.History.UndoWindow)
	assert.NoError(t, cc.Validate())
}

func TestLoad_EnvFileOverridesSecrets(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "database:\n  driver: memory\n")
	envFile := writeFile(t, dir, ".env", "AUTH_JWT_SECRET=from-env\n")
	t.Cleanup(func() { os.Unsetenv("AUTH_JWT_SECRET") })

	cfg, err := LoadWithEnvFile(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadWithEnvFile(filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err)

	path := writeFile(t, dir, "bad.yaml", `
database:
  driver: postgres
lark:
  enabled: true
`)
	_, err = LoadWithEnvFile(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "auth.jwt_secret")
	assert.Contains(t, err.Error(), "lark.app_id")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: DriverMemory},
			Auth:     AuthConfig{JWTSecret: "x"},
			Workflow: WorkflowConfig{EditWindow: time.Hour, UndoWindow: time.Minute, ActionTimeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "sqlite path", mutate: func(c *Config) { c.Database.Driver = DriverSQLite }},
		{name: "undo window", mutate: func(c *Config) { c.Workflow.UndoWindow = 0 }},
		{name: "action timeout", mutate: func(c *Config) { c.Workflow.ActionTimeout = 0 }},
		{name: "lark secret", mutate: func(c *Config) { c.Lark = LarkConfig{Enabled: true, AppID: "a"} }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
