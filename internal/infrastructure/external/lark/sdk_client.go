package lark

import (
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

// Config holds Lark bot configuration
type Config struct {
	AppID     string
	AppSecret string
	// ChatIDs maps each department to the group chat that receives its notifications
	ChatIDs map[entity.Department]string
}

// NewSDKClient creates a Lark SDK client with tenant token caching
func NewSDKClient(cfg Config) *lark.Client {
	return lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
}
