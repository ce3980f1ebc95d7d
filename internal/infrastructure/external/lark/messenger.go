package lark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

const (
	receiveIDTypeChat = "chat_id"
	msgTypeText       = "text"
)

// sendFunc delivers one message body to a chat
type sendFunc func(ctx context.Context, body *larkIm.CreateMessageReqBody) (*larkIm.CreateMessageResp, error)

// Messenger implements port.NotificationSink by posting a text message
// to the group chat of every addressed department
type Messenger struct {
	send    sendFunc
	chatIDs map[entity.Department]string
	logger  *zap.Logger
}

// NewMessenger creates a notification sink backed by the IM message API
func NewMessenger(client *lark.Client, cfg Config, logger *zap.Logger) *Messenger {
	send := func(ctx context.Context, body *larkIm.CreateMessageReqBody) (*larkIm.CreateMessageResp, error) {
		req := larkIm.NewCreateMessageReqBuilder().
			ReceiveIdType(receiveIDTypeChat).
			Body(body).
			Build()
		return client.Im.Message.Create(ctx, req)
	}
	return newMessenger(send, cfg.ChatIDs, logger)
}

func newMessenger(send sendFunc, chatIDs map[entity.Department]string, logger *zap.Logger) *Messenger {
	return &Messenger{
		send:    send,
		chatIDs: chatIDs,
		logger:  logger,
	}
}

// Notify sends n to each department that has a chat configured.
// Departments without one are skipped.
func (m *Messenger) Notify(ctx context.Context, n *entity.Notification) error {
	content, err := textContent(n)
	if err != nil {
		return err
	}

	var errs []error
	for _, dept := range n.Departments {
		chatID := m.chatIDs[dept]
		if chatID == "" {
			m.logger.Debug("No chat configured for department", zap.String("department", dept.String()))
			continue
		}
		if err := m.sendText(ctx, chatID, content); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dept, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Messenger) sendText(ctx context.Context, chatID, content string) error {
	body := larkIm.NewCreateMessageReqBodyBuilder().
		ReceiveId(chatID).
		MsgType(msgTypeText).
		Content(content).
		Build()

	resp, err := m.send(ctx, body)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("chat_id", chatID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("chat_id", chatID))
	return nil
}

// textContent renders the notification as the JSON body of a text message
func textContent(n *entity.Notification) (string, error) {
	text := fmt.Sprintf("%s\n%s", n.Title, n.Message)
	if n.Priority == entity.PriorityHigh {
		text = "[URGENT] " + text
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	return string(body), nil
}

var _ port.NotificationSink = (*Messenger)(nil)
