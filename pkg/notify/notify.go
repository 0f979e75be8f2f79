// Package notify 通知发送
//
// 出站通知（邮件等）由外部服务承担，这里只发一次 webhook，
// 失败只记日志，绝不影响主流程
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"bloxforge/pkg/config"
	"bloxforge/pkg/logger"
)

// Event 通知事件
type Event struct {
	Type    string                 `json:"type"` // purchase / export_completed / export_failed
	UserID  string                 `json:"user_id"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	SentAt  time.Time              `json:"sent_at"`
}

// Sender 通知发送器
type Sender struct {
	http       *resty.Client
	webhookURL string
}

// NewSender 创建发送器实例
func NewSender() *Sender {
	return &Sender{
		http: resty.New().
			SetTimeout(time.Duration(config.GetInt("notify.timeout", 5)) * time.Second),
		webhookURL: config.GetString("notify.webhook_url"),
	}
}

// Send 发送一次通知，尽力而为
func (s *Sender) Send(ctx context.Context, event *Event) {
	if s.webhookURL == "" {
		return
	}
	event.SentAt = time.Now()

	_, err := s.http.R().
		SetContext(ctx).
		SetBody(event).
		Post(s.webhookURL)
	if err != nil {
		logger.WarnString("通知", event.Type, err.Error())
	}
}
