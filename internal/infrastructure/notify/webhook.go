package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

var _ inventory.NotificationSink = (*WebhookSink)(nil)

// WebhookSink publica la alerta como JSON por HTTP POST.
type WebhookSink struct {
	client *resty.Client
	url    string
}

// NewWebhookSink construye el sink. timeout <= 0 usa 10s.
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "materiales-api/notify")
	return &WebhookSink{client: client, url: url}
}

// Emit envía la alerta; cualquier respuesta no 2xx es un error.
func (s *WebhookSink) Emit(ctx context.Context, alert entity.StockAlert) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Alert-Id", alert.ID).
		SetBody(alert).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook: respuesta %d", resp.StatusCode())
	}
	return nil
}
