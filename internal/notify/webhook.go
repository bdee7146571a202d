package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookPayload is the JSON body posted to the fallback webhook.
type WebhookPayload struct {
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	TargetWakeAt time.Time `json:"target_wake_at"`
}

// WebhookSender posts the fallback to an HTTP endpoint.
type WebhookSender struct {
	httpClient *resty.Client
	url        string
	log        *zap.Logger
}

// NewWebhookSender creates a sender for url.
func NewWebhookSender(url string, log *zap.Logger) *WebhookSender {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookSender{httpClient: client, url: url, log: log}
}

func (s *WebhookSender) Notify(ctx context.Context, targetAt time.Time) error {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(WebhookPayload{
			Title:        "Wake-up time",
			Body:         "Check the alarm on your device.",
			TargetWakeAt: targetAt,
		}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("post fallback webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fallback webhook returned %d", resp.StatusCode())
	}

	s.log.Info("fallback webhook delivered",
		zap.Int("status_code", resp.StatusCode()),
		zap.Time("target_wake_at", targetAt),
	)
	return nil
}
