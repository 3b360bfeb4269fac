package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	coreconfig "github.com/sorogrupos/jobcast/core/config"
	scheduledomain "github.com/sorogrupos/jobcast/schedules/domain"
)

// webhookSender hands rows to the external delivery gateway, which owns the
// row's publish_status from that point on. Without a configured URL it only
// logs, so local runs never reach out.
type webhookSender struct {
	url     string
	timeout time.Duration
}

func newLogSender() *webhookSender {
	cfg := coreconfig.Global.Sender
	return &webhookSender{
		url:     cfg.WebhookURL,
		timeout: time.Duration(cfg.Timeout) * time.Second,
	}
}

func (s *webhookSender) Send(ctx context.Context, row scheduledomain.ScheduleRow) error {
	if s.url == "" {
		logrus.Infof("[SENDER] (dry-run) row %s -> group %s", row.ID, row.GroupID)
		return nil
	}

	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row %s: %w", row.ID, err)
	}

	agent := fiber.Post(s.url)
	agent.ContentType(fiber.MIMEApplicationJSON)
	agent.Body(payload)
	agent.Timeout(s.timeout)

	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("delivery call failed for row %s: %v", row.ID, errs[0])
	}
	if status >= 300 {
		return fmt.Errorf("delivery gateway returned %d for row %s", status, row.ID)
	}
	return nil
}
