package discord

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"station_chat/internal/queue"
	"station_chat/pkg/logger"
)

const maxContentLength = 2000

// WebhookExecutor - часть discordgo.Session, нужная для отправки через webhook
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// AlertRelay пересылает оповещения администраторов в Discord
type AlertRelay struct {
	executor  WebhookExecutor
	webhookID string
	token     string
	log       logger.Logger
}

// NewAlertRelay возвращает nil, если webhook не настроен
func NewAlertRelay(webhookURL string, log logger.Logger) (*AlertRelay, error) {
	if webhookURL == "" {
		log.Info("Discord webhook not configured, alert relay disabled")
		return nil, nil
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return newAlertRelay(session, webhookURL, log)
}

func newAlertRelay(executor WebhookExecutor, webhookURL string, log logger.Logger) (*AlertRelay, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	return &AlertRelay{executor: executor, webhookID: id, token: token, log: log}, nil
}

// ParseWebhookURL извлекает id и token из https://discord.com/api/webhooks/{id}/{token}
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse webhook url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook url: %s", u.Redacted())
}

// truncateRunes режет по границе символа, лимит Discord считается в символах
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func (r *AlertRelay) Send(message string) error {
	content := truncateRunes(message, maxContentLength)

	_, err := r.executor.WebhookExecute(r.webhookID, r.token, false, &discordgo.WebhookParams{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		r.log.Error("Failed to execute discord webhook", "error", err)
		return fmt.Errorf("failed to execute discord webhook: %w", err)
	}
	return nil
}

// HandleAdminAlert - обработчик задачи queue.TypeAdminAlert
func (r *AlertRelay) HandleAdminAlert(ctx context.Context, task queue.Task) error {
	payload, err := queue.ParseAdminAlert(task)
	if err != nil {
		// повтор не поможет
		r.log.Warn("Dropping malformed admin alert task", "error", err)
		return nil
	}
	return r.Send(fmt.Sprintf("[%s] %s", payload.SentAt.UTC().Format("15:04:05"), payload.Message))
}
