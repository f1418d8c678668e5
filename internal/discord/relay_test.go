package discord

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"station_chat/internal/queue"
	"station_chat/pkg/logger"
)

type fakeExecutor struct {
	webhookID string
	token     string
	params    []*discordgo.WebhookParams
	err       error
}

func (f *fakeExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.webhookID = webhookID
	f.token = token
	f.params = append(f.params, data)
	return nil, f.err
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		id      string
		token   string
		wantErr bool
	}{
		{name: "discord", raw: "https://discord.com/api/webhooks/123/abc", id: "123", token: "abc"},
		{name: "versioned", raw: "https://discord.com/api/v10/webhooks/456/def/", id: "456", token: "def"},
		{name: "missing token", raw: "https://discord.com/api/webhooks/123", wantErr: true},
		{name: "not a webhook", raw: "https://example.com/hooks", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, token, err := ParseWebhookURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.id || token != tt.token {
				t.Fatalf("got %s/%s, want %s/%s", id, token, tt.id, tt.token)
			}
		})
	}
}

func TestHandleAdminAlert(t *testing.T) {
	exec := &fakeExecutor{}
	relay, err := newAlertRelay(exec, "https://discord.com/api/webhooks/1/tok", logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, _ := queue.NewAdminAlertTask("Player bob breached chat rate limits. Watch them!", time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC))
	if err := relay.HandleAdminAlert(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.webhookID != "1" || exec.token != "tok" {
		t.Fatalf("unexpected webhook %s/%s", exec.webhookID, exec.token)
	}
	if len(exec.params) != 1 || exec.params[0].Content != "[10:05:00] Player bob breached chat rate limits. Watch them!" {
		t.Fatalf("unexpected content: %+v", exec.params)
	}
}

func TestHandleAdminAlertPropagatesSendError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("boom")}
	relay, _ := newAlertRelay(exec, "https://discord.com/api/webhooks/1/tok", logger.Nop())

	task, _ := queue.NewAdminAlertTask("x", time.Now())
	if err := relay.HandleAdminAlert(context.Background(), task); err == nil {
		t.Fatal("expected error to trigger retry")
	}
}

func TestHandleAdminAlertDropsMalformedPayload(t *testing.T) {
	exec := &fakeExecutor{}
	relay, _ := newAlertRelay(exec, "https://discord.com/api/webhooks/1/tok", logger.Nop())

	if err := relay.HandleAdminAlert(context.Background(), queue.Task{Type: queue.TypeAdminAlert, Payload: []byte("nope")}); err != nil {
		t.Fatalf("malformed payload must not be retried: %v", err)
	}
	if len(exec.params) != 0 {
		t.Fatal("nothing should be sent")
	}
}

func TestSendTruncatesLongContent(t *testing.T) {
	exec := &fakeExecutor{}
	relay, _ := newAlertRelay(exec, "https://discord.com/api/webhooks/1/tok", logger.Nop())

	if err := relay.Send(strings.Repeat("a", maxContentLength+50)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(exec.params[0].Content); got != maxContentLength {
		t.Fatalf("expected %d chars, got %d", maxContentLength, got)
	}
}

func TestSendTruncatesOnRuneBoundary(t *testing.T) {
	exec := &fakeExecutor{}
	relay, _ := newAlertRelay(exec, "https://discord.com/api/webhooks/1/tok", logger.Nop())

	message := strings.Repeat("a", maxContentLength-1) + strings.Repeat("ж", 10)
	if err := relay.Send(message); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := exec.params[0].Content
	if !utf8.ValidString(content) {
		t.Fatal("truncated content must stay valid utf-8")
	}
	if got := utf8.RuneCountInString(content); got != maxContentLength || !strings.HasSuffix(content, "ж") {
		t.Fatalf("expected %d runes ending in a full rune, got %d", maxContentLength, got)
	}

	short := "тревога"
	if err := relay.Send(short); err != nil || exec.params[1].Content != short {
		t.Fatalf("short content is sent as is, got %q err=%v", exec.params[1].Content, err)
	}
}
