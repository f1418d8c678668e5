package service

import (
	"context"
	"testing"
	"time"

	"station_chat/internal/domain"
	"station_chat/internal/queue"
	"station_chat/pkg/logger"
)

func TestAlertAdminsReachesOnlyAdmins(t *testing.T) {
	p := newPipeline(t, testChatConfig())
	admin := p.join("root", true, nil)
	p.join("alice", false, nil)

	alerts := NewAlertService(p.sessions, p.transport, nil, "alerts", logger.Nop())
	alerts.AlertAdmins("Player alice breached chat rate limits. Watch them!")

	events := p.transport.eventsOfType(domain.EventAdminAlert)
	if len(events) != 1 || events[0].session != admin.ID {
		t.Fatalf("expected one alert for the admin, got %+v", events)
	}
	if msg := events[0].event.Payload.(domain.AdminAlert).Message; msg != "Player alice breached chat rate limits. Watch them!" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAlertAdminsRelaysThroughQueue(t *testing.T) {
	p := newPipeline(t, testChatConfig())
	client := &fakeQueueClient{}
	alerts := NewAlertService(p.sessions, p.transport, client, "alerts", logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go alerts.Run(ctx)

	alerts.AlertAdmins("first")
	alerts.AlertAdmins("second")

	deadline := time.Now().Add(time.Second)
	for client.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 enqueued tasks, got %d", client.count())
		}
		time.Sleep(5 * time.Millisecond)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	payload, err := queue.ParseAdminAlert(client.tasks[0])
	if err != nil || payload.Message != "first" {
		t.Fatalf("unexpected first task %+v err=%v", payload, err)
	}
	if client.tasks[0].Type != queue.TypeAdminAlert || client.opts[0].Queue != "alerts" {
		t.Fatalf("unexpected task routing %+v %+v", client.tasks[0], client.opts[0])
	}
}
