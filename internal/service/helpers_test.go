package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"station_chat/internal/config"
	"station_chat/internal/domain"
	"station_chat/internal/prototype"
	"station_chat/internal/queue"
	"station_chat/internal/repository"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

type sentEvent struct {
	session uuid.UUID
	event   domain.Event
}

type fakeTransport struct {
	mu         sync.Mutex
	sent       []sentEvent
	broadcasts []domain.Event
}

func (t *fakeTransport) Send(sessionID uuid.UUID, event domain.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sentEvent{session: sessionID, event: event})
}

func (t *fakeTransport) Broadcast(event domain.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.broadcasts = append(t.broadcasts, event)
}

func (t *fakeTransport) deliveriesFor(sessionID uuid.UUID) []domain.ChatDelivery {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []domain.ChatDelivery
	for _, s := range t.sent {
		if s.session != sessionID || s.event.Type != domain.EventDelivery {
			continue
		}
		out = append(out, s.event.Payload.(domain.ChatDelivery))
	}
	return out
}

func (t *fakeTransport) rejectionsFor(sessionID uuid.UUID) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, s := range t.sent {
		if s.session == sessionID && s.event.Type == domain.EventRejected {
			out = append(out, s.event.Payload.(domain.ChatRejection).Reason)
		}
	}
	return out
}

func (t *fakeTransport) eventsOfType(eventType domain.EventType) []sentEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []sentEvent
	for _, s := range t.sent {
		if s.event.Type == eventType {
			out = append(out, s)
		}
	}
	return out
}

type fakeAlerts struct {
	messages []string
}

func (a *fakeAlerts) AlertAdmins(message string) { a.messages = append(a.messages, message) }
func (a *fakeAlerts) Run(ctx context.Context)    {}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
	err  error
}

func (r *fakeAuditRepo) CreateLog(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.AuditLog, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

func (r *fakeAuditRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.logs {
		out = append(out, l.EventType)
	}
	return out
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*domain.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string]*domain.Player)}
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := nameKey(player.Username)
	if _, ok := r.players[key]; ok {
		return apperrors.ErrUsernameTaken
	}
	p := *player
	r.players[key] = &p
	return nil
}

func (r *fakePlayerRepo) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.ID == id {
			p.LastSeenAt = time.Now()
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

// add заводит игрока без пароля
func (r *fakePlayerRepo) add(username string) *domain.Player {
	p := &domain.Player{ID: uuid.New(), Username: username, CreatedAt: time.Now(), LastSeenAt: time.Now()}
	_ = r.Create(context.Background(), p)
	return p
}

func (r *fakePlayerRepo) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[nameKey(username)]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return p, nil
}

type fakeQueueClient struct {
	mu    sync.Mutex
	tasks []queue.Task
	opts  []queue.EnqueueOption
}

func (c *fakeQueueClient) Enqueue(ctx context.Context, t queue.Task, opts ...queue.EnqueueOption) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, t)
	c.opts = append(c.opts, opts...)
	return uuid.NewString(), nil
}

func (c *fakeQueueClient) Close() error { return nil }

func (c *fakeQueueClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		RateLimitPeriod:              2 * time.Second,
		RateLimitCount:               10,
		RateLimitLength:              2000,
		RateLimitAnnounceAdmins:      true,
		RateLimitAnnounceAdminsDelay: 15 * time.Second,
		MaxMessageLength:             1000,
		MaxAnnouncementLength:        256,
		SanitizerEnabled:             true,
		OOCEnabled:                   true,
		LOOCEnabled:                  true,
		ObfuscationSeed:              1,
		DispatchQueueSize:            16,
	}
}

func loadPrototypes(t *testing.T) *prototype.Store {
	t.Helper()
	store, err := prototype.LoadDefaults()
	if err != nil {
		t.Fatalf("failed to load prototypes: %v", err)
	}
	return store
}

// pipeline - конвейер без диспетчера, вызовы идут из теста напрямую
type pipeline struct {
	sessions  SessionDirectory
	world     World
	repo      repository.ChatRepository
	rateRepo  repository.RateLimitRepository
	transport *fakeTransport
	alerts    *fakeAlerts
	clock     *fakeClock
	intake    IntakeService
}

func newPipeline(t *testing.T, cfg config.ChatConfig) *pipeline {
	t.Helper()

	log := logger.Nop()
	store := loadPrototypes(t)
	loc := NewLocalizer()

	p := &pipeline{
		sessions:  NewSessionDirectory(log),
		world:     NewWorld(log),
		rateRepo:  repository.NewRateLimitRepository(log),
		transport: &fakeTransport{},
		alerts:    &fakeAlerts{},
		clock:     newFakeClock(),
	}
	p.repo = repository.NewChatRepository(p.sessions, log)

	rateLimit := newRateLimitService(p.rateRepo, cfg, p.alerts, loc, p.clock.Now, log)

	chain := NewValidationChain(log)
	for _, v := range DefaultValidators(cfg, loc) {
		chain.Register(v)
	}

	sanitizer := NewSanitizer()
	sanitizer.Register(NewICSanitizeStep(store, cfg.SanitizerEnabled))
	sanitizer.Register(NewEmoteSanitizeStep(store, cfg.SanitizerEnabled))
	sanitizer.Register(NewOOCSanitizeStep())

	rng := NewRand(cfg.ObfuscationSeed)
	distribution := NewDistributionService(p.sessions, p.world, store, p.transport, log)
	distribution.AddMessageMutator(NewAccentMutator(store))
	distribution.AddRecipientMutator(NewWhisperMutator(rng, loc))
	distribution.AddRecipientMutator(NewLanguageMutator(rng))

	p.repo.Subscribe(distribution)
	p.repo.Subscribe(NewNotificationService(p.transport, loc, log))

	p.intake = NewIntakeService(p.repo, p.sessions, p.world, store, rateLimit, chain, sanitizer, p.transport, loc, log)
	return p
}

// join подключает игрока и, если задана сущность, привязывает ее
func (p *pipeline) join(name string, admin bool, entity *domain.Entity) domain.Session {
	session := domain.Session{ID: uuid.New(), Name: name, Status: domain.SessionConnected, IsAdmin: admin}
	p.sessions.Connect(session)
	if entity != nil {
		e := *entity
		if e.Name == "" {
			e.Name = name
		}
		actor := p.world.Upsert(e)
		p.sessions.Attach(session.ID, actor)
		session.Attached = actor
		session.Status = domain.SessionInGame
	}
	return session
}

func (p *pipeline) say(session domain.Session, channel domain.ChannelID, text string) IntakeResult {
	return p.intake.Submit(domain.ChatAttempt{Author: session.ID, Channel: channel, Text: text})
}

func human(x, y float64) *domain.Entity {
	return &domain.Entity{Position: domain.Position{MapID: 1, X: x, Y: y}, Alive: true, Language: "common"}
}

func ghost(x, y float64) *domain.Entity {
	return &domain.Entity{Position: domain.Position{MapID: 1, X: x, Y: y}, Ghost: true}
}
