package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
	"station_chat/internal/config"
	"station_chat/internal/domain"
	"station_chat/internal/middleware"
	"station_chat/internal/prototype"
	"station_chat/internal/repository"
	"station_chat/internal/service"
	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePlayers struct {
	mu      sync.Mutex
	players map[string]*domain.Player
}

func (f *fakePlayers) Create(ctx context.Context, player *domain.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(player.Username)
	if _, ok := f.players[key]; ok {
		return apperrors.ErrUsernameTaken
	}
	p := *player
	f.players[key] = &p
	return nil
}

func (f *fakePlayers) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakePlayers) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[strings.ToLower(username)]; ok {
		return p, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (f *fakeAudit) CreateLog(ctx context.Context, log *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeAudit) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.AuditLog(nil), f.logs...), nil
}

type fakeChatLog struct {
	mu      sync.Mutex
	records []domain.ChatRecord
}

func (f *fakeChatLog) Append(ctx context.Context, record domain.ChatRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeChatLog) UpdateText(ctx context.Context, id domain.RecordID, text string, patchedAt time.Time) error {
	return nil
}

func (f *fakeChatLog) Remove(ctx context.Context, ids ...domain.RecordID) error {
	return nil
}

func (f *fakeChatLog) List(ctx context.Context, limit int) ([]domain.ChatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ChatRecord(nil), f.records...), nil
}

func (f *fakeChatLog) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = nil
	return nil
}

type openAttempts struct{}

func (openAttempts) CheckLimit(ctx context.Context, key string, limit int) (bool, error) {
	return true, nil
}

func (openAttempts) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 1, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{AccessSecret: "test-secret", AccessTTL: time.Minute, Issuer: "station-chat"},
		Admin: config.AdminConfig{
			Username:        "root",
			PasswordHash:    string(hash),
			LoginRateLimit:  5,
			LoginRateWindow: time.Minute,
			Players:         []string{"warden"},
		},
		Chat: config.ChatConfig{
			RateLimitPeriod:              2 * time.Second,
			RateLimitCount:               10,
			RateLimitLength:              2000,
			RateLimitAnnounceAdminsDelay: 15 * time.Second,
			MaxMessageLength:             1000,
			MaxAnnouncementLength:        256,
			SanitizerEnabled:             true,
			OOCEnabled:                   true,
			LOOCEnabled:                  true,
			ObfuscationSeed:              1,
			DispatchQueueSize:            64,
		},
		Alerts: config.AlertsConfig{QueueName: "alerts"},
	}
}

type testServer struct {
	srv      *httptest.Server
	services *service.Services
	hub      *Hub
	audit    *fakeAudit
	tokens   map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := testConfig(t)
	log := logger.Nop()
	store, err := prototype.LoadDefaults()
	if err != nil {
		t.Fatalf("prototypes: %v", err)
	}

	sessions := service.NewSessionDirectory(log)
	audit := &fakeAudit{}
	repos := &repository.Repositories{
		Chat:      repository.NewChatRepository(sessions, log),
		RateLimit: repository.NewRateLimitRepository(log),
		ChatLog:   &fakeChatLog{},
		Audit:     audit,
		Player:    &fakePlayers{players: map[string]*domain.Player{}},
		Login:     openAttempts{},
	}

	hub := NewHub(log)
	services := service.NewServices(repos, sessions, store, hub, nil, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	services.Start(ctx)

	handlers := NewHandlers(services, hub, cfg, log)
	router := NewRouter(
		handlers,
		middleware.NewAuthMiddleware(services.AdminAuth, log),
		middleware.NewPlayerAuthMiddleware(services.PlayerAuth, log),
		middleware.NewRateLimitMiddleware(repos.Login, cfg.Admin.LoginRateLimit, cfg.Admin.LoginRateWindow, log),
		cfg,
		log,
	)

	ts := &testServer{srv: httptest.NewServer(router), services: services, hub: hub, audit: audit, tokens: map[string]string{}}
	t.Cleanup(func() {
		ts.srv.Close()
		cancel()
	})
	return ts
}

// playerToken регистрирует игрока при первом обращении и входит
func (ts *testServer) playerToken(t *testing.T, name string) string {
	t.Helper()
	if token, ok := ts.tokens[name]; ok {
		return token
	}

	creds := RegisterRequest{Username: name, Password: "password-" + name}
	if resp := ts.request(t, http.MethodPost, "/api/v1/auth/register", "", creds); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", name, resp.StatusCode)
	}
	resp := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest(creds))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", name, resp.StatusCode)
	}
	var out service.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	ts.tokens[name] = out.AccessToken
	return out.AccessToken
}

func (ts *testServer) chatURL(query string) string {
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws/chat"
	if query != "" {
		url += "?" + query
	}
	return url
}

func (ts *testServer) dial(t *testing.T, name string) *websocket.Conn {
	t.Helper()
	header := http.Header{"Authorization": []string{"Bearer " + ts.playerToken(t, name)}}
	conn, _, err := websocket.DefaultDialer.Dial(ts.chatURL(""), header)
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// dialStatus пробует подключиться и возвращает код ответа при отказе
func (ts *testServer) dialStatus(t *testing.T, query string, header http.Header) int {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(ts.chatURL(query), header)
	if err == nil {
		conn.Close()
		return http.StatusSwitchingProtocols
	}
	if resp == nil {
		t.Fatalf("dial: %v", err)
	}
	return resp.StatusCode
}

func (ts *testServer) waitFor(t *testing.T, what string, cond func(s *service.Services) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		var ok bool
		if err := ts.services.Dispatcher.Do(context.Background(), func() { ok = cond(ts.services) }); err != nil {
			t.Fatalf("dispatcher: %v", err)
		}
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (ts *testServer) attached(name string) func(s *service.Services) bool {
	return func(s *service.Services) bool {
		session, ok := s.Sessions.SessionByName(name)
		return ok && session.Attached != domain.NoActor
	}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp := ts.request(t, http.MethodPost, "/api/v1/admin/login", "", LoginRequest{Username: "root", Password: "hunter22"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	var out service.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return out.AccessToken
}

type wireEvent struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, eventType domain.EventType, payload interface{}) {
	t.Helper()
	if err := conn.WriteJSON(domain.Event{Type: eventType, Payload: payload}); err != nil {
		t.Fatalf("write %s: %v", eventType, err)
	}
}

// expect читает события до первого нужного типа
func expect(t *testing.T, conn *websocket.Conn, eventType domain.EventType, out interface{}) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var event wireEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("waiting for %s: %v", eventType, err)
		}
		if event.Type != eventType {
			continue
		}
		if out != nil {
			if err := json.Unmarshal(event.Payload, out); err != nil {
				t.Fatalf("decode %s: %v", eventType, err)
			}
		}
		return
	}
}

func entityAt(name string, x float64) domain.AttachRequest {
	return domain.AttachRequest{
		Name:     name,
		Position: domain.Position{MapID: 1, X: x},
		Language: "common",
	}
}

// collectUntil читает доставки, пока не придет сообщение из канала stop
func collectUntil(t *testing.T, conn *websocket.Conn, stop domain.ChannelID) []domain.ChatDelivery {
	t.Helper()
	var seen []domain.ChatDelivery
	for {
		var delivery domain.ChatDelivery
		expect(t, conn, domain.EventDelivery, &delivery)
		if delivery.Channel == stop {
			return seen
		}
		seen = append(seen, delivery)
	}
}
