package service

import (
	"context"

	"station_chat/internal/config"
	"station_chat/internal/domain"
	"station_chat/internal/queue"
	"station_chat/internal/repository"
	"station_chat/pkg/logger"
)

type Services struct {
	Dispatcher   *Dispatcher
	Sessions     SessionDirectory
	World        World
	Localizer    Localizer
	Alerts       AlertService
	RateLimit    RateLimitService
	Validation   *ValidationChain
	Sanitizer    *Sanitizer
	Intake       IntakeService
	Distribution *DistributionService
	Notification *NotificationService
	ChatLog      *ChatLogMirror
	Chat         ChatService
	Audit        AuditService
	Moderation   ModerationService
	Lifecycle    LifecycleService
	AdminAuth    AdminAuthService
	PlayerAuth   PlayerAuthService
}

// NewServices собирает конвейер. sessions должен быть тем же каталогом, что передан в репозитории.
func NewServices(
	repos *repository.Repositories,
	sessions SessionDirectory,
	prototypes Prototypes,
	transport Transport,
	alertQueue queue.Client,
	cfg *config.Config,
	log logger.Logger,
) *Services {
	dispatcher := NewDispatcher(cfg.Chat.DispatchQueueSize, log)
	world := NewWorld(log)
	loc := NewLocalizer()
	rng := NewRand(cfg.Chat.ObfuscationSeed)

	alerts := NewAlertService(sessions, transport, alertQueue, cfg.Alerts.QueueName, log)
	rateLimit := NewRateLimitService(repos.RateLimit, cfg.Chat, alerts, loc, log)

	chain := NewValidationChain(log)
	for _, v := range DefaultValidators(cfg.Chat, loc) {
		chain.Register(v)
	}

	sanitizer := NewSanitizer()
	sanitizer.Register(NewICSanitizeStep(prototypes, cfg.Chat.SanitizerEnabled))
	sanitizer.Register(NewEmoteSanitizeStep(prototypes, cfg.Chat.SanitizerEnabled))
	sanitizer.Register(NewOOCSanitizeStep())

	intake := NewIntakeService(repos.Chat, sessions, world, prototypes, rateLimit, chain, sanitizer, transport, loc, log)

	distribution := NewDistributionService(sessions, world, prototypes, transport, log)
	distribution.AddMessageMutator(NewAccentMutator(prototypes))
	distribution.AddRecipientMutator(NewWhisperMutator(rng, loc))
	distribution.AddRecipientMutator(NewLanguageMutator(rng))

	notification := NewNotificationService(transport, loc, log)
	chatLog := NewChatLogMirror(repos.ChatLog, log)

	repos.Chat.Subscribe(distribution)
	repos.Chat.Subscribe(notification)
	repos.Chat.Subscribe(chatLog)

	audit := NewAuditService(repos.Audit, log)

	services := &Services{
		Dispatcher:   dispatcher,
		Sessions:     sessions,
		World:        world,
		Localizer:    loc,
		Alerts:       alerts,
		RateLimit:    rateLimit,
		Validation:   chain,
		Sanitizer:    sanitizer,
		Intake:       intake,
		Distribution: distribution,
		Notification: notification,
		ChatLog:      chatLog,
		Chat:         NewChatService(dispatcher, sessions, world, rateLimit, intake, log),
		Audit:        audit,
		Moderation:   NewModerationService(dispatcher, repos.Chat, repos.ChatLog, repos.Player, sessions, audit, log),
		Lifecycle:    NewLifecycleService(dispatcher, repos.Chat, audit, log),
		AdminAuth:    NewAdminAuthService(cfg.Admin, cfg.JWT, log),
		PlayerAuth:   NewPlayerAuthService(repos.Player, cfg.Admin.Players, cfg.JWT, log),
	}

	log.Info("Services initialized", "verbal_validators", chain.Len(domain.KindVerbal))

	return services
}

// Start запускает диспетчер и фоновые пересылки
func (s *Services) Start(ctx context.Context) {
	go s.Dispatcher.Run(ctx)
	go s.Alerts.Run(ctx)
	go s.ChatLog.Run(ctx)
}
