package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"station_chat/internal/config"
	"station_chat/internal/database"
	"station_chat/internal/discord"
	"station_chat/internal/handler"
	"station_chat/internal/middleware"
	"station_chat/internal/prototype"
	"station_chat/internal/queue"
	"station_chat/internal/repository"
	"station_chat/internal/service"
	"station_chat/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к PostgreSQL
	dbPool, err := database.NewPool(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := database.EnsureSchema(ctx, dbPool); err != nil {
		appLogger.Fatal("Failed to prepare database schema", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Прототипы каналов и акцентов
	prototypes, err := loadPrototypes(cfg.Chat.PrototypesDir)
	if err != nil {
		appLogger.Fatal("Failed to load chat prototypes", "error", err)
	}
	appLogger.Info("Chat prototypes loaded", "channels", len(prototypes.Channels()))

	// Каталог сессий общий для репозитория и сервисов
	sessions := service.NewSessionDirectory(appLogger)
	repos := repository.NewRepositories(dbPool, rdb, sessions, appLogger)
	hub := handler.NewHub(appLogger)

	// Пересылка алертов в Discord включается только при заданном вебхуке
	var alertQueue queue.Client
	relay, err := discord.NewAlertRelay(cfg.Alerts.DiscordWebhookURL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to configure Discord relay", "error", err)
	}
	if relay != nil {
		client := queue.NewAsynqClient(cfg.Redis)
		defer client.Close()
		alertQueue = client

		alertServer := queue.NewAsynqServer(cfg.Redis, cfg.Alerts, appLogger)
		alertServer.Register(queue.TypeAdminAlert, relay.HandleAdminAlert)
		go func() {
			if err := alertServer.Run(ctx); err != nil {
				appLogger.Error("Alert queue server stopped", "error", err)
			}
		}()
		appLogger.Info("Discord alert relay enabled", "queue", cfg.Alerts.QueueName)
	}

	// Инициализация сервисов
	services := service.NewServices(repos, sessions, prototypes, hub, alertQueue, cfg, appLogger)
	services.Start(ctx)

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(services.AdminAuth, appLogger)
	playerAuthMiddleware := middleware.NewPlayerAuthMiddleware(services.PlayerAuth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(repos.Login, cfg.Admin.LoginRateLimit, cfg.Admin.LoginRateWindow, appLogger)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, hub, cfg, appLogger)
	router := handler.NewRouter(handlers, authMiddleware, playerAuthMiddleware, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	// Останавливаем диспетчер и фоновые пересылки после HTTP
	stop()

	appLogger.Info("Server exited")
}

func loadPrototypes(dir string) (*prototype.Store, error) {
	if dir == "" {
		return prototype.LoadDefaults()
	}
	return prototype.Load(dir)
}
