package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tutorchat/backend/internal/analysis"
	"tutorchat/backend/internal/api/handler"
	"tutorchat/backend/internal/auth"
	"tutorchat/backend/internal/config"
	"tutorchat/backend/internal/hub"
	"tutorchat/backend/internal/ledger"
	"tutorchat/backend/internal/localization"
	"tutorchat/backend/internal/messaging"
	"tutorchat/backend/internal/notify"
	"tutorchat/backend/internal/storage"
	"tutorchat/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Міграції (Створення таблиць)
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

// setupNotifications builds the fan-out channels. Email and push are optional and
// only wired when configured.
func setupNotifications(cfg *config.Config, s *storage.Service) *notify.Service {
	var email notify.EmailChannel
	if cfg.Notify.SMTPHost != "" {
		email = notify.NewSMTPChannel(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort, cfg.Notify.SMTPUsername, cfg.Notify.SMTPPassword, cfg.Notify.EmailFrom, s)
	} else {
		log.Println("WARNING: SMTP is not configured, email notifications are disabled")
	}

	var push notify.PushChannel
	if cfg.Notify.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Notify.TelegramToken)
		if err != nil {
			log.Printf("ERROR: Telegram push disabled: %v", err)
		} else {
			push = telegram.NewPushClient(bot, s)
		}
	} else {
		log.Println("WARNING: TELEGRAM token is not configured, push notifications are disabled")
	}

	return notify.NewService(notify.NewStoreChannel(s), email, push)
}

func main() {
	log.Println("Starting TutorChat Backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret)

	localizer, err := localization.NewLocalizer()
	if err != nil {
		log.Fatalf("Failed to load localization: %v", err)
	}

	// 2. Сповіщення
	notifier := notify.NewMessageNotifier(s, localizer, setupNotifications(cfg, s), cfg.Notify.BaseURL)
	dispatcher := notify.NewDispatcher(notifier, cfg.Notify.Workers, cfg.Notify.QueueSize, config.NotificationTimeout)
	dispatcher.Start()

	notificationHub := hub.NewManagerService()
	go notificationHub.Run(ctx)
	notificationHub.StartPubSubListener(ctx, s)

	if cfg.Notify.TelegramToken != "" {
		botService, err := telegram.NewBotService(cfg.Notify.TelegramToken, s, tokens)
		if err != nil {
			log.Printf("ERROR: Telegram bot is not running: %v", err)
		} else {
			go botService.Start(ctx)
		}
	}

	// 3. Конвеєр повідомлень
	pipeline := messaging.NewPipeline(
		s,
		ledger.NewService(s),
		analysis.NewClassifier(),
		dispatcher,
		storage.NewIdempotencyStore(rdb, config.IdempotencyWindow),
	)

	// 4. Налаштування Gin та роутингу
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	h := handler.NewHandler(pipeline, notificationHub, tokens, cfg.Auth.CookieName, cfg.CORS.AllowedOrigins)
	h.RegisterRoutes(r, handler.RateLimit(rdb, cfg.Server.SendRateQPS))

	server := &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        handler.CORS(r, cfg.CORS.AllowedOrigins),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("INFO: Listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP shutdown: %v", err)
	}
	dispatcher.Stop()
	if err := rdb.Close(); err != nil {
		log.Printf("ERROR: Redis close: %v", err)
	}
}
