package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/shadowmeet/internal/chat"
	"github.com/Dias221467/shadowmeet/internal/config"
	"github.com/Dias221467/shadowmeet/internal/database"
	"github.com/Dias221467/shadowmeet/internal/handlers"
	"github.com/Dias221467/shadowmeet/internal/jobs"
	"github.com/Dias221467/shadowmeet/internal/queue"
	"github.com/Dias221467/shadowmeet/internal/repository"
	"github.com/Dias221467/shadowmeet/internal/scheduler"
	"github.com/Dias221467/shadowmeet/internal/server"
	"github.com/Dias221467/shadowmeet/internal/services"
	"github.com/Dias221467/shadowmeet/internal/storage"
	"github.com/Dias221467/shadowmeet/pkg/email"
	"github.com/Dias221467/shadowmeet/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to the .env file")
	port := pflag.String("port", "", "listen port (overrides PORT)")
	pflag.Parse()

	// Load configuration from .env file
	config.LoadEnvFile(*envFile)
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatalf("Configuration error: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			logger.Log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	if err := database.EnsureIndexes(ctx, db, cfg.OTPTTL); err != nil {
		logger.Log.Fatalf("Index creation error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	tx := database.NewMongoTransactor(db.Client(), cfg.MongoTransactions)

	// --- External collaborators ---
	mailer := newMailer(cfg)
	streamClient := chat.NewStreamClient(cfg.StreamAPIKey, cfg.StreamAPISecret, cfg.StreamBaseURL)
	objects := newObjectStore(ctx, cfg)
	events := newPublisher(cfg)
	if closer, ok := events.(*queue.AMQPPublisher); ok {
		defer closer.Close()
	}
	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	// --- Services ---
	sessions := services.Sessions{Secret: cfg.JWTSecret, Expiry: cfg.TokenExpiry}
	passwords := services.Passwords{Cost: cfg.BcryptCost}

	authService := services.NewAuthService(userRepo, streamClient, events, sessions, passwords)
	otpService := services.NewOTPService(otpRepo, userRepo, mailer, streamClient, events, sessions, passwords, cfg.OTPTTL)
	resetService := services.NewPasswordResetService(resetRepo, userRepo, mailer, passwords, cfg.ClientURL, cfg.ResetTokenTTL)
	friendService := services.NewFriendService(friendRepo, userRepo, tx, events)
	userService := services.NewUserService(userRepo)
	chatService := services.NewChatService(streamClient)
	uploadService := services.NewUploadService(objects)

	// --- Handlers ---
	router := server.NewRouter(cfg, server.Handlers{
		Auth:   handlers.NewAuthHandler(authService, resetService, cfg),
		OTP:    handlers.NewOTPHandler(otpService),
		User:   handlers.NewUserHandler(userService),
		Friend: handlers.NewFriendHandler(friendService),
		Chat:   handlers.NewChatHandler(chatService),
		Upload: handlers.NewUploadHandler(uploadService),
		Health: handlers.HealthHandler(func(ctx context.Context) error { return database.Ping(ctx, db) }),
	}, userRepo, rdb)

	cronJobs, err := scheduler.StartMaintenanceCronJobs(jobs.NewResetTokenSweeper(resetService))
	if err != nil {
		logger.Log.Fatalf("Scheduler error: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	<-cronJobs.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}

func newMailer(cfg *config.Config) email.Sender {
	if cfg.SMTPHost == "" {
		logger.Log.Warn("SMTP_HOST not set, emails will be logged instead of sent")
		return email.LogSender{}
	}
	return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword)
}

// newObjectStore returns a nil store when S3 is not configured; uploads then
// answer 503.
func newObjectStore(ctx context.Context, cfg *config.Config) services.ObjectStore {
	if !cfg.S3.Enabled() {
		logger.Log.Warn("S3_BUCKET not set, avatar uploads disabled")
		return (*storage.S3Store)(nil)
	}
	store, err := storage.NewS3Store(ctx, cfg.S3)
	if err != nil {
		logger.Log.WithError(err).Error("S3 setup failed, avatar uploads disabled")
		return (*storage.S3Store)(nil)
	}
	return store
}

func newPublisher(cfg *config.Config) queue.Publisher {
	if cfg.RabbitMQURL == "" {
		return queue.NoopPublisher{}
	}
	return queue.NewAMQPPublisher(cfg.RabbitMQURL)
}
