// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"time"

	"spendora-service/internal/config"
	"spendora-service/internal/db"
	analyticsHandler "spendora-service/internal/handlers/analytics"
	authHandler "spendora-service/internal/handlers/auth"
	paymentHandler "spendora-service/internal/handlers/payment"
	subscriptionHandler "spendora-service/internal/handlers/subscription"
	userHandler "spendora-service/internal/handlers/user"
	wsHandler "spendora-service/internal/handlers/websocket"
	"spendora-service/internal/middleware"
	"spendora-service/internal/pkg/jwt"
	"spendora-service/internal/repository/postgres"
	redisrepo "spendora-service/internal/repository/redis"
	"spendora-service/internal/scheduler"
	analyticsUsecase "spendora-service/internal/service/analytics"
	authUsecase "spendora-service/internal/service/auth"
	"spendora-service/internal/service/email"
	paymentUsecase "spendora-service/internal/service/payment"
	subscriptionUsecase "spendora-service/internal/service/subscription"
	userUsecase "spendora-service/internal/service/user"
	"spendora-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg       config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	scheduler *scheduler.Scheduler
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start(ctx context.Context) error {
	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Email -----
	emailSender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)

	analyticsCache := redisrepo.NewAnalyticsCache(redisClient)
	reminderMarks := redisrepo.NewReminderMarks(redisClient)
	tokenBlacklist := redisrepo.NewTokenBlacklist(redisClient)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager, tokenBlacklist, logger)
	go hub.Run(ctx)

	// ----- Services -----
	authService := authUsecase.NewAuthService(userRepo, jwtManager, tokenBlacklist, logger)
	userService := userUsecase.NewUserService(userRepo, logger)
	subscriptionService := subscriptionUsecase.NewSubscriptionService(subscriptionRepo, hub, analyticsCache, logger)
	paymentService := paymentUsecase.NewPaymentService(paymentRepo)
	analyticsService := analyticsUsecase.NewAnalyticsService(subscriptionRepo, analyticsCache, logger)

	// ----- Scheduler -----
	sweeper, err := scheduler.NewRenewalSweeper(
		subscriptionRepo,
		paymentRepo,
		hub,
		s.cfg.SweepItemTimeout,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build renewal sweeper: %w", err)
	}

	reminderJob, err := scheduler.NewReminderJob(
		subscriptionRepo,
		userRepo,
		emailSender,
		hub,
		reminderMarks,
		time.Duration(s.cfg.ReminderLookaheadDays)*24*time.Hour,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build reminder job: %w", err)
	}

	sched, err := scheduler.New(sweeper, reminderJob, scheduler.Config{
		RenewalSpec:  s.cfg.RenewalCronSpec,
		ReminderSpec: s.cfg.ReminderCronSpec,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	s.scheduler = sched

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService)
	userHandlerInst := userHandler.NewUserHandler(userService)
	subscriptionHandlerInst := subscriptionHandler.NewSubscriptionHandler(subscriptionService)
	paymentHandlerInst := paymentHandler.NewPaymentHandler(paymentService)
	analyticsHandlerInst := analyticsHandler.NewAnalyticsHandler(analyticsService)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.ClientURLs),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:         authHandlerInst,
		UserHandler:         userHandlerInst,
		SubscriptionHandler: subscriptionHandlerInst,
		PaymentHandler:      paymentHandlerInst,
		AnalyticsHandler:    analyticsHandlerInst,
		WSHandler:           wsHandlerInst,
		AuthMiddleware:      authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Stop drains background jobs. Safe to call once after Start returns.
func (s *Server) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.logger != nil {
		s.logger.Info("server stopped")
	}
}
