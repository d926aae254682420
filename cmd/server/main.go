package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventmanage/config"
	"eventmanage/internal/adapters/auth"
	"eventmanage/internal/adapters/email"
	"eventmanage/internal/cache"
	delivery "eventmanage/internal/delivery/http"
	"eventmanage/internal/delivery/http/controllers"
	"eventmanage/internal/delivery/http/middleware"
	"eventmanage/internal/reminder"
	"eventmanage/internal/repository/postgres"
	"eventmanage/internal/rules"
	"eventmanage/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	bcryptCost      = 12
)

// @title Event Management API
// @version 1.0
// @description Event scheduling backend with conflict detection, RSVPs, and soft delete.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)

	engine := rules.NewEngine(services.NewRuleStore(eventRepo, attendanceRepo, userRepo))
	statsCache := cache.New(cfg.RedisAddr, logger)

	hasher := auth.NewBcryptHasher(bcryptCost)
	tokens := auth.NewJWTTokens(cfg.JWTSecret)

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailerProvider,
		FromAddress: cfg.MailerFromAddress,
		FromName:    cfg.MailerFromName,
		SES: email.SESConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	userService := services.NewUserService(userRepo, hasher, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.TokenExpiry, serviceTimeout)
	eventService := services.NewEventService(eventRepo, userRepo, attendanceRepo, engine, statsCache, serviceTimeout)
	attendanceService := services.NewAttendanceService(attendanceRepo, eventRepo, userRepo, engine, emailService, statsCache, logger, serviceTimeout)

	reminderJob := reminder.NewJob(eventService, attendanceRepo, userRepo, emailService, cfg.ReminderCron, logger)
	if err := reminderJob.Start(); err != nil {
		logger.Error("start reminder job", "err", err)
		os.Exit(1)
	}
	defer reminderJob.Stop()

	mux := delivery.NewRouter(
		tokens,
		controllers.NewAuthController(logger, userService, authService),
		controllers.NewUserController(logger, userService),
		controllers.NewEventController(logger, eventService),
		controllers.NewAttendanceController(logger, attendanceService),
	)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}
}
