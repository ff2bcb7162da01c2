package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/rogerio-castellano/pixel-canvas/internal/auth"
	"github.com/rogerio-castellano/pixel-canvas/internal/config"
	"github.com/rogerio-castellano/pixel-canvas/internal/db"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/handlers"
	mw "github.com/rogerio-castellano/pixel-canvas/internal/http/middleware"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/router"
	"github.com/rogerio-castellano/pixel-canvas/internal/mail"
	"github.com/rogerio-castellano/pixel-canvas/internal/redissvc"
	"github.com/rogerio-castellano/pixel-canvas/internal/repo"
	"github.com/rogerio-castellano/pixel-canvas/internal/service"
)

type tokenStore interface {
	auth.RevocationStore
	auth.ResetTokenStore
}

// @title Pixel Canvas API
// @version 1.0
// @description JSON endpoints behind the pixel-art canvas editor.
// @host localhost:8080
// @BasePath /
func main() {
	configPath := flag.String("config", "", "config file (default $PIXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load configuration", "err", err)
	}

	logger := newLogger(cfg.Log.Level)
	if cfg.UsesDevSecret() {
		logger.Warn("session.secret is the development default, set PIXEL_SESSION_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tokens tokenStore
	var statsRepo repo.StatsRepository
	var users repo.UserRepository
	var canvases repo.CanvasRepository

	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		userRepo := repo.NewInMemoryUserRepository()
		canvasRepo := repo.NewInMemoryCanvasRepository(userRepo)
		memStats := repo.NewInMemoryStatsRepository()
		memStats.SetRepositories(userRepo, canvasRepo)
		users, canvases, statsRepo = userRepo, canvasRepo, memStats
		tokens = auth.NewMemoryStore()

	default:
		database := mustOpenDatabase(ctx, logger, cfg.Database.URL)
		defer database.Close()
		users = repo.NewPostgresUserRepository(database)
		canvases = repo.NewPostgresCanvasRepository(database)
		statsRepo = repo.NewPostgresStatsRepository(database)

		redisService, err := redissvc.Connect(ctx, redissvc.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("could not connect to redis", "err", err)
		}
		defer redisService.Close()
		tokens = auth.NewRedisStore(redisService)
	}

	handlers.SetLogger(logger)
	mw.SetLogger(logger)

	handlers.SetCanvasService(service.NewCanvasService(canvases, cfg.Canvas.MaxDimension, cfg.Canvas.DefaultSize))
	handlers.SetAccountService(service.NewAccountService(users, tokens, cfg.Reset.TTL))
	handlers.SetStatsRepo(statsRepo)
	handlers.SetBaseURL(cfg.HTTP.BaseURL)
	handlers.SetMailer(newMailer(cfg.SMTP, logger))

	sessions := auth.NewSessionManager(auth.SessionConfig{
		Secret:      []byte(cfg.Session.Secret),
		TTL:         cfg.Session.TTL,
		RememberTTL: cfg.Session.RememberTTL,
		Secure:      cfg.Session.Secure,
	}, tokens)
	handlers.SetSessionManager(sessions)
	mw.SetSessionManager(sessions)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router.NewRouter(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("server running", "addr", cfg.HTTP.Addr, "store", cfg.Store)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", "err", err)
	}
	logger.Info("server stopped")
}

func newLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           lvl,
	})
}

func mustOpenDatabase(ctx context.Context, logger *log.Logger, url string) *sql.DB {
	database, err := db.Connect(ctx, url)
	if err != nil {
		logger.Fatal("could not connect to database", "err", err)
	}
	if err := db.Migrate(ctx, database); err != nil {
		logger.Fatal("could not migrate database", "err", err)
	}
	return database
}

func newMailer(cfg config.SMTPConfig, logger *log.Logger) mail.Mailer {
	if cfg.Server == "" {
		logger.Warn("smtp.server not set, password reset links are only logged at debug level")
		return mail.NewLogMailer(logger)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Server:       cfg.Server,
		Port:         cfg.Port,
		User:         cfg.User,
		Password:     cfg.Password,
		From:         cfg.From,
		AuthDisabled: cfg.AuthDisabled,
	})
}
