package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/segmentio/ksuid"

	"github.com/kotbarbarossa/yamdb-final/internal/events"
	"github.com/kotbarbarossa/yamdb-final/internal/httpserver"
	"github.com/kotbarbarossa/yamdb-final/internal/notify"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/service"
	"github.com/kotbarbarossa/yamdb-final/pkg/config"
	pkgdb "github.com/kotbarbarossa/yamdb-final/pkg/db"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
	loggingmw "github.com/kotbarbarossa/yamdb-final/pkg/middleware/logging"
)

func main() {
	config.LoadEnvFile(".env")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.NotifyTimeout)
		publisher = kafkaPub
	}

	mailer, err := newMailer(cfg, publisher)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	r := &repo.GormRepo{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return ksuid.New().String() },
	}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		DB:        db,
		JWTSecret: cfg.JWTAccessSecret,
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:   r,
			Mailer: mailer,
			Events: publisher,
			Cfg: service.AuthConfig{
				AccessSecret:  cfg.JWTAccessSecret,
				RefreshSecret: cfg.JWTRefreshSecret,
				AccessTTL:     cfg.AccessTTL,
				RefreshTTL:    cfg.RefreshTTL,
				CodeTTL:       cfg.ConfirmationTTL,
				NotifyTimeout: cfg.NotifyTimeout,
			},
		}},
		Users:    &httpserver.UsersHTTP{Svc: &service.UserService{Repo: r, Events: publisher}},
		Catalog:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: publisher}},
		Titles:   &httpserver.TitlesHTTP{Svc: &service.TitleService{Repo: r, Events: publisher}},
		Reviews:  &httpserver.ReviewsHTTP{Svc: &service.ReviewService{Repo: r, Events: publisher}},
		Comments: &httpserver.CommentsHTTP{Svc: &service.CommentService{Repo: r, Events: publisher}},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "db_driver", cfg.DBDriver, "mail_backend", cfg.MailBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server_shutdown_failed", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Warn("publisher_close_failed", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}

func newMailer(cfg config.Config, publisher events.Publisher) (notify.Mailer, error) {
	switch cfg.MailBackend {
	case "log":
		return notify.LogMailer{From: cfg.MailFrom}, nil
	case "smtp":
		return notify.NewSMTPMailer(cfg.SMTPAddr, cfg.MailFrom, cfg.SMTPUser, cfg.SMTPPassword), nil
	case "kafka":
		return &notify.KafkaMailer{Publisher: publisher, Topic: cfg.MailTopic, From: cfg.MailFrom}, nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.MailBackend)
	}
}

