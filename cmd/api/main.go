package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	httpadp "innovation-portal/internal/adapter/http"
	"innovation-portal/internal/adapter/notify"
	"innovation-portal/internal/adapter/repository/mysql"
	"innovation-portal/internal/adapter/storage"
	"innovation-portal/internal/config"
	"innovation-portal/internal/infrastructure/cache"
	"innovation-portal/internal/infrastructure/db"
	"innovation-portal/internal/infrastructure/logging"
	"innovation-portal/internal/infrastructure/token"
	ideaUC "innovation-portal/internal/usecase/idea"
	reviewUC "innovation-portal/internal/usecase/review"
	userUC "innovation-portal/internal/usecase/user"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogFormat, cfg.LogLevel, "innovation-portal")
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("open mysql")
	}
	if err := db.Migrate(gdb); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("open redis")
	}

	userRepo := mysql.NewUserRepository(gdb)
	ideaRepo := mysql.NewIdeaRepository(gdb)
	reviewRepo := mysql.NewReviewRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL())
	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicFileBaseURL)
	if err != nil {
		log.WithError(err).Fatal("open upload dir")
	}

	sinks := []notify.Sink{notify.NewRedisSink(rdb, cfg.NotifyChannel)}
	if cfg.SMTPEnabled() {
		dialer := notify.NewSMTPDialer(notify.SMTPConfig{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass,
		})
		sinks = append(sinks, notify.NewEmailSink(dialer, userRepo, cfg.SMTPFrom))
	}
	events := notify.NewDispatcher(log, notify.Options{
		QueueSize: cfg.NotifyQueueSize,
		Workers:   cfg.NotifyWorkers,
	}, sinks...)

	policy := ideaUC.Policy{
		MaxCoApplicants: cfg.MaxCoApplicants,
		MaxAttachments:  cfg.MaxAttachments,
		StoreTimeout:    cfg.StoreTimeout(),
	}

	users := userUC.NewUsecase(userRepo, issuer, cfg.StoreTimeout())
	if cfg.BootstrapAdminEmail != "" {
		bootstrapAdmin(log, users, cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	httpadp.Register(e, httpadp.Deps{
		Users: users,
		Ideas: ideaUC.NewUsecase(ideaUC.Deps{
			Ideas: ideaRepo, Reviews: reviewRepo, UoW: tx, Files: files,
			Events: events, Policy: policy, Log: log,
		}),
		Reviews:        reviewUC.NewUsecase(ideaRepo, reviewRepo, tx, events, cfg.StoreTimeout(), log),
		Tokens:         issuer,
		UserRepo:       userRepo,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		MaxBodyMB:      cfg.MaxUploadMB,
		Log:            log,
	})
	if strings.HasPrefix(cfg.PublicFileBaseURL, "/") {
		e.Static(cfg.PublicFileBaseURL, files.Dir())
	}

	addr := ":" + cfg.AppPort
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.AppEnv}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := events.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("notification queue not drained")
	}
	if err := rdb.Close(); err != nil {
		log.WithError(err).Warn("redis close")
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("bye")
}

// bootstrapAdmin never stops the process: a missing account only means nobody can
// administer roles until it registers and the service restarts.
func bootstrapAdmin(log logrus.FieldLogger, users *userUC.Usecase, cfg *config.Config) {
	admin, err := users.EnsureAdmin(context.Background(), userUC.RegisterInput{
		Email:    cfg.BootstrapAdminEmail,
		Name:     "Administrator",
		Password: cfg.BootstrapAdminPassword,
	})
	if err != nil {
		log.WithError(err).WithField("email", cfg.BootstrapAdminEmail).Warn("bootstrap admin not applied")
		return
	}
	log.WithFields(logrus.Fields{"email": admin.Email, "user_id": admin.UserID}).Info("bootstrap admin ready")
}
