package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/config"
	"github.com/jobboard/cms/internal/database"
	"github.com/jobboard/cms/internal/middleware"
	"github.com/jobboard/cms/internal/modules/auth/auth"
	pkgcron "github.com/jobboard/cms/internal/pkg/cron"
	jwtpkg "github.com/jobboard/cms/internal/pkg/jwt"
	pkgmail "github.com/jobboard/cms/internal/pkg/mail"
	pkgredis "github.com/jobboard/cms/internal/pkg/redis"
	"github.com/jobboard/cms/internal/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	redis  *pkgredis.Client
	store  storage.Storage
	mailer *pkgmail.Sender
	logger *zap.Logger
	sched  *pkgcron.Scheduler
	cancel context.CancelFunc
}

// New initializes the application: database, Redis, storage, routes and
// scheduled jobs.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.Redis.Enable {
		rc, err = pkgredis.Connect(cfg.RedisURL, "jobboard")
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	} else {
		logger.Warn("redis is not configured, rate limiting and the cross-instance ingestion lock are off")
	}

	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	router.Use(gin.Recovery())
	router.Use(cors(cfg))
	router.Use(middleware.OptionalAuth(db))
	router.Use(middleware.RateLimit(rc, cfg.RateLimit.PerSecond, logger.Named("RateLimit")))
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger(logger.Named("HTTP")))

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		redis:  rc,
		store:  store,
		mailer: pkgmail.New(cfg.Mail),
		logger: logger,
		sched:  pkgcron.New(logger.Named("CronService")),
		cancel: cancel,
	}

	if err := auth.NewService(db).Bootstrap(cfg.Admin, logger); err != nil {
		cancel()
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	ingestSvc := app.registerRoutes()
	app.registerCronJobs(ingestSvc)
	app.sched.Start(ctx)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops scheduled jobs, cancelling any in-flight run, and closes
// the connection pools.
func (a *App) Shutdown() {
	a.cancel()
	a.sched.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
}

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) error {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	time.Local = loc
	return nil
}
