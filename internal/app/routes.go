package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/middleware"
	"github.com/jobboard/cms/internal/modules/auth/auth"
	"github.com/jobboard/cms/internal/modules/auth/user"
	"github.com/jobboard/cms/internal/modules/content/category"
	"github.com/jobboard/cms/internal/modules/content/page"
	"github.com/jobboard/cms/internal/modules/content/post"
	"github.com/jobboard/cms/internal/modules/content/tag"
	"github.com/jobboard/cms/internal/modules/ingestion"
	"github.com/jobboard/cms/internal/modules/site/advertisement"
	"github.com/jobboard/cms/internal/modules/site/backlink"
	"github.com/jobboard/cms/internal/modules/site/banner"
	"github.com/jobboard/cms/internal/modules/site/branding"
	"github.com/jobboard/cms/internal/modules/site/footer"
	"github.com/jobboard/cms/internal/modules/site/seo"
	"github.com/jobboard/cms/internal/modules/storage/file"
	"github.com/jobboard/cms/internal/modules/syndication/feed"
	"github.com/jobboard/cms/internal/modules/syndication/sitemap"
	"github.com/jobboard/cms/internal/modules/syndication/subscribe"
	"github.com/jobboard/cms/internal/modules/system/core/health"
	"github.com/jobboard/cms/internal/modules/system/core/option"
	"github.com/jobboard/cms/internal/modules/system/util/slugtracker"
	"github.com/jobboard/cms/internal/modules/tasks/crontask"
	"github.com/jobboard/cms/internal/pkg/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const apiPrefix = "/api/v1"

// registerRoutes mounts every module and returns the ingestion service for
// the scheduler.
func (a *App) registerRoutes() *ingestion.Service {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.Auth(db)
	maxUpload := cfg.MaxUploadBytes()

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Root-level endpoints
	if a.store.Driver() == "local" {
		r.Static("/static", cfg.StaticDir())
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	sitemap.NewHandler(db, cfg.Site.URL).RegisterRoutes(r)
	feed.NewHandler(db, feed.Site{
		Name:        cfg.Site.Name,
		URL:         cfg.Site.URL,
		Description: fmt.Sprintf("Latest posts from %s", cfg.Site.Name),
	}).RegisterRoutes(r)
	seoSvc := seo.NewService(db, cfg.Site.URL)
	seoHandler := seo.NewHandler(seoSvc)
	seoHandler.RegisterRobots(r)

	api := r.Group(apiPrefix)
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	// Infrastructure
	health.NewHandler(db, a.redis, a.mailer, cfg.LogDir()).RegisterRoutes(api, authMW)
	option.NewHandler(db).RegisterRoutes(api, authMW)
	crontask.NewHandler(a.sched).RegisterRoutes(api, authMW)

	// Auth
	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)
	user.NewHandler(user.NewService(db)).RegisterRoutes(api, authMW)

	// Content
	post.NewHandler(post.NewService(db)).RegisterRoutes(api, authMW)
	category.NewHandler(category.NewService(db)).RegisterRoutes(api, authMW)
	tag.NewHandler(tag.NewService(db)).RegisterRoutes(api, authMW)
	page.NewHandler(page.NewService(db)).RegisterRoutes(api, authMW)
	slugtracker.NewHandler(slugtracker.NewService(db)).RegisterRoutes(api, authMW)

	// Site furniture
	advertisement.NewHandler(advertisement.NewService(db)).RegisterRoutes(api, authMW)
	banner.NewHandler(banner.NewService(db, a.store, maxUpload, a.logger)).RegisterRoutes(api, authMW)
	backlink.NewHandler(backlink.NewService(db)).RegisterRoutes(api, authMW)
	branding.NewHandler(branding.NewService(db, a.store, maxUpload, cfg.Site.Name)).RegisterRoutes(api, authMW)
	seoHandler.RegisterRoutes(api, authMW)
	footer.NewHandler(footer.NewService(db)).RegisterRoutes(api, authMW)

	// Syndication and uploads
	subscribe.NewHandler(subscribe.NewService(db, a.mailer, subscribe.Site{
		Name: cfg.Site.Name,
		URL:  cfg.Site.URL,
	}, a.logger)).RegisterRoutes(api, authMW)
	file.NewHandler(a.store, maxUpload).RegisterRoutes(api, authMW)

	// Ingestion
	lock := ingestion.NewRunLock(a.redis, cfg.Ingestion.Timeout+5*time.Minute)
	ingestSvc := ingestion.NewService(db, cfg.Ingestion, lock, a.logger)
	ingestion.NewHandler(ingestSvc).RegisterRoutes(api, authMW)

	return ingestSvc
}
