package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/modules/admin"
	"github.com/stylescanner/server/internal/modules/auth/user"
	"github.com/stylescanner/server/internal/modules/billing"
	"github.com/stylescanner/server/internal/modules/content/docs"
	"github.com/stylescanner/server/internal/modules/content/feedback"
	"github.com/stylescanner/server/internal/modules/generation/insight"
	"github.com/stylescanner/server/internal/modules/generation/presentation"
	"github.com/stylescanner/server/internal/modules/processing/ai"
	"github.com/stylescanner/server/internal/modules/processing/assets"
	"github.com/stylescanner/server/internal/modules/processing/prompt"
	"github.com/stylescanner/server/internal/modules/quota"
	"github.com/stylescanner/server/internal/modules/storage/photo"
	"github.com/stylescanner/server/internal/modules/syndication/sitemap"
	"github.com/stylescanner/server/internal/pkg/response"
)

func (a *App) registerRoutes(ctx context.Context) error {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.Auth()
	optionalAuthMW := middleware.OptionalAuth()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	defaultModel, err := ai.ParseModel(cfg.AI.DefaultModel)
	if err != nil {
		return fmt.Errorf("ai.default_model: %w", err)
	}
	dispatcher, err := ai.NewFromConfig(ctx, cfg, a.logger.Named("ai"))
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	prompts, err := prompt.Load(cfg.SchemaDir())
	if err != nil {
		return fmt.Errorf("prompts: %w", err)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	if cfg.IsProduction() {
		window := time.Duration(cfg.Limits.APIWindowMinutes) * time.Minute
		l, err := middleware.NewRateLimiter(a.rc.Raw(), window, int64(cfg.Limits.APIMaxRequests))
		if err != nil {
			return err
		}
		api.Use(middleware.RateLimit(l, a.logger))
	}

	// GET /api/health
	api.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			dbStatus = "unavailable"
		}
		response.OK(c, gin.H{
			"status":   "ok",
			"uptime":   humanizeDuration(time.Since(processStart)),
			"database": dbStatus,
		})
	})

	user.NewHandler(user.NewService(db)).RegisterRoutes(api, authMW)

	quotaSvc := quota.NewService(db, loc, map[quota.Family]int{
		quota.FamilyInsight:      cfg.Limits.InsightDaily,
		quota.FamilyPresentation: cfg.Limits.PresentationDaily,
	})
	quota.NewHandler(quotaSvc).RegisterRoutes(api, authMW)

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = 30 * time.Second

	translateModel := ai.ModelGPT4oMini
	if !dispatcher.Configured(translateModel) {
		translateModel = defaultModel
	}
	resolverOpts := assets.Options{
		Translator:        assets.DispatcherTranslator{Dispatcher: dispatcher, Model: translateModel},
		RequestsPerSecond: cfg.Images.RequestsPerSecond,
		Logger:            a.logger.Named("assets"),
	}
	if cfg.Images.UnsplashAccessKey != "" {
		resolverOpts.Unsplash = assets.NewUnsplash(cfg.Images.UnsplashEndpoint, cfg.Images.UnsplashAccessKey, httpClient)
	}
	if cfg.Images.ScrapeEnabled {
		resolverOpts.Google = assets.NewGoogleImages("", httpClient)
	}
	resolver := assets.NewResolver(resolverOpts)

	insightOpts := insight.Options{
		DB:           db,
		Dispatcher:   dispatcher,
		Prompts:      prompts,
		Resolver:     resolver,
		DefaultModel: defaultModel,
		Logger:       a.logger.Named("insight"),
	}
	if cfg.S3Enabled() {
		store, err := photo.NewS3Store(cfg.S3)
		if err != nil {
			return fmt.Errorf("photo store: %w", err)
		}
		insightOpts.Photos = store
	}

	presentationSvc := presentation.NewService(presentation.Options{
		DB:           db,
		Dispatcher:   dispatcher,
		Prompts:      prompts,
		Resolver:     resolver,
		DefaultModel: defaultModel,
		Logger:       a.logger.Named("presentation"),
	})

	// A replayed generation request is rejected before it can consume quota.
	idem := middleware.Idempotence(a.rc)
	insight.NewHandler(insight.NewService(insightOpts), a.logger).
		RegisterRoutes(api, authMW, optionalAuthMW, idem, quotaSvc.Gate(quota.FamilyInsight, a.logger))
	presentation.NewHandler(presentationSvc, a.logger).
		RegisterRoutes(api, authMW, optionalAuthMW, idem, quotaSvc.Gate(quota.FamilyPresentation, a.logger))

	adminMW := middleware.AdminOnly(db)
	admin.NewHandler(admin.NewService(db, loc), a.logger).RegisterRoutes(api, authMW, adminMW)

	// GET /api/admin/cron
	api.GET("/admin/cron", authMW, adminMW, func(c *gin.Context) {
		response.OK(c, a.sched.List())
	})
	// POST /api/admin/cron/:name
	api.POST("/admin/cron/:name", authMW, adminMW, func(c *gin.Context) {
		if err := a.sched.Run(middleware.Detached(c), c.Param("name")); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		response.NoContent(c)
	})

	billingSvc := billing.NewService(billing.Options{
		DB:            db,
		Customers:     billing.NewStripeCustomers(cfg.Stripe.SecretKey),
		Ledger:        a.rc,
		Analytics:     billing.NewAnalytics(cfg.Analytics.MeasurementID, cfg.Analytics.APISecret, httpClient, a.logger),
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Logger:        a.logger.Named("billing"),
	})
	billing.NewHandler(billingSvc, a.logger).RegisterRoutes(api)

	docs.RegisterRoutes(api, docs.NewService(cfg.DocsDir()), a.logger)
	feedback.NewHandler(feedback.NewService(db), a.logger).RegisterRoutes(api, optionalAuthMW)

	sitemapSvc := sitemap.NewService(db, a.rc, cfg.SiteURL, a.logger.Named("sitemap"))
	sitemap.RegisterRoutes(r, sitemapSvc)

	registerCronJobs(a.sched, sitemapSvc, quotaSvc, a.logger)
	a.registerStatic()
	return nil
}

// registerStatic serves the built frontend. Unknown API paths stay JSON 404s.
func (a *App) registerStatic() {
	dir := a.cfg.StaticDir()
	r := a.router

	r.GET("/", func(c *gin.Context) {
		serveFile(c, filepath.Join(dir, "landing.html"))
	})
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			response.NotFound(c)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.NotFound(c)
			return
		}
		if file, ok := staticFile(dir, path); ok {
			c.File(file)
			return
		}
		serveFile(c, filepath.Join(dir, "index.html"))
	})
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func serveFile(c *gin.Context, file string) {
	if info, err := os.Stat(file); err != nil || info.IsDir() {
		response.NotFound(c)
		return
	}
	c.File(file)
}

// staticFile maps a request path onto a regular file inside dir.
func staticFile(dir, urlPath string) (string, bool) {
	clean := filepath.Clean("/" + strings.TrimPrefix(urlPath, "/"))
	if clean == "/" {
		return "", false
	}
	file := filepath.Join(dir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", false
	}
	return file, true
}
