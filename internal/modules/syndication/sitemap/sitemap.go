package sitemap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheKey = "stylescanner:sitemap"
	cacheTTL = time.Hour
)

var staticRoutes = []string{
	"/", "/research", "/insights", "/privacy", "/terms", "/login", "/signup",
	"/forgot", "/profile", "/feedback", "/admin", "/docs",
}

// Cache stores the rendered document. *redis.Client satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Service struct {
	db     *gorm.DB
	cache  Cache
	base   string
	logger *zap.Logger
}

func NewService(db *gorm.DB, cache Cache, siteURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: cache, base: strings.TrimRight(siteURL, "/"), logger: logger}
}

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	render := func(c *gin.Context) {
		xml, err := svc.XML(c.Request.Context())
		if err != nil {
			svc.logger.Error("sitemap generation failed", zap.Error(err))
			c.String(500, err.Error())
			return
		}
		c.Header("Content-Type", "application/xml; charset=utf-8")
		c.String(200, xml)
	}
	r.GET("/sitemap.xml", render)
}

// XML returns the sitemap, served from cache when a fresh copy exists.
func (s *Service) XML(ctx context.Context) (string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			return cached, nil
		}
	}
	xml, err := s.build(ctx)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, xml, cacheTTL); err != nil {
			s.logger.Warn("sitemap cache write failed", zap.Error(err))
		}
	}
	return xml, nil
}

// Refresh rebuilds the sitemap and overwrites the cached copy.
func (s *Service) Refresh(ctx context.Context) error {
	xml, err := s.build(ctx)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, cacheKey, xml, cacheTTL)
}

type sitemapURL struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

func (s *Service) build(ctx context.Context) (string, error) {
	urls := make([]sitemapURL, 0, len(staticRoutes))
	for _, route := range staticRoutes {
		urls = append(urls, sitemapURL{Loc: s.base + route})
	}

	var insights []models.Insight
	if err := s.db.WithContext(ctx).Select("id, updated_at").
		Where("is_private = ?", false).Order("created_at DESC").Find(&insights).Error; err != nil {
		return "", err
	}
	for _, in := range insights {
		urls = append(urls, sitemapURL{
			Loc:        fmt.Sprintf("%s/insight/%s", s.base, in.ID),
			LastMod:    in.UpdatedAt,
			ChangeFreq: "monthly",
			Priority:   0.6,
		})
	}

	var decks []models.Presentation
	if err := s.db.WithContext(ctx).Select("id, slug, updated_at").
		Where("is_private = ?", false).Order("created_at DESC").Find(&decks).Error; err != nil {
		return "", err
	}
	for _, p := range decks {
		ref := p.Slug
		if ref == "" {
			ref = p.ID
		}
		urls = append(urls, sitemapURL{
			Loc:        fmt.Sprintf("%s/presentation/%s", s.base, ref),
			LastMod:    p.UpdatedAt,
			ChangeFreq: "monthly",
			Priority:   0.7,
		})
	}

	return renderXML(urls), nil
}

func renderXML(urls []sitemapURL) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	for _, u := range urls {
		b.WriteString("  <url>\n")
		fmt.Fprintf(&b, "    <loc>%s</loc>\n", escapeXML(u.Loc))
		if !u.LastMod.IsZero() {
			fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", u.LastMod.UTC().Format("2006-01-02"))
		}
		if u.ChangeFreq != "" {
			fmt.Fprintf(&b, "    <changefreq>%s</changefreq>\n", u.ChangeFreq)
			fmt.Fprintf(&b, "    <priority>%.1f</priority>\n", u.Priority)
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString(`</urlset>`)
	return b.String()
}

func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}
