package app

import (
	"context"
	"time"

	"github.com/stylescanner/server/internal/modules/quota"
	"github.com/stylescanner/server/internal/modules/syndication/sitemap"
	pkgcron "github.com/stylescanner/server/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers the scheduled maintenance jobs.
func registerCronJobs(sched *pkgcron.Scheduler, sitemapSvc *sitemap.Service, quotaSvc *quota.Service, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "refresh_sitemap",
		Description: "Rebuild the cached sitemap",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			return sitemapSvc.Refresh(ctx)
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "reset_stale_quota",
		Description: "Zero daily AI counters left over from previous days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := quotaSvc.ResetStale(ctx)
			if err != nil {
				return err
			}
			cronLogger.Info("stale quota counters reset", zap.Int64("users", n))
			return nil
		},
	})
}
