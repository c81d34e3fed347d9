package app

import (
	"context"
	"time"

	"github.com/jobboard/cms/internal/modules/auth/auth"
	"github.com/jobboard/cms/internal/modules/ingestion"
	pkgcron "github.com/jobboard/cms/internal/pkg/cron"
	"go.uber.org/zap"
)

// sessionRetention keeps revoked and expired sessions visible for a while
// before they are purged.
const sessionRetention = 30 * 24 * time.Hour

func (a *App) registerCronJobs(ingestSvc *ingestion.Service) {
	cronLogger := a.logger.Named("CronService")

	a.sched.Register(ingestSvc.CronJob())

	authSvc := auth.NewService(a.db)
	a.sched.Register(pkgcron.Job{
		Name:        "purge_sessions",
		Description: "Delete admin sessions that expired or were revoked long ago",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := authSvc.PurgeSessions(time.Now().Add(-sessionRetention))
			if err != nil {
				return err
			}
			cronLogger.Info("purged admin sessions", zap.Int64("count", n))
			return nil
		},
	})
}
