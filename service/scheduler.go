package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
)

type ReconcileScheduler struct {
	Storage       *StorageService
	Logger        Logger
	Cron          string
	RemoveOrphans bool

	scheduler *gocron.Scheduler
}

// Start registers the reconcile job and runs the scheduler in the background.
func (r *ReconcileScheduler) Start(ctx context.Context) error {
	s := gocron.NewScheduler(time.UTC)
	s.SetMaxConcurrentJobs(1, gocron.WaitMode)

	_, err := s.Cron(r.Cron).Tag("reconcile").Do(func() {
		if _, err := r.Storage.Reconcile(ctx, r.RemoveOrphans); err != nil {
			r.Logger.ErrorWithContextf(ctx, err, "[Reconcile] Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	r.scheduler = s
	r.Logger.InfoWithContextf(ctx, "[Reconcile] Scheduler started with cron '%s'", r.Cron)
	s.StartAsync()
	return nil
}

func (r *ReconcileScheduler) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
