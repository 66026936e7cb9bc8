// Package jobs runs the periodic background work of the service.
package jobs

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/robfig/cron/v3"
)

const (
	DashboardRefreshSpec = "@every 5m"
	DueSoonReminderSpec  = "0 8 * * *"

	dueSoonWindow = 24 * time.Hour
	jobTimeout    = 2 * time.Minute
)

type dashboardRefresher interface {
	RefreshDashboard(ctx context.Context) (*services.AnalyticsDashboard, error)
}

type dueSoonNotifier interface {
	NotifyAssignmentsDueSoon(ctx context.Context, within time.Duration) (int, error)
}

// Scheduler owns the cron runner and the context the jobs execute under.
type Scheduler struct {
	cron      *cron.Cron
	analytics dashboardRefresher
	notifier  dueSoonNotifier
	logger    utils.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(analytics dashboardRefresher, notifier dueSoonNotifier, logger utils.Logger) (*Scheduler, error) {
	logger = logger.With("component", "scheduler")
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
		analytics: analytics,
		notifier:  notifier,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	if _, err := s.cron.AddFunc(DashboardRefreshSpec, s.RefreshDashboard); err != nil {
		cancel()
		return nil, err
	}
	if _, err := s.cron.AddFunc(DueSoonReminderSpec, s.SendDueSoonReminders); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started",
		"dashboard_refresh", DashboardRefreshSpec,
		"due_soon_reminders", DueSoonReminderSpec,
	)
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
	}
}

// RefreshDashboard recomputes the cached analytics dashboard.
func (s *Scheduler) RefreshDashboard() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if _, err := s.analytics.RefreshDashboard(ctx); err != nil {
		s.logger.LogError(err, "Dashboard refresh failed")
		return
	}
	s.logger.Debug("Dashboard refreshed", "duration", time.Since(start).String())
}

// SendDueSoonReminders publishes a reminder for assignments due in the next day.
func (s *Scheduler) SendDueSoonReminders() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	sent, err := s.notifier.NotifyAssignmentsDueSoon(ctx, dueSoonWindow)
	if err != nil {
		s.logger.LogError(err, "Due soon reminders failed")
		return
	}
	s.logger.Info("Due soon reminders sent", "count", sent)
}

// cronLogger adapts utils.Logger to cron.Logger.
type cronLogger struct {
	logger utils.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.LogError(err, msg, keysAndValues...)
}
