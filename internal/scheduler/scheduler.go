package scheduler

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/config"
	"github.com/mamadbah2/pvoil/internal/domain/models"
)

const runTimeout = 10 * time.Minute

// Syncer runs one ledger synchronization.
type Syncer interface {
	Run(ctx context.Context) (models.RunReport, error)
}

// Scheduler manages scheduled sync runs.
type Scheduler struct {
	cron   *cron.Cron
	syncer Syncer
	cfg    config.ScheduleConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ScheduleConfig, syncer Syncer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	cronLog := cronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &Scheduler{
		cron:   c,
		syncer: syncer,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start registers the sync job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.cfg.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runSync); err != nil {
		return fmt.Errorf("schedule sync %q: %w", s.cfg.CronSchedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns the next planned run, or the zero time when nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runSync() {
	s.logger.Info("scheduled sync starting")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	report, err := s.syncer.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled sync failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled sync completed", zap.String("status", string(report.Status)), zap.Int("new_records", report.NewRecords))
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
