package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"realestate-hub/internal/cleanup"
	"realestate-hub/internal/config"
	"realestate-hub/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Store is the data the nightly job reads and prunes
type Store interface {
	AllProperties(ctx context.Context) ([]models.Property, error)
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Snapshotter records daily listing snapshots
type Snapshotter interface {
	RecordAll(ctx context.Context, properties []models.Property) (int, error)
}

// Purger physically deletes listings past retention
type Purger interface {
	PhysicallyDelete(ctx context.Context, cfg cleanup.CleanupConfig) (*cleanup.CleanupResult, error)
}

// Indexer refreshes the search index
type Indexer interface {
	IndexProperties(properties []models.Property) error
}

// Scheduler runs the nightly maintenance job
type Scheduler struct {
	cron     *cron.Cron
	store    Store
	snapshot Snapshotter
	cleanup  Purger
	index    Indexer // nil when search is disabled
	config   *config.Config
	logger   *zap.Logger

	mu        sync.Mutex // serializes runs
	isRunning bool
}

// NewScheduler creates a new scheduler. index may be nil.
func NewScheduler(cfg *config.Config, store Store, snap Snapshotter, purger Purger, index Indexer, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location())),
		store:    store,
		snapshot: snap,
		cleanup:  purger,
		index:    index,
		config:   cfg,
		logger:   logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.DailyRunEnabled {
		s.logger.Info("Scheduler: daily run is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Scheduler.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		s.logger.Info("Scheduler: starting daily job")
		report, err := s.RunNow(context.Background())
		if err != nil {
			s.logger.Error("Scheduler: daily job failed", zap.Error(err))
			return
		}
		s.logger.Info("Scheduler: daily job completed",
			zap.Int("snapshots", report.Snapshots),
			zap.Int("changes", report.Changes),
			zap.Int("purged", report.Purged),
			zap.Int64("sessions_purged", report.SessionsPurged))
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("Scheduler: started",
		zap.String("daily_run_time", s.config.Scheduler.DailyRunTime),
		zap.String("cron", cronSpec),
		zap.String("timezone", s.config.Timezone))

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.logger.Info("Scheduler: stopped")
	}
}

// Report summarizes one run of the daily job
type Report struct {
	Snapshots      int       `json:"snapshots"`
	Changes        int       `json:"changes"`
	Purged         int       `json:"purged"`
	Reindexed      int       `json:"reindexed"`
	SessionsPurged int64     `json:"sessions_purged"`
	StartedAt      time.Time `json:"started_at"`
	Duration       string    `json:"duration"`
}

// RunNow immediately executes the daily job: snapshots, purge, reindex and
// session pruning. A failing step is logged and the remaining steps still run;
// only failing to load the listings aborts the job.
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &Report{StartedAt: time.Now().UTC()}
	defer func() { report.Duration = time.Since(report.StartedAt).String() }()

	properties, err := s.store.AllProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	s.logger.Info("Scheduler: recording snapshots", zap.Int("properties", len(properties)))

	changes, err := s.snapshot.RecordAll(ctx, properties)
	if err != nil {
		s.logger.Warn("Scheduler: snapshot step interrupted", zap.Error(err))
	}
	report.Snapshots = len(properties)
	report.Changes = changes

	result, err := s.cleanup.PhysicallyDelete(ctx, cleanup.CleanupConfig{
		RetentionDays:    s.config.Scheduler.RetentionDays,
		MaxDeletionCount: s.config.Scheduler.MaxDeletionCount,
		DeleteFromSearch: s.index != nil,
	})
	if err != nil {
		s.logger.Error("Scheduler: cleanup failed", zap.Error(err))
	} else {
		report.Purged = result.DeletedCount
	}

	if s.index != nil {
		if err := s.index.IndexProperties(properties); err != nil {
			s.logger.Error("Scheduler: reindex failed", zap.Error(err))
		} else {
			report.Reindexed = len(properties)
		}
	}

	purged, err := s.store.PurgeExpiredSessions(ctx, time.Now())
	if err != nil {
		s.logger.Error("Scheduler: session purge failed", zap.Error(err))
	}
	report.SessionsPurged = purged

	return report, nil
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "03:00" -> "0 3 * * *"
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.logger.Warn("Scheduler: failed to parse daily run time, using default 03:00", zap.String("value", timeStr))
	return "0 3 * * *"
}
