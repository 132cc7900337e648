package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/worker"
)

// DefaultSyncSchedule is the cron spec used when none is configured.
const DefaultSyncSchedule = "@every 15m"

// SyncService periodically pushes the local learning state of every user to the remote document store.
type SyncService struct {
	kv       KVStore
	progress *ProgressService
	writer   *worker.Pool
	schedule string
	logger   *zap.Logger
}

// NewSyncService creates a new sync service. When writer is not nil each push runs
// as a job on it, ordered with quiz writes and resets.
func NewSyncService(kv KVStore, progress *ProgressService, writer *worker.Pool, schedule string, logger *zap.Logger) *SyncService {
	if schedule == "" {
		schedule = DefaultSyncSchedule
	}
	return &SyncService{
		kv:       kv,
		progress: progress,
		writer:   writer,
		schedule: schedule,
		logger:   logger,
	}
}

// Start runs the sync job on its schedule until ctx is done.
func (s *SyncService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.SyncAll(ctx); err != nil {
			s.logger.Error("failed to sync progress", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add sync job %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("sync service started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("sync service stopped")
	return nil
}

// SyncAll pushes every user that has local data. A failing user is logged and skipped.
// It returns the number of users pushed successfully.
func (s *SyncService) SyncAll(ctx context.Context) (int, error) {
	users, err := s.kv.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	synced := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := s.push(ctx, userID); err != nil {
			s.logger.Warn("failed to push user progress",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	s.logger.Info("progress synced",
		zap.Int("users", len(users)),
		zap.Int("synced", synced),
	)
	return synced, nil
}

func (s *SyncService) push(ctx context.Context, userID int64) error {
	if s.writer == nil {
		return s.progress.Push(ctx, userID)
	}
	return s.writer.Do(ctx, func(jobCtx context.Context) error {
		return s.progress.Push(jobCtx, userID)
	})
}
