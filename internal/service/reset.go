package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/worker"
)

// ResetService wipes the learning state of a user. Settings are kept.
type ResetService struct {
	kv     KVStore
	docs   DocumentStore
	writer *worker.Pool
	clock  clock.Clock
	logger *zap.Logger
}

// NewResetService creates a reset service. When writer is not nil the reset is queued
// behind the persistence jobs already submitted, so a finished quiz cannot overwrite it.
func NewResetService(kv KVStore, docs DocumentStore, writer *worker.Pool, clk clock.Clock, logger *zap.Logger) *ResetService {
	return &ResetService{
		kv:     kv,
		docs:   docs,
		writer: writer,
		clock:  clk,
		logger: logger,
	}
}

// ResetUser clears word progress, unlocked words and review history locally and
// overwrites the learning fields of the remote document. Every write is attempted.
func (s *ResetService) ResetUser(ctx context.Context, userID int64) error {
	if s.writer == nil {
		return s.reset(ctx, userID)
	}

	if err := s.writer.Do(ctx, func(jobCtx context.Context) error {
		return s.reset(jobCtx, userID)
	}); err != nil {
		return fmt.Errorf("reset user %d: %w", userID, err)
	}
	return nil
}

func (s *ResetService) reset(ctx context.Context, userID int64) error {
	var errs []error
	for _, kv := range []struct{ key, value string }{
		{KeyWordProgress, "{}"},
		{KeyUnlockedWords, "[]"},
		{KeyReviewHistory, "[]"},
	} {
		if err := s.kv.Set(ctx, userID, kv.key, kv.value); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", kv.key, err))
		}
	}

	if err := mergeDocument(ctx, s.docs, userID, entities.NewResetPatch(s.clock.Now())); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("user progress reset", zap.Int64("user_id", userID))
	return nil
}
