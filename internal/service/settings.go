package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
)

var ErrInvalidQuizTimer = errors.New("invalid quiz timer")

// SettingsService handles user settings stored in the local key-value store.
type SettingsService struct {
	kv           KVStore
	defaultTimer int
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service.
// defaultTimer is used when no valid timer is stored.
func NewSettingsService(kv KVStore, defaultTimer int, logger *zap.Logger) *SettingsService {
	if !entities.IsValidQuizTimer(defaultTimer) {
		defaultTimer = entities.DefaultQuizTimer
	}
	return &SettingsService{
		kv:           kv,
		defaultTimer: defaultTimer,
		logger:       logger,
	}
}

// Get returns all settings of the user.
func (s *SettingsService) Get(ctx context.Context, userID int64) *entities.UserSettings {
	settings := entities.NewUserSettings(userID)
	settings.QuizTimer = s.QuizTimer(ctx, userID)
	settings.NotificationsEnabled = s.NotificationsEnabled(ctx, userID)
	return settings
}

// QuizTimer returns the per-question time limit in seconds.
func (s *SettingsService) QuizTimer(ctx context.Context, userID int64) int {
	raw, ok := s.read(ctx, userID, KeyQuizTimer)
	if !ok {
		return s.defaultTimer
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || !entities.IsValidQuizTimer(seconds) {
		s.logger.Warn("invalid stored quiz timer, using default",
			zap.Int64("user_id", userID),
			zap.String("value", raw),
		)
		return s.defaultTimer
	}
	return seconds
}

// SetQuizTimer stores the per-question time limit.
func (s *SettingsService) SetQuizTimer(ctx context.Context, userID int64, seconds int) error {
	if !entities.IsValidQuizTimer(seconds) {
		return fmt.Errorf("%w: %d", ErrInvalidQuizTimer, seconds)
	}
	if err := s.kv.Set(ctx, userID, KeyQuizTimer, strconv.Itoa(seconds)); err != nil {
		return fmt.Errorf("save quiz timer: %w", err)
	}
	return nil
}

// NotificationsEnabled reports whether the user opted in to reminders. Defaults to false.
func (s *SettingsService) NotificationsEnabled(ctx context.Context, userID int64) bool {
	raw, ok := s.read(ctx, userID, KeyNotificationsEnabled)
	if !ok {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return enabled
}

// SetNotificationsEnabled stores the reminder flag.
func (s *SettingsService) SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error {
	if err := s.kv.Set(ctx, userID, KeyNotificationsEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("save notifications flag: %w", err)
	}
	return nil
}

func (s *SettingsService) read(ctx context.Context, userID int64, key string) (string, bool) {
	raw, err := s.kv.Get(ctx, userID, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("failed to read setting",
				zap.Int64("user_id", userID),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return "", false
	}
	return raw, true
}
