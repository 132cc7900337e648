package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
)

// Local key-value store keys.
const (
	KeyWordProgress         = "wordProgress"
	KeyUnlockedWords        = "unlockedWords"
	KeyQuizTimer            = "quizTimer"
	KeyNotificationsEnabled = "notificationsEnabled"
	KeyReviewHistory        = "reviewHistory"
)

// MaxReviewHistory is the number of answers kept in the review history.
const MaxReviewHistory = 500

// ProgressService loads and persists the learning state of users.
// The local store is written first; the remote document receives merge writes.
type ProgressService struct {
	kv     KVStore
	docs   DocumentStore
	clock  clock.Clock
	logger *zap.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(kv KVStore, docs DocumentStore, clk clock.Clock, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		kv:     kv,
		docs:   docs,
		clock:  clk,
		logger: logger,
	}
}

// Load returns the progress map of the user. It never fails: unreadable or malformed
// data yields an empty map. When nothing is stored locally the remote document is used.
func (s *ProgressService) Load(ctx context.Context, userID int64) entities.ProgressMap {
	raw, err := s.kv.Get(ctx, userID, KeyWordProgress)
	switch {
	case err == nil:
		progress := entities.ProgressMap{}
		if err := json.Unmarshal([]byte(raw), &progress); err != nil {
			s.logger.Warn("malformed word progress, starting empty",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return entities.ProgressMap{}
		}
		if len(progress) > 0 {
			return progress
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.logger.Error("failed to read word progress",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	doc, err := s.remoteDocument(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("failed to read remote document",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
		return entities.ProgressMap{}
	}
	if doc.Progress == nil {
		return entities.ProgressMap{}
	}

	s.logger.Info("progress restored from remote document",
		zap.Int64("user_id", userID),
		zap.Int("words", len(doc.Progress)),
	)
	return doc.Progress
}

// Save writes the whole progress map locally and merges it into the remote document.
// Both writes are attempted; their errors are joined.
func (s *ProgressService) Save(ctx context.Context, userID int64, progress entities.ProgressMap) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal word progress: %w", err)
	}

	var localErr error
	if err := s.kv.Set(ctx, userID, KeyWordProgress, string(data)); err != nil {
		localErr = fmt.Errorf("save local word progress: %w", err)
	}

	patch := entities.NewDocumentPatch(s.clock.Now())
	patch.Progress = progress

	return errors.Join(localErr, s.mergeRemote(ctx, userID, patch))
}

// UnlockedWords returns the words the user has been exposed to, in unlock order.
func (s *ProgressService) UnlockedWords(ctx context.Context, userID int64) []string {
	raw, err := s.kv.Get(ctx, userID, KeyUnlockedWords)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("failed to read unlocked words",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
		return nil
	}

	var words []string
	if err := json.Unmarshal([]byte(raw), &words); err != nil {
		s.logger.Warn("malformed unlocked words, starting empty",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil
	}
	return words
}

// Unlock adds words to the unlocked set and mirrors the set to the remote document.
func (s *ProgressService) Unlock(ctx context.Context, userID int64, words []string) error {
	unlocked := s.UnlockedWords(ctx, userID)

	changed := false
	for _, w := range words {
		if w == "" || slices.Contains(unlocked, w) {
			continue
		}
		unlocked = append(unlocked, w)
		changed = true
	}
	if !changed {
		return nil
	}

	data, err := json.Marshal(unlocked)
	if err != nil {
		return fmt.Errorf("marshal unlocked words: %w", err)
	}

	var localErr error
	if err := s.kv.Set(ctx, userID, KeyUnlockedWords, string(data)); err != nil {
		localErr = fmt.Errorf("save local unlocked words: %w", err)
	}

	patch := entities.NewDocumentPatch(s.clock.Now())
	patch.UnlockedWords = unlocked

	return errors.Join(localErr, s.mergeRemote(ctx, userID, patch))
}

// History returns the answer history of the user, oldest first.
func (s *ProgressService) History(ctx context.Context, userID int64) []entities.ReviewEntry {
	raw, err := s.kv.Get(ctx, userID, KeyReviewHistory)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("failed to read review history",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
		return nil
	}

	var history []entities.ReviewEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.logger.Warn("malformed review history, starting empty",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil
	}
	return history
}

// AppendReview appends an answer to the history, dropping the oldest entries past MaxReviewHistory.
func (s *ProgressService) AppendReview(ctx context.Context, userID int64, entry entities.ReviewEntry) error {
	history := append(s.History(ctx, userID), entry)
	if len(history) > MaxReviewHistory {
		history = history[len(history)-MaxReviewHistory:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal review history: %w", err)
	}
	if err := s.kv.Set(ctx, userID, KeyReviewHistory, string(data)); err != nil {
		return fmt.Errorf("save review history: %w", err)
	}
	return nil
}

// Push merges the locally stored progress and unlocked words into the remote document.
func (s *ProgressService) Push(ctx context.Context, userID int64) error {
	raw, err := s.kv.Get(ctx, userID, KeyWordProgress)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read local word progress: %w", err)
	}

	patch := entities.NewDocumentPatch(s.clock.Now())
	if raw != "" {
		progress := entities.ProgressMap{}
		if err := json.Unmarshal([]byte(raw), &progress); err != nil {
			return fmt.Errorf("decode local word progress: %w", err)
		}
		if len(progress) > 0 {
			patch.Progress = progress
		}
	}
	patch.UnlockedWords = s.UnlockedWords(ctx, userID)

	if patch.Progress == nil && patch.UnlockedWords == nil {
		return nil
	}
	return s.mergeRemote(ctx, userID, patch)
}

func (s *ProgressService) remoteDocument(ctx context.Context, userID int64) (*entities.UserDocument, error) {
	raw, err := s.docs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var doc entities.UserDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode remote document: %w", err)
	}
	return &doc, nil
}

func (s *ProgressService) mergeRemote(ctx context.Context, userID int64, patch entities.DocumentPatch) error {
	return mergeDocument(ctx, s.docs, userID, patch)
}

// mergeDocument marshals patch and merges it into the remote document of the user.
func mergeDocument(ctx context.Context, docs DocumentStore, userID int64, patch any) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal document patch: %w", err)
	}
	if err := docs.Merge(ctx, userID, data); err != nil {
		return fmt.Errorf("merge remote document: %w", err)
	}
	return nil
}
