package service

import (
	"context"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// KVStore is the local per-user key-value store.
// Get returns storage.ErrNotFound when the key was never written.
type KVStore interface {
	Get(ctx context.Context, userID int64, key string) (string, error)
	Set(ctx context.Context, userID int64, key, value string) error
	Users(ctx context.Context) ([]int64, error)
}

// DocumentStore is the remote per-user document store.
// Merge overwrites the top-level fields present in patch and preserves the others.
type DocumentStore interface {
	Get(ctx context.Context, userID int64) ([]byte, error)
	Merge(ctx context.Context, userID int64, patch []byte) error
}

// LexiconRepository provides the immutable lexicon.
type LexiconRepository interface {
	All() []entities.Word
}

// QuizListener receives the events of a quiz session.
// Callbacks are invoked outside of the controller lock, one at a time per controller.
type QuizListener interface {
	OnQuestion(q entities.Question)
	OnTick(sessionID string, number, remaining int)
	OnAnswer(res entities.AnswerResult)
	OnFinished(summary entities.QuizSummary)
}
