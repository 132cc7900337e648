package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/worker"
)

func TestResetUserClearsLearningState(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	docs := storage.NewMemoryDocuments()
	progress := newTestProgressService(kv, docs)

	_ = docs.Merge(ctx, 1, []byte(`{"nickname":"ali"}`))
	if err := progress.Save(ctx, 1, entities.ProgressMap{"chat": {Level: 3, ReviewCount: 2}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := progress.Unlock(ctx, 1, []string{"chat"}); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := progress.AppendReview(ctx, 1, entities.ReviewEntry{Word: "chat", Correct: true}); err != nil {
		t.Fatalf("append review: %v", err)
	}
	_ = kv.Set(ctx, 1, KeyQuizTimer, "20")

	reset := NewResetService(kv, docs, nil, clock.NewFake(testNow), zap.NewNop())
	if err := reset.ResetUser(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if got := progress.Load(ctx, 1); len(got) != 0 {
		t.Fatalf("expected empty progress after reset, got %v", got)
	}
	if got := progress.UnlockedWords(ctx, 1); len(got) != 0 {
		t.Fatalf("expected no unlocked words, got %v", got)
	}
	if got := progress.History(ctx, 1); len(got) != 0 {
		t.Fatalf("expected empty history, got %v", got)
	}
	if v, err := kv.Get(ctx, 1, KeyQuizTimer); err != nil || v != "20" {
		t.Fatalf("quiz timer should survive a reset, got %q (%v)", v, err)
	}

	raw, err := docs.Get(ctx, 1)
	if err != nil {
		t.Fatalf("remote get: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(doc["progress"]) != "{}" || string(doc["unlockedWords"]) != "[]" {
		t.Fatalf("remote learning fields not cleared: %s", raw)
	}
	if _, ok := doc["nickname"]; !ok {
		t.Fatalf("unrelated remote field lost: %s", raw)
	}
}

func TestResetUserReportsRemoteFailure(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, 1, KeyWordProgress, `{"chat":{"level":2,"lastSeen":"","reviewCount":1}}`)

	reset := NewResetService(kv, failingDocs{}, nil, clock.NewFake(testNow), zap.NewNop())
	err := reset.ResetUser(ctx, 1)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected errStoreDown, got %v", err)
	}

	if v, _ := kv.Get(ctx, 1, KeyWordProgress); v != "{}" {
		t.Fatalf("local progress should be cleared anyway, got %q", v)
	}
}

func TestResetUserRunsAfterQueuedWrites(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	docs := storage.NewMemoryDocuments()
	progress := newTestProgressService(kv, docs)

	writer := worker.NewSerial(context.Background(), 16, nil)
	defer writer.Close()

	release := make(chan struct{})
	_ = writer.Submit(func(ctx context.Context) error {
		<-release
		return progress.Save(ctx, 1, entities.ProgressMap{"chat": {Level: 4, ReviewCount: 3}})
	})

	reset := NewResetService(kv, docs, writer, clock.NewFake(testNow), zap.NewNop())
	errc := make(chan error, 1)
	go func() { errc <- reset.ResetUser(ctx, 1) }()

	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("reset: %v", err)
	}

	if got := progress.Load(ctx, 1); len(got) != 0 {
		t.Fatalf("queued save overwrote the reset: %v", got)
	}
}
