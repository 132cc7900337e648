package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
)

func newTestProgressService(kv KVStore, docs DocumentStore) *ProgressService {
	return NewProgressService(kv, docs, clock.NewFake(testNow), zap.NewNop())
}

func TestProgressLoadMalformed(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	_ = kv.Set(ctx, 1, KeyWordProgress, "{not json")
	_ = kv.Set(ctx, 1, KeyUnlockedWords, "42")
	_ = kv.Set(ctx, 1, KeyReviewHistory, `{"word":"chat"}`)

	s := newTestProgressService(kv, storage.NewMemoryDocuments())

	if got := s.Load(ctx, 1); got == nil || len(got) != 0 {
		t.Fatalf("expected an empty map, got %v", got)
	}
	if got := s.UnlockedWords(ctx, 1); len(got) != 0 {
		t.Fatalf("expected no unlocked words, got %v", got)
	}
	if got := s.History(ctx, 1); len(got) != 0 {
		t.Fatalf("expected no history, got %v", got)
	}
}

func TestProgressSaveWritesLocalAndRemote(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	docs := storage.NewMemoryDocuments()
	s := newTestProgressService(kv, docs)

	progress := entities.ProgressMap{"chat": {Level: 2, ReviewCount: 1, LastSeen: entities.FormatTimestamp(testNow)}}
	if err := s.Save(ctx, 1, progress); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got := storedProgress(t, kv, 1); got["chat"] != progress["chat"] {
		t.Fatalf("unexpected local progress: %+v", got)
	}

	raw, err := docs.Get(ctx, 1)
	if err != nil {
		t.Fatalf("remote get: %v", err)
	}
	var doc entities.UserDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode remote: %v", err)
	}
	if doc.Progress["chat"] != progress["chat"] {
		t.Fatalf("unexpected remote progress: %+v", doc.Progress)
	}
	if doc.UpdatedAt != entities.FormatTimestamp(testNow) {
		t.Fatalf("unexpected updatedAt %q", doc.UpdatedAt)
	}
}

func TestProgressSaveJoinsErrors(t *testing.T) {
	s := newTestProgressService(failingKV{}, failingDocs{})

	err := s.Save(context.Background(), 1, entities.ProgressMap{"chat": {Level: 1}})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestProgressLoadRestoresFromRemote(t *testing.T) {
	ctx := context.Background()
	docs := storage.NewMemoryDocuments()
	_ = docs.Merge(ctx, 1, []byte(`{"progress":{"chat":{"level":3,"lastSeen":"","reviewCount":2}}}`))

	s := newTestProgressService(storage.NewMemoryKV(), docs)

	got := s.Load(ctx, 1)
	if rec, ok := got["chat"]; !ok || rec.Level != 3 || rec.ReviewCount != 2 {
		t.Fatalf("expected remote progress, got %+v", got)
	}
}

func TestProgressLoadPrefersLocal(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	docs := storage.NewMemoryDocuments()
	_ = kv.Set(ctx, 1, KeyWordProgress, `{"eau":{"level":1,"lastSeen":"","reviewCount":1}}`)
	_ = docs.Merge(ctx, 1, []byte(`{"progress":{"chat":{"level":3,"lastSeen":"","reviewCount":2}}}`))

	got := newTestProgressService(kv, docs).Load(ctx, 1)
	if _, ok := got["eau"]; !ok || len(got) != 1 {
		t.Fatalf("expected local progress only, got %+v", got)
	}
}

func TestProgressUnlockUnion(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	docs := storage.NewMemoryDocuments()
	s := newTestProgressService(kv, docs)

	if err := s.Unlock(ctx, 1, []string{"chat", "eau"}); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := s.Unlock(ctx, 1, []string{"eau", "feu", ""}); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	got := s.UnlockedWords(ctx, 1)
	want := []string{"chat", "eau", "feu"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	raw, _ := docs.Get(ctx, 1)
	var doc entities.UserDocument
	_ = json.Unmarshal(raw, &doc)
	if fmt.Sprint(doc.UnlockedWords) != fmt.Sprint(want) {
		t.Fatalf("remote unlocked words: expected %v, got %v", want, doc.UnlockedWords)
	}
}

func TestProgressAppendReviewCapped(t *testing.T) {
	ctx := context.Background()
	s := newTestProgressService(storage.NewMemoryKV(), storage.NewMemoryDocuments())

	for i := 0; i < MaxReviewHistory+5; i++ {
		entry := entities.ReviewEntry{Word: fmt.Sprintf("mot%d", i), Correct: i%2 == 0, Date: entities.FormatTimestamp(testNow)}
		if err := s.AppendReview(ctx, 1, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history := s.History(ctx, 1)
	if len(history) != MaxReviewHistory {
		t.Fatalf("expected %d entries, got %d", MaxReviewHistory, len(history))
	}
	if history[0].Word != "mot5" {
		t.Fatalf("expected the oldest entries to be dropped, first is %q", history[0].Word)
	}
}

func TestProgressPush(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	docs := storage.NewMemoryDocuments()
	s := newTestProgressService(kv, docs)

	if err := s.Push(ctx, 1); err != nil {
		t.Fatalf("push without data: %v", err)
	}
	if _, err := docs.Get(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no remote document, got %v", err)
	}

	_ = kv.Set(ctx, 1, KeyWordProgress, `{"chat":{"level":2,"lastSeen":"","reviewCount":1}}`)
	if err := s.Push(ctx, 1); err != nil {
		t.Fatalf("push: %v", err)
	}

	raw, err := docs.Get(ctx, 1)
	if err != nil {
		t.Fatalf("remote get: %v", err)
	}
	var doc entities.UserDocument
	_ = json.Unmarshal(raw, &doc)
	if doc.Progress["chat"].Level != 2 {
		t.Fatalf("unexpected remote document: %+v", doc)
	}
}
