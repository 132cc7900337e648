package service

import (
	"context"
	"testing"
	"time"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
)

func TestStatsGet(t *testing.T) {
	ctx := context.Background()
	progress := newTestProgressService(storage.NewMemoryKV(), storage.NewMemoryDocuments())

	err := progress.Save(ctx, 1, entities.ProgressMap{
		"chat":  {Level: 5, ReviewCount: 1, LastSeen: entities.FormatTimestamp(testNow.Add(-3 * 24 * time.Hour))},
		"chien": {Level: 5, ReviewCount: 3, LastSeen: entities.FormatTimestamp(testNow)},
		"eau":   {Level: 2, ReviewCount: 2},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = progress.Unlock(ctx, 1, []string{"chat", "chien", "eau", "feu"})
	for i := 0; i < 12; i++ {
		_ = progress.AppendReview(ctx, 1, entities.ReviewEntry{Word: "chat", Correct: i < 9})
	}

	s := NewStatsService(staticLexicon(makeLexicon(20)), progress, clock.NewFake(testNow))
	stats := s.Get(ctx, 1)

	if stats.TotalWords != 20 || stats.UnlockedWords != 4 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if stats.LevelCounts[5] != 2 || stats.LevelCounts[2] != 1 {
		t.Errorf("unexpected level counts: %v", stats.LevelCounts)
	}
	if stats.Mastered != 2 || stats.DueForReview != 1 {
		t.Errorf("expected 2 mastered and 1 due, got %d and %d", stats.Mastered, stats.DueForReview)
	}
	if stats.Answers != 12 || stats.Correct != 9 || stats.Accuracy() != 75 {
		t.Errorf("unexpected history stats: %d answers, %d correct, %.1f%%", stats.Answers, stats.Correct, stats.Accuracy())
	}
	if len(stats.RecentHistory) != recentHistorySize {
		t.Errorf("expected %d recent entries, got %d", recentHistorySize, len(stats.RecentHistory))
	}
	if stats.Words[0].Francais != "chat" || stats.Words[2].Francais != "eau" {
		t.Errorf("unexpected word order: %+v", stats.Words)
	}
}

func TestStatsEmpty(t *testing.T) {
	progress := newTestProgressService(storage.NewMemoryKV(), storage.NewMemoryDocuments())
	stats := NewStatsService(staticLexicon(nil), progress, clock.NewFake(testNow)).Get(context.Background(), 1)

	if stats.TotalWords != 0 || stats.Answers != 0 || stats.Accuracy() != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
