package service

import (
	"context"
	"sort"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// WordStat is the mastery of one word on the statistics screen.
type WordStat struct {
	Francais string
	Record   entities.MasteryRecord
}

// Stats is the statistics screen of a user.
type Stats struct {
	TotalWords    int
	UnlockedWords int
	LevelCounts   [entities.MaxLevel + 1]int
	Mastered      int
	DueForReview  int
	Answers       int
	Correct       int
	Words         []WordStat
	RecentHistory []entities.ReviewEntry
}

// Accuracy returns the share of correct answers in the history, in percent.
func (s Stats) Accuracy() float64 {
	if s.Answers == 0 {
		return 0
	}
	return float64(s.Correct) * 100 / float64(s.Answers)
}

// StatsService computes the statistics screen.
type StatsService struct {
	lexicon  LexiconRepository
	progress *ProgressService
	clock    clock.Clock
}

// NewStatsService creates a new stats service.
func NewStatsService(lexicon LexiconRepository, progress *ProgressService, clk clock.Clock) *StatsService {
	return &StatsService{
		lexicon:  lexicon,
		progress: progress,
		clock:    clk,
	}
}

// recentHistorySize is the number of last answers listed on the statistics screen.
const recentHistorySize = 10

// Get computes the statistics of the user.
func (s *StatsService) Get(ctx context.Context, userID int64) *Stats {
	progress := s.progress.Load(ctx, userID)
	history := s.progress.History(ctx, userID)
	now := s.clock.Now()

	stats := &Stats{
		UnlockedWords: len(s.progress.UnlockedWords(ctx, userID)),
		Answers:       len(history),
	}

	seen := make(map[string]struct{})
	for _, w := range s.lexicon.All() {
		if !w.IsComplete() {
			continue
		}
		if _, dup := seen[w.Francais]; dup {
			continue
		}
		seen[w.Francais] = struct{}{}
		stats.TotalWords++
	}

	for francais, rec := range progress {
		level := min(max(rec.Level, 0), entities.MaxLevel)
		stats.LevelCounts[level]++
		if rec.IsMastered() {
			stats.Mastered++
			if rec.IsDue(now) {
				stats.DueForReview++
			}
		}
		stats.Words = append(stats.Words, WordStat{Francais: francais, Record: rec})
	}
	sort.Slice(stats.Words, func(i, j int) bool {
		if stats.Words[i].Record.Level != stats.Words[j].Record.Level {
			return stats.Words[i].Record.Level > stats.Words[j].Record.Level
		}
		return stats.Words[i].Francais < stats.Words[j].Francais
	})

	for _, e := range history {
		if e.Correct {
			stats.Correct++
		}
	}
	if len(history) > recentHistorySize {
		history = history[len(history)-recentHistorySize:]
	}
	stats.RecentHistory = history

	return stats
}
