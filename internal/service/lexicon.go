package service

import (
	"context"
	"strings"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// LexiconEntry is one line of the lexicon screen.
type LexiconEntry struct {
	Word     entities.Word
	Unlocked bool
	Record   *entities.MasteryRecord
}

// LexiconService serves the searchable word list.
type LexiconService struct {
	lexicon  LexiconRepository
	progress *ProgressService
}

// NewLexiconService creates a new lexicon service.
func NewLexiconService(lexicon LexiconRepository, progress *ProgressService) *LexiconService {
	return &LexiconService{
		lexicon:  lexicon,
		progress: progress,
	}
}

// Search returns the complete lexicon entries matching query on either side, ignoring
// case and accents. When no word contains the query, words close to it are returned
// instead. Words the user has unlocked come first; lexicon order is kept otherwise.
func (s *LexiconService) Search(ctx context.Context, userID int64, query string) []LexiconEntry {
	query = foldText(query)

	var words []entities.Word
	seen := make(map[string]struct{})
	for _, w := range s.lexicon.All() {
		if !w.IsComplete() {
			continue
		}
		if _, dup := seen[w.Francais]; dup {
			continue
		}
		seen[w.Francais] = struct{}{}
		words = append(words, w)
	}

	matches := filterWords(words, func(fr, sh string) bool {
		return strings.Contains(fr, query) || strings.Contains(sh, query)
	})
	if len(matches) == 0 && query != "" {
		matches = filterWords(words, func(fr, sh string) bool {
			return similarity(fr, query) >= fuzzyThreshold || similarity(sh, query) >= fuzzyThreshold
		})
	}
	if len(matches) == 0 {
		return nil
	}

	unlocked := make(map[string]struct{})
	for _, w := range s.progress.UnlockedWords(ctx, userID) {
		unlocked[w] = struct{}{}
	}
	progress := s.progress.Load(ctx, userID)

	var first, rest []LexiconEntry
	for _, w := range matches {
		entry := LexiconEntry{Word: w}
		if rec, ok := progress[w.Francais]; ok {
			entry.Record = &rec
		}
		if _, ok := unlocked[w.Francais]; ok {
			entry.Unlocked = true
			first = append(first, entry)
			continue
		}
		rest = append(rest, entry)
	}

	return append(first, rest...)
}

// filterWords keeps the words whose folded sides satisfy match.
func filterWords(words []entities.Word, match func(fr, sh string) bool) []entities.Word {
	var out []entities.Word
	for _, w := range words {
		if match(foldText(w.Francais), foldText(w.Shimaore)) {
			out = append(out, w)
		}
	}
	return out
}
