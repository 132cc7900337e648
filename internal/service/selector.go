package service

import (
	"sort"
	"time"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// SessionSize is the maximum number of words served in one quiz session.
const SessionSize = 10

// SelectSessionWords picks the words of a new session.
//
// A word is eligible when both of its sides are filled in and it is either not yet
// mastered or its review delay has elapsed. Eligible words are ordered by ascending
// frequence (ties keep lexicon order), deduplicated by Francais and capped at limit.
// Ids 0..N-1 are assigned in that order.
func SelectSessionWords(lexicon []entities.Word, progress entities.ProgressMap, now time.Time, limit int) []entities.SessionWord {
	if limit <= 0 {
		limit = SessionSize
	}

	eligible := make([]entities.Word, 0, len(lexicon))
	for _, w := range lexicon {
		if !w.IsComplete() {
			continue
		}
		if rec, ok := progress[w.Francais]; ok && !rec.IsDue(now) {
			continue
		}
		eligible = append(eligible, w)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Frequence < eligible[j].Frequence
	})

	seen := make(map[string]struct{}, len(eligible))
	out := make([]entities.SessionWord, 0, min(limit, len(eligible)))
	for _, w := range eligible {
		if len(out) == limit {
			break
		}
		if _, dup := seen[w.Francais]; dup {
			continue
		}
		seen[w.Francais] = struct{}{}
		out = append(out, entities.SessionWord{Word: w, ID: len(out)})
	}

	return out
}

// SessionFrancais returns the identity keys of the session words.
func SessionFrancais(words []entities.SessionWord) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Francais
	}
	return out
}
