package service

import (
	"fmt"
	"time"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// ReviewPolicy selects how a MasteryRecord evolves after an answer.
type ReviewPolicy string

const (
	// PolicyProgressive counts every correct answer and resets the counter on a lapse.
	PolicyProgressive ReviewPolicy = "progressive"
	// PolicyMasteryOnly only counts correct answers that land on the top level,
	// and a wrong answer only demotes a mastered word.
	PolicyMasteryOnly ReviewPolicy = "mastery_only"
)

// ParseReviewPolicy validates a policy name from the configuration.
func ParseReviewPolicy(s string) (ReviewPolicy, error) {
	switch ReviewPolicy(s) {
	case "":
		return PolicyProgressive, nil
	case PolicyProgressive, PolicyMasteryOnly:
		return ReviewPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown review policy: %q", s)
	}
}

// ScoreResult is the outcome of scoring one answer.
type ScoreResult struct {
	Correct bool
	Record  entities.MasteryRecord
}

// Scorer computes the next MasteryRecord of a word. It has no side effects.
type Scorer struct {
	policy ReviewPolicy
}

// NewScorer creates a Scorer. An unknown policy falls back to PolicyProgressive.
func NewScorer(policy ReviewPolicy) *Scorer {
	if policy != PolicyMasteryOnly {
		policy = PolicyProgressive
	}
	return &Scorer{policy: policy}
}

// Policy returns the policy in use.
func (s *Scorer) Policy() ReviewPolicy {
	return s.policy
}

// Score grades chosen against current. chosen is nil when the countdown expired;
// prior is nil when the word was never seen before.
func (s *Scorer) Score(current entities.SessionWord, chosen *entities.SessionWord, prior *entities.MasteryRecord, now time.Time) ScoreResult {
	correct := chosen != nil && chosen.Francais == current.Francais

	var rec entities.MasteryRecord
	if prior != nil {
		rec = *prior
	}
	rec.Level = min(max(rec.Level, 0), entities.MaxLevel)
	rec.ReviewCount = max(rec.ReviewCount, 0)

	switch s.policy {
	case PolicyMasteryOnly:
		if correct {
			rec.Level = min(rec.Level+1, entities.MaxLevel)
			if rec.Level == entities.MaxLevel {
				rec.ReviewCount++
			}
		} else {
			if rec.Level == entities.MaxLevel {
				rec.Level--
			}
			rec.ReviewCount = 0
		}
	default:
		if correct {
			rec.Level = min(rec.Level+1, entities.MaxLevel)
			rec.ReviewCount++
		} else {
			rec.Level = max(rec.Level-1, 0)
			rec.ReviewCount = 0
		}
	}

	rec.LastSeen = entities.FormatTimestamp(now)

	return ScoreResult{Correct: correct, Record: rec}
}
