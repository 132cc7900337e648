package entities

import (
	"math"
	"time"
)

// MaxLevel is the mastery level at which a word is considered learned
// and becomes subject to spaced review.
const MaxLevel = 5

// MasteryRecord stores how well a user knows a single word.
// One record exists per Word.Francais; records are created on first exposure and never deleted.
type MasteryRecord struct {
	Level       int    `json:"level"`       // 0..5, 5 means learned
	LastSeen    string `json:"lastSeen"`    // RFC 3339 timestamp of the last answer, may be empty
	ReviewCount int    `json:"reviewCount"` // drives the exponential review backoff
}

// ProgressMap maps Word.Francais to the mastery record of that word.
type ProgressMap map[string]MasteryRecord

// Clone returns a copy of the map that can be handed to another goroutine.
func (p ProgressMap) Clone() ProgressMap {
	out := make(ProgressMap, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// IsMastered reports whether the record reached the top level.
func (r MasteryRecord) IsMastered() bool {
	return r.Level >= MaxLevel
}

// LastSeenAt parses LastSeen. The second value is false when the timestamp is empty or malformed.
func (r MasteryRecord) LastSeenAt() (time.Time, bool) {
	if r.LastSeen == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, r.LastSeen)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsDue reports whether the word may be served in a session at now.
//
// Words still being learned (level below 5) are always due. A mastered word is due once
// the number of days since it was last seen reaches 2^reviewCount. A mastered record
// without a readable timestamp is treated as due so that it can never get stuck.
func (r MasteryRecord) IsDue(now time.Time) bool {
	if !r.IsMastered() {
		return true
	}

	last, ok := r.LastSeenAt()
	if !ok {
		return true
	}

	days := now.Sub(last).Hours() / 24
	delay := math.Ldexp(1, max(r.ReviewCount, 0))

	return days >= delay
}

// FormatTimestamp formats t the way LastSeen and UpdatedAt values are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
