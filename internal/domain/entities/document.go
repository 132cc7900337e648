package entities

import "time"

// ReviewEntry is one line of the answer history shown on the statistics screen.
type ReviewEntry struct {
	Word    string `json:"word"`
	Correct bool   `json:"correct"`
	Date    string `json:"date"`
}

// UserDocument is the remote per-user document.
type UserDocument struct {
	Progress      ProgressMap `json:"progress,omitempty"`
	UnlockedWords []string    `json:"unlockedWords,omitempty"`
	UpdatedAt     string      `json:"updatedAt,omitempty"`
}

// DocumentPatch is a partial UserDocument for merge writes.
// Nil fields are left out of the JSON and therefore preserved remotely.
type DocumentPatch struct {
	Progress      ProgressMap `json:"progress,omitempty"`
	UnlockedWords []string    `json:"unlockedWords,omitempty"`
	UpdatedAt     string      `json:"updatedAt"`
}

// NewDocumentPatch creates a patch stamped with the given time.
func NewDocumentPatch(now time.Time) DocumentPatch {
	return DocumentPatch{UpdatedAt: FormatTimestamp(now)}
}

// ResetPatch overwrites the learning fields of the remote document with empty values.
type ResetPatch struct {
	Progress      ProgressMap `json:"progress"`
	UnlockedWords []string    `json:"unlockedWords"`
	UpdatedAt     string      `json:"updatedAt"`
}

// NewResetPatch creates an empty learning state stamped with the given time.
func NewResetPatch(now time.Time) ResetPatch {
	return ResetPatch{
		Progress:      ProgressMap{},
		UnlockedWords: []string{},
		UpdatedAt:     FormatTimestamp(now),
	}
}
