package entities

import "slices"

// DefaultQuizTimer is the per-question time limit, in seconds, when none is stored.
const DefaultQuizTimer = 10

// QuizTimerChoices lists the time limits offered in the settings.
var QuizTimerChoices = []int{10, 15, 20}

// UserSettings stores user-specific quiz preferences.
type UserSettings struct {
	UserID               int64
	QuizTimer            int  // seconds per question
	NotificationsEnabled bool // daily reminder flag
}

// NewUserSettings creates a UserSettings instance with default values.
func NewUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:    userID,
		QuizTimer: DefaultQuizTimer,
	}
}

// IsValidQuizTimer reports whether seconds is one of the offered choices.
func IsValidQuizTimer(seconds int) bool {
	return slices.Contains(QuizTimerChoices, seconds)
}
