package entities

import "fmt"

// Direction selects the prompt and answer languages of a quiz session.
type Direction string

const (
	DirectionFrToSh Direction = "FR_TO_SH" // prompt in French, answer in Shimaoré
	DirectionShToFr Direction = "SH_TO_FR" // prompt in Shimaoré, answer in French
)

// ParseDirection validates a direction received from the outside.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionFrToSh, DirectionShToFr:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown quiz direction: %q", s)
	}
}

// QuizState is the state of a quiz session controller.
type QuizState string

const (
	QuizStateLoading    QuizState = "loading"     // progress is being loaded and words selected
	QuizStateEmpty      QuizState = "empty"       // no eligible word, the session cannot start
	QuizStateInProgress QuizState = "in_progress" // a question is displayed or being revealed
	QuizStateFinished   QuizState = "finished"    // terminal, summary available
)

// AnswerRecord describes how one question of a session was resolved.
type AnswerRecord struct {
	Word     SessionWord  // word that was asked
	Correct  bool         // whether the selected option was the right one
	Selected *SessionWord // selected option, nil when the countdown expired
	TimedOut bool         // the countdown expired before any selection
}

// Question is the view of the current question handed to the presentation layer.
type Question struct {
	SessionID string
	Number    int // 1-based question number
	Total     int // session length
	Direction Direction
	Word      SessionWord
	Options   []SessionWord
	TimeLimit int // seconds
}

// AnswerResult is the outcome of one question, emitted once per question.
type AnswerResult struct {
	SessionID string
	Number    int
	Record    AnswerRecord
	Score     int
	Mastery   MasteryRecord // updated record of the asked word
}

// QuizSummary is the end-of-session report.
type QuizSummary struct {
	SessionID string
	Direction Direction
	Score     int
	Total     int
	Records   []AnswerRecord
}

// Mistakes returns the records that were not answered correctly.
func (s QuizSummary) Mistakes() []AnswerRecord {
	var out []AnswerRecord
	for _, r := range s.Records {
		if !r.Correct {
			out = append(out, r)
		}
	}
	return out
}
