package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/worker"
)

var (
	ErrNoWordsAvailable = errors.New("no words available")
	ErrQuestionClosed   = errors.New("question already answered or no longer current")
	ErrUnknownOption    = errors.New("unknown option")
	ErrQuizClosed       = errors.New("quiz closed")
)

// DefaultRevealDelay is how long the answer stays on screen before the next question.
const DefaultRevealDelay = 700 * time.Millisecond

// QuizConfig holds the tunables of a quiz session.
type QuizConfig struct {
	SessionSize int
	RevealDelay time.Duration
}

// QuizDeps groups the collaborators shared by all quiz controllers.
type QuizDeps struct {
	Lexicon  LexiconRepository
	Progress *ProgressService
	Settings *SettingsService
	Scorer   *Scorer
	Options  *OptionGenerator
	Clock    clock.Clock
	Writer   *worker.Pool
	Logger   *zap.Logger
	Config   QuizConfig
}

// QuizController runs the quiz sessions of one user.
//
// Every event (user answer, countdown tick, countdown expiry, advance to the next
// question) is handled under mu, and listener callbacks are delivered under eventMu
// only, so they never observe a half-applied transition and never run concurrently.
// Listeners must not call Start, Restart or Answer synchronously from a callback.
type QuizController struct {
	deps      QuizDeps
	userID    int64
	direction entities.Direction
	listener  QuizListener
	countdown *Countdown

	eventMu sync.Mutex

	mu        sync.Mutex
	state     entities.QuizState
	sessionID string
	words     []entities.SessionWord
	progress  entities.ProgressMap
	timeLimit int
	index     int
	question  entities.Question
	resolved  bool
	score     int
	records   []entities.AnswerRecord
	advance   clock.Timer
	closed    bool
}

// NewQuizController creates a controller for userID. listener may be nil.
func NewQuizController(deps QuizDeps, userID int64, direction entities.Direction, listener QuizListener) *QuizController {
	if deps.Config.SessionSize <= 0 {
		deps.Config.SessionSize = SessionSize
	}
	if deps.Config.RevealDelay < 0 {
		deps.Config.RevealDelay = DefaultRevealDelay
	}
	if deps.Scorer == nil {
		deps.Scorer = NewScorer(PolicyProgressive)
	}
	if deps.Options == nil {
		deps.Options = NewOptionGenerator()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if listener == nil {
		listener = nopListener{}
	}
	if direction == "" {
		direction = entities.DirectionFrToSh
	}

	return &QuizController{
		deps:      deps,
		userID:    userID,
		direction: direction,
		listener:  listener,
		countdown: NewCountdown(deps.Clock),
		state:     entities.QuizStateLoading,
	}
}

// Start loads the progress of the user, selects the session words and shows the first question.
// It returns ErrNoWordsAvailable, and leaves the controller in the empty state, when no word is eligible.
func (c *QuizController) Start(ctx context.Context) error {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrQuizClosed
	}
	c.stopTimersLocked()
	c.state = entities.QuizStateLoading
	c.mu.Unlock()

	progress := c.deps.Progress.Load(ctx, c.userID)
	timeLimit := c.deps.Settings.QuizTimer(ctx, c.userID)
	words := SelectSessionWords(c.deps.Lexicon.All(), progress, c.deps.Clock.Now(), c.deps.Config.SessionSize)

	c.mu.Lock()
	c.sessionID = uuid.NewString()
	c.words = words
	c.progress = progress
	c.timeLimit = timeLimit
	c.index = 0
	c.score = 0
	c.records = nil
	c.resolved = false
	c.question = entities.Question{}

	if len(words) == 0 {
		c.state = entities.QuizStateEmpty
		c.mu.Unlock()
		c.deps.Logger.Info("no words available for quiz", zap.Int64("user_id", c.userID))
		return ErrNoWordsAvailable
	}

	c.state = entities.QuizStateInProgress
	sessionID := c.sessionID
	q := c.prepareQuestionLocked()
	c.mu.Unlock()

	c.deps.Logger.Info("quiz started",
		zap.Int64("user_id", c.userID),
		zap.String("session_id", sessionID),
		zap.String("direction", string(c.direction)),
		zap.Int("words", len(words)),
	)

	unlocked := SessionFrancais(words)
	c.submit("unlock words", func(ctx context.Context) error {
		return c.deps.Progress.Unlock(ctx, c.userID, unlocked)
	})

	c.listener.OnQuestion(q)
	return nil
}

// Restart discards the current session and starts a new one with freshly loaded progress.
func (c *QuizController) Restart(ctx context.Context) error {
	return c.Start(ctx)
}

// Answer submits the option selected by the user for the given 1-based question number.
// A second submission for the same question, or one for a question that is no longer
// displayed, returns ErrQuestionClosed and changes nothing.
func (c *QuizController) Answer(number, optionID int) error {
	c.mu.Lock()
	if c.state != entities.QuizStateInProgress || c.question.Number != number || c.resolved {
		c.mu.Unlock()
		return ErrQuestionClosed
	}
	sessionID := c.sessionID
	var chosen *entities.SessionWord
	for _, opt := range c.question.Options {
		if opt.ID == optionID {
			opt := opt
			chosen = &opt
			break
		}
	}
	c.mu.Unlock()

	if chosen == nil {
		return ErrUnknownOption
	}
	return c.handleAnswer(sessionID, number, chosen)
}

// handleAnswer resolves question number of session sessionID with choice, nil meaning
// the countdown expired. Only the first resolution of a question is applied, and
// events of a replaced session are ignored.
func (c *QuizController) handleAnswer(sessionID string, number int, choice *entities.SessionWord) error {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	c.mu.Lock()
	if !c.isCurrentLocked(sessionID, number) || c.resolved {
		c.mu.Unlock()
		return ErrQuestionClosed
	}
	c.resolved = true
	c.countdown.Stop()

	word := c.question.Word
	var prior *entities.MasteryRecord
	if rec, ok := c.progress[word.Francais]; ok {
		prior = &rec
	}

	now := c.deps.Clock.Now()
	res := c.deps.Scorer.Score(word, choice, prior, now)
	if res.Correct {
		c.score++
	}

	record := entities.AnswerRecord{
		Word:     word,
		Correct:  res.Correct,
		Selected: choice,
		TimedOut: choice == nil,
	}
	c.records = append(c.records, record)
	c.progress[word.Francais] = res.Record
	snapshot := c.progress.Clone()

	result := entities.AnswerResult{
		SessionID: sessionID,
		Number:    number,
		Record:    record,
		Score:     c.score,
		Mastery:   res.Record,
	}
	c.advance = c.deps.Clock.AfterFunc(c.deps.Config.RevealDelay, func() { c.next(sessionID, number) })
	c.mu.Unlock()

	c.submit("save progress", func(ctx context.Context) error {
		return c.deps.Progress.Save(ctx, c.userID, snapshot)
	})
	entry := entities.ReviewEntry{
		Word:    word.Francais,
		Correct: res.Correct,
		Date:    entities.FormatTimestamp(now),
	}
	c.submit("append review", func(ctx context.Context) error {
		return c.deps.Progress.AppendReview(ctx, c.userID, entry)
	})

	c.listener.OnAnswer(result)
	return nil
}

// next moves on from the resolved question number, finishing the session after the last word.
func (c *QuizController) next(sessionID string, number int) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	c.mu.Lock()
	if !c.isCurrentLocked(sessionID, number) || !c.resolved {
		c.mu.Unlock()
		return
	}
	c.advance = nil

	if c.index+1 < len(c.words) {
		c.index++
		q := c.prepareQuestionLocked()
		c.mu.Unlock()
		c.listener.OnQuestion(q)
		return
	}

	c.state = entities.QuizStateFinished
	summary := c.summaryLocked()
	c.mu.Unlock()

	c.deps.Logger.Info("quiz finished",
		zap.Int64("user_id", c.userID),
		zap.String("session_id", summary.SessionID),
		zap.Int("score", summary.Score),
		zap.Int("total", summary.Total),
	)
	c.listener.OnFinished(summary)
}

func (c *QuizController) tick(sessionID string, number, remaining int) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	c.mu.Lock()
	current := c.isCurrentLocked(sessionID, number) && !c.resolved
	c.mu.Unlock()

	if current {
		c.listener.OnTick(sessionID, number, remaining)
	}
}

// prepareQuestionLocked builds the question at c.index and starts its countdown.
func (c *QuizController) prepareQuestionLocked() entities.Question {
	word := c.words[c.index]
	number := c.index + 1
	sessionID := c.sessionID

	c.question = entities.Question{
		SessionID: c.sessionID,
		Number:    number,
		Total:     len(c.words),
		Direction: c.direction,
		Word:      word,
		Options:   c.deps.Options.GenerateOptions(word, c.words),
		TimeLimit: c.timeLimit,
	}
	c.resolved = false

	c.countdown.Start(c.timeLimit,
		func(remaining int) { c.tick(sessionID, number, remaining) },
		func() { _ = c.handleAnswer(sessionID, number, nil) },
	)

	return c.question
}

// isCurrentLocked reports whether question number of session sessionID is on screen.
// Question numbers repeat across sessions, so both are compared.
func (c *QuizController) isCurrentLocked(sessionID string, number int) bool {
	return !c.closed &&
		c.state == entities.QuizStateInProgress &&
		c.sessionID == sessionID &&
		c.question.Number == number
}

// Question returns the question currently displayed.
func (c *QuizController) Question() (entities.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != entities.QuizStateInProgress {
		return entities.Question{}, false
	}
	return c.question, true
}

// State returns the current state of the controller.
func (c *QuizController) State() entities.QuizState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Summary returns the score and the answer records of the current session so far.
func (c *QuizController) Summary() entities.QuizSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaryLocked()
}

func (c *QuizController) summaryLocked() entities.QuizSummary {
	return entities.QuizSummary{
		SessionID: c.sessionID,
		Direction: c.direction,
		Score:     c.score,
		Total:     len(c.words),
		Records:   append([]entities.AnswerRecord(nil), c.records...),
	}
}

// Direction returns the quiz direction of the controller.
func (c *QuizController) Direction() entities.Direction {
	return c.direction
}

// Close cancels the countdown and the pending advance. Queued writes are kept
// and drained when the writer pool is closed.
func (c *QuizController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimersLocked()
}

func (c *QuizController) stopTimersLocked() {
	c.countdown.Stop()
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
}

// submit enqueues a fire-and-forget persistence job without waiting for queue space,
// since it runs while quiz events are serialized. A dropped job is logged; the next
// progress save carries the whole progress map. Failures never reach the session.
func (c *QuizController) submit(op string, job worker.Job) {
	if c.deps.Writer == nil {
		return
	}

	userID := c.userID
	err := c.deps.Writer.TrySubmit(func(ctx context.Context) error {
		if err := job(ctx); err != nil {
			return fmt.Errorf("%s for user %d: %w", op, userID, err)
		}
		return nil
	})
	if err != nil {
		c.deps.Logger.Warn("persistence job dropped",
			zap.Int64("user_id", userID),
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

type nopListener struct{}

func (nopListener) OnQuestion(entities.Question) {}
func (nopListener) OnTick(string, int, int) {}
func (nopListener) OnAnswer(entities.AnswerResult) {}
func (nopListener) OnFinished(entities.QuizSummary) {}
