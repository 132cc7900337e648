package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/worker"
)

// runToEnd advances the clock second by second until the session finishes.
func runToEnd(t *testing.T, f *quizFixture) {
	t.Helper()
	for i := 0; i < 500 && f.ctrl.State() != entities.QuizStateFinished; i++ {
		f.clock.Advance(time.Second)
	}
	if f.ctrl.State() != entities.QuizStateFinished {
		t.Fatalf("session did not finish, state %q", f.ctrl.State())
	}
}

func TestQuizAllTimeouts(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(12), nil, nil)

	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	runToEnd(t, f)

	summary := f.ctrl.Summary()
	if summary.Score != 0 {
		t.Errorf("expected score 0, got %d", summary.Score)
	}
	if len(summary.Records) != 10 {
		t.Fatalf("expected 10 records, got %d", len(summary.Records))
	}
	for i, r := range summary.Records {
		if r.Correct || !r.TimedOut || r.Selected != nil {
			t.Errorf("record %d: expected a timeout, got %+v", i, r)
		}
		if r.Word.ID != i {
			t.Errorf("record %d: asked word id %d", i, r.Word.ID)
		}
	}
	if len(f.listener.finished) != 1 {
		t.Errorf("expected one finished event, got %d", len(f.listener.finished))
	}
	if len(f.listener.answers) != 10 {
		t.Errorf("expected 10 answer events, got %d", len(f.listener.answers))
	}
	if f.clock.Pending() != 0 {
		t.Errorf("expected no pending timers after finish, got %d", f.clock.Pending())
	}

	f.writer.Close()

	progress := storedProgress(t, f.kv, testUserID)
	if len(progress) != 10 {
		t.Fatalf("expected 10 stored records, got %d", len(progress))
	}
	for word, rec := range progress {
		if rec.Level != 0 || rec.ReviewCount != 0 || rec.LastSeen == "" {
			t.Errorf("%s: unexpected record %+v", word, rec)
		}
	}

	if got := f.progress.History(context.Background(), testUserID); len(got) != 10 {
		t.Errorf("expected 10 history entries, got %d", len(got))
	}
	if got := f.progress.UnlockedWords(context.Background(), testUserID); len(got) != 10 {
		t.Errorf("expected 10 unlocked words, got %d", len(got))
	}
}

func TestQuizCorrectAnswer(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(12), nil, nil)
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	q := f.listener.lastQuestion(t)
	if q.Number != 1 || q.Total != 10 || q.TimeLimit != entities.DefaultQuizTimer {
		t.Fatalf("unexpected first question: %+v", q)
	}

	if err := f.ctrl.Answer(q.Number, q.Word.ID); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := f.ctrl.Answer(q.Number, q.Word.ID); !errors.Is(err, ErrQuestionClosed) {
		t.Fatalf("expected ErrQuestionClosed on double submission, got %v", err)
	}

	summary := f.ctrl.Summary()
	if summary.Score != 1 || len(summary.Records) != 1 || !summary.Records[0].Correct {
		t.Fatalf("unexpected summary after correct answer: %+v", summary)
	}

	res := f.listener.answers[0]
	if res.Mastery.Level != 1 || res.Mastery.ReviewCount != 1 {
		t.Errorf("unexpected mastery after first correct answer: %+v", res.Mastery)
	}

	f.clock.Advance(DefaultRevealDelay)
	next := f.listener.lastQuestion(t)
	if next.Number != 2 {
		t.Fatalf("expected question 2 after the reveal delay, got %d", next.Number)
	}

	// the first countdown must not resolve the second question early
	f.clock.Advance(9 * time.Second)
	if got := len(f.ctrl.Summary().Records); got != 1 {
		t.Fatalf("expected 1 record before the second timeout, got %d", got)
	}
	f.clock.Advance(time.Second)
	if got := len(f.ctrl.Summary().Records); got != 2 {
		t.Fatalf("expected the second question to time out, got %d records", got)
	}
}

func TestQuizAnswerAfterTimeoutIsIgnored(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(5), nil, nil)
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	q := f.listener.lastQuestion(t)

	f.clock.Advance(time.Duration(q.TimeLimit) * time.Second)

	if err := f.ctrl.Answer(q.Number, q.Word.ID); !errors.Is(err, ErrQuestionClosed) {
		t.Fatalf("expected ErrQuestionClosed, got %v", err)
	}
	summary := f.ctrl.Summary()
	if summary.Score != 0 || len(summary.Records) != 1 || !summary.Records[0].TimedOut {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestQuizTicks(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(5), nil, nil)
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.clock.Advance(3 * time.Second)

	want := []int{9, 8, 7}
	if len(f.listener.ticks) != len(want) {
		t.Fatalf("expected ticks %v, got %v", want, f.listener.ticks)
	}
	for i := range want {
		if f.listener.ticks[i] != want[i] {
			t.Fatalf("expected ticks %v, got %v", want, f.listener.ticks)
		}
	}
}

func TestQuizUnknownOption(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(5), nil, nil)
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	q := f.listener.lastQuestion(t)

	if err := f.ctrl.Answer(q.Number, 99); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	if err := f.ctrl.Answer(q.Number+1, q.Word.ID); !errors.Is(err, ErrQuestionClosed) {
		t.Fatalf("expected ErrQuestionClosed for a future question, got %v", err)
	}
}

func TestQuizShortSessionUsesStoredTimer(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(3), nil, nil)
	if err := f.ctrl.deps.Settings.SetQuizTimer(context.Background(), testUserID, 20); err != nil {
		t.Fatalf("set timer: %v", err)
	}

	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	q := f.listener.lastQuestion(t)
	if q.Total != 3 || q.TimeLimit != 20 {
		t.Fatalf("unexpected question: %+v", q)
	}
	if len(q.Options) != 3 {
		t.Fatalf("expected 3 options from a 3 word session, got %d", len(q.Options))
	}

	for i := 0; i < 3; i++ {
		q := f.listener.lastQuestion(t)
		if err := f.ctrl.Answer(q.Number, q.Word.ID); err != nil {
			t.Fatalf("answer %d: %v", q.Number, err)
		}
		f.clock.Advance(DefaultRevealDelay)
	}

	if f.ctrl.State() != entities.QuizStateFinished {
		t.Fatalf("expected finished, got %q", f.ctrl.State())
	}
	if summary := f.ctrl.Summary(); summary.Score != 3 || summary.Total != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestQuizNoWordsAvailable(t *testing.T) {
	lexicon := makeLexicon(3)
	progress := entities.ProgressMap{}
	for _, w := range lexicon {
		progress[w.Francais] = entities.MasteryRecord{
			Level:       entities.MaxLevel,
			ReviewCount: 3,
			LastSeen:    entities.FormatTimestamp(testNow),
		}
	}
	data, _ := json.Marshal(progress)

	f := newQuizFixture(t, lexicon, nil, nil)
	if err := f.kv.Set(context.Background(), testUserID, KeyWordProgress, string(data)); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	if err := f.ctrl.Start(context.Background()); !errors.Is(err, ErrNoWordsAvailable) {
		t.Fatalf("expected ErrNoWordsAvailable, got %v", err)
	}
	if f.ctrl.State() != entities.QuizStateEmpty {
		t.Fatalf("expected empty state, got %q", f.ctrl.State())
	}
	if len(f.listener.questions) != 0 {
		t.Fatal("no question must be shown for an empty session")
	}
}

func TestQuizPersistenceFailureIsNotFatal(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(4), failingKV{}, failingDocs{})
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 4; i++ {
		q := f.listener.lastQuestion(t)
		if err := f.ctrl.Answer(q.Number, q.Word.ID); err != nil {
			t.Fatalf("answer %d: %v", q.Number, err)
		}
		f.clock.Advance(DefaultRevealDelay)
	}

	if f.ctrl.State() != entities.QuizStateFinished {
		t.Fatalf("expected finished, got %q", f.ctrl.State())
	}
	if got := f.ctrl.Summary().Score; got != 4 {
		t.Fatalf("expected score 4, got %d", got)
	}
}

func TestQuizRestartResetsSession(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(12), nil, nil)
	ctx := context.Background()
	if err := f.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	first := f.listener.lastQuestion(t)
	if err := f.ctrl.Answer(first.Number, first.Word.ID); err != nil {
		t.Fatalf("answer: %v", err)
	}

	f.writer.Close()

	if err := f.ctrl.Restart(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}

	summary := f.ctrl.Summary()
	if summary.Score != 0 || len(summary.Records) != 0 {
		t.Fatalf("expected a fresh session, got %+v", summary)
	}
	if summary.SessionID == first.SessionID {
		t.Fatal("expected a new session id")
	}

	q := f.listener.lastQuestion(t)
	if q.Number != 1 {
		t.Fatalf("expected question 1, got %d", q.Number)
	}

	// the pending advance of the previous session must not move the new one
	f.clock.Advance(DefaultRevealDelay)
	if got := f.listener.lastQuestion(t); got.Number != 1 || got.SessionID != q.SessionID {
		t.Fatalf("stale advance leaked into the new session: %+v", got)
	}
}

func TestQuizCloseStopsTimers(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(5), nil, nil)
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.ctrl.Close()
	f.clock.Advance(time.Minute)

	if got := len(f.ctrl.Summary().Records); got != 0 {
		t.Fatalf("expected no answers after close, got %d", got)
	}
	if err := f.ctrl.Start(context.Background()); !errors.Is(err, ErrQuizClosed) {
		t.Fatalf("expected ErrQuizClosed, got %v", err)
	}
}

func TestQuizStaleExpiryIgnoredAfterRestart(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(12), nil, nil)
	ctx := context.Background()
	if err := f.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	old := f.listener.lastQuestion(t)

	if err := f.ctrl.Restart(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	fresh := f.listener.lastQuestion(t)
	if fresh.Number != old.Number || fresh.SessionID == old.SessionID {
		t.Fatalf("expected question %d of a new session, got %+v", old.Number, fresh)
	}

	// an expiry of the replaced session arriving late carries the same question number
	if err := f.ctrl.handleAnswer(old.SessionID, old.Number, nil); !errors.Is(err, ErrQuestionClosed) {
		t.Fatalf("expected ErrQuestionClosed for the old session, got %v", err)
	}
	if got := len(f.ctrl.Summary().Records); got != 0 {
		t.Fatalf("stale expiry resolved the new question, %d records", got)
	}
	if err := f.ctrl.Answer(fresh.Number, fresh.Word.ID); err != nil {
		t.Fatalf("new question should still be open: %v", err)
	}
}

func TestQuizExpiryRacingRestart(t *testing.T) {
	f := newQuizFixture(t, makeLexicon(12), nil, nil)
	ctx := context.Background()
	if err := f.ctrl.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	q := f.listener.lastQuestion(t)
	f.clock.Advance(time.Duration(q.TimeLimit-1) * time.Second)

	// hold the event lock so the final second fires and waits behind it
	f.ctrl.eventMu.Lock()
	fired := make(chan struct{})
	go func() {
		f.clock.Advance(time.Second)
		close(fired)
	}()
	deadline := time.Now().Add(time.Second)
	for f.clock.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	f.ctrl.eventMu.Unlock()

	if err := f.ctrl.Restart(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	<-fired

	fresh, ok := f.ctrl.Question()
	if !ok || fresh.Number != 1 || fresh.SessionID == q.SessionID {
		t.Fatalf("expected question 1 of a new session, got %+v (%v)", fresh, ok)
	}
	if got := len(f.ctrl.Summary().Records); got != 0 {
		t.Fatalf("expiry of the old session leaked into the new one, %d records", got)
	}
	if err := f.ctrl.Answer(fresh.Number, fresh.Word.ID); err != nil {
		t.Fatalf("new question should still be open: %v", err)
	}
}

func TestQuizAnswerDoesNotWaitForFullWriter(t *testing.T) {
	// never started, so the single queue slot stays taken
	writer := worker.New(1, 1, nil)
	f := newQuizFixtureWithWriter(t, makeLexicon(5), nil, nil, writer)
	if err := f.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	q := f.listener.lastQuestion(t)
	done := make(chan error, 1)
	go func() { done <- f.ctrl.Answer(q.Number, q.Word.ID) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("answer blocked on a full persistence queue")
	}

	f.clock.Advance(DefaultRevealDelay)
	if got := f.listener.lastQuestion(t); got.Number != 2 {
		t.Fatalf("expected question 2, got %d", got.Number)
	}
}
