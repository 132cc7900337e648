package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/worker"
)

var errStoreDown = errors.New("store down")

// failingKV fails every write and reports every key as missing.
type failingKV struct{}

func (failingKV) Get(context.Context, int64, string) (string, error) { return "", storage.ErrNotFound }
func (failingKV) Set(context.Context, int64, string, string) error { return errStoreDown }
func (failingKV) Users(context.Context) ([]int64, error) { return nil, errStoreDown }

// failingDocs fails every read and write.
type failingDocs struct{}

func (failingDocs) Get(context.Context, int64) ([]byte, error) { return nil, errStoreDown }
func (failingDocs) Merge(context.Context, int64, []byte) error { return errStoreDown }

type staticLexicon []entities.Word

func (l staticLexicon) All() []entities.Word { return l }

type recordingListener struct {
	mu        sync.Mutex
	questions []entities.Question
	ticks     []int
	answers   []entities.AnswerResult
	finished  []entities.QuizSummary
}

func (l *recordingListener) OnQuestion(q entities.Question) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.questions = append(l.questions, q)
}

func (l *recordingListener) OnTick(_ string, _ int, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticks = append(l.ticks, remaining)
}

func (l *recordingListener) OnAnswer(res entities.AnswerResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.answers = append(l.answers, res)
}

func (l *recordingListener) OnFinished(s entities.QuizSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished = append(l.finished, s)
}

func (l *recordingListener) lastQuestion(t *testing.T) entities.Question {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.questions) == 0 {
		t.Fatal("no question was shown")
	}
	return l.questions[len(l.questions)-1]
}

type quizFixture struct {
	clock    *clock.Fake
	kv       KVStore
	docs     DocumentStore
	writer   *worker.Pool
	progress *ProgressService
	listener *recordingListener
	ctrl     *QuizController
}

const testUserID int64 = 42

func newQuizFixture(t *testing.T, lexicon []entities.Word, kv KVStore, docs DocumentStore) *quizFixture {
	t.Helper()
	writer := worker.NewSerial(context.Background(), 256, nil)
	t.Cleanup(writer.Close)
	return newQuizFixtureWithWriter(t, lexicon, kv, docs, writer)
}

func newQuizFixtureWithWriter(t *testing.T, lexicon []entities.Word, kv KVStore, docs DocumentStore, writer *worker.Pool) *quizFixture {
	t.Helper()

	if kv == nil {
		kv = storage.NewMemoryKV()
	}
	if docs == nil {
		docs = storage.NewMemoryDocuments()
	}

	logger := zap.NewNop()
	clk := clock.NewFake(testNow)

	progress := NewProgressService(kv, docs, clk, logger)
	listener := &recordingListener{}

	deps := QuizDeps{
		Lexicon:  staticLexicon(lexicon),
		Progress: progress,
		Settings: NewSettingsService(kv, entities.DefaultQuizTimer, logger),
		Scorer:   NewScorer(PolicyProgressive),
		Options:  NewOptionGeneratorWithSeed(1),
		Clock:    clk,
		Writer:   writer,
		Logger:   logger,
		Config:   QuizConfig{SessionSize: SessionSize, RevealDelay: DefaultRevealDelay},
	}

	ctrl := NewQuizController(deps, testUserID, entities.DirectionFrToSh, listener)
	t.Cleanup(ctrl.Close)

	return &quizFixture{
		clock:    clk,
		kv:       kv,
		docs:     docs,
		writer:   writer,
		progress: progress,
		listener: listener,
		ctrl:     ctrl,
	}
}

func storedProgress(t *testing.T, kv KVStore, userID int64) entities.ProgressMap {
	t.Helper()
	raw, err := kv.Get(context.Background(), userID, KeyWordProgress)
	if err != nil {
		t.Fatalf("read stored progress: %v", err)
	}
	progress := entities.ProgressMap{}
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		t.Fatalf("decode stored progress: %v", err)
	}
	return progress
}
