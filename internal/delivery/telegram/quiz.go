package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/service"
)

// tickRefreshEvery is the interval, in seconds, at which the countdown is redrawn
// while more than tickRefreshFinal seconds remain.
const (
	tickRefreshEvery = 5
	tickRefreshFinal = 3
)

// quizRegistry holds the running quiz of every chat.
type quizRegistry struct {
	mu     sync.Mutex
	byChat map[int64]*chatQuiz
}

type chatQuiz struct {
	session QuizSession
	view    *quizView
}

func newQuizRegistry() *quizRegistry {
	return &quizRegistry{byChat: make(map[int64]*chatQuiz)}
}

func (r *quizRegistry) get(chatID int64) (*chatQuiz, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.byChat[chatID]
	return q, ok
}

// replace stores q for the chat and closes the quiz it replaces.
func (r *quizRegistry) replace(chatID int64, q *chatQuiz) {
	r.mu.Lock()
	old := r.byChat[chatID]
	r.byChat[chatID] = q
	r.mu.Unlock()

	if old != nil {
		old.session.Close()
	}
}

// remove closes and forgets the quiz of the chat, if any.
func (r *quizRegistry) remove(chatID int64) {
	r.mu.Lock()
	q := r.byChat[chatID]
	delete(r.byChat, chatID)
	r.mu.Unlock()

	if q != nil {
		q.session.Close()
	}
}

func (r *quizRegistry) closeAll() {
	r.mu.Lock()
	quizzes := r.byChat
	r.byChat = make(map[int64]*chatQuiz)
	r.mu.Unlock()

	for _, q := range quizzes {
		q.session.Close()
	}
}

// quizView renders the events of one chat quiz as Telegram messages.
// The current question is a single message that is edited on ticks and on reveal.
type quizView struct {
	h      *Handler
	chatID int64

	mu        sync.Mutex
	messageID int
	question  entities.Question
}

var _ service.QuizListener = (*quizView)(nil)

func (v *quizView) OnQuestion(q entities.Question) {
	msg := newMessage(v.chatID, renderQuestion(q, q.TimeLimit))
	msg.ReplyMarkup = buildQuizAnswerKeyboard(q)

	sent, ok := v.h.send(msg)

	v.mu.Lock()
	v.question = q
	v.messageID = 0
	if ok {
		v.messageID = sent.MessageID
	}
	v.mu.Unlock()
}

func (v *quizView) OnTick(sessionID string, number, remaining int) {
	if remaining > tickRefreshFinal && remaining%tickRefreshEvery != 0 {
		return
	}

	v.mu.Lock()
	q, messageID := v.question, v.messageID
	v.mu.Unlock()

	if messageID == 0 || q.SessionID != sessionID || q.Number != number {
		return
	}

	edit := newEdit(v.chatID, messageID, renderQuestion(q, remaining))
	kb := buildQuizAnswerKeyboard(q)
	edit.ReplyMarkup = &kb
	v.h.send(edit)
}

func (v *quizView) OnAnswer(res entities.AnswerResult) {
	v.mu.Lock()
	q, messageID := v.question, v.messageID
	v.mu.Unlock()

	if q.SessionID != res.SessionID || q.Number != res.Number {
		return
	}

	text := renderReveal(q, res)
	if messageID == 0 {
		v.h.send(newMessage(v.chatID, text))
		return
	}
	v.h.send(newEdit(v.chatID, messageID, text))
}

func (v *quizView) OnFinished(summary entities.QuizSummary) {
	msg := newMessage(v.chatID, renderSummary(summary))
	msg.ReplyMarkup = buildQuizResultKeyboard()
	v.h.send(msg)
}

func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData, chatID, userID int64) {
	switch data.param(0) {
	case quizMenu:
		h.answerCallback(cb, "")
		h.sendDirectionChooser(chatID)

	case quizDirection:
		direction, err := entities.ParseDirection(data.param(1))
		if err != nil {
			h.logger.Warn("invalid quiz direction", zap.String("data", cb.Data))
			h.answerCallback(cb, "")
			return
		}
		h.answerCallback(cb, "")
		h.startQuiz(ctx, chatID, userID, direction)

	case quizRestart:
		h.answerCallback(cb, "")
		q, ok := h.quizzes.get(chatID)
		if !ok {
			h.sendDirectionChooser(chatID)
			return
		}
		h.runQuiz(ctx, chatID, userID, q.session.Restart)

	case quizAnswer:
		h.handleQuizAnswer(cb, data, chatID)

	default:
		h.logger.Warn("unknown quiz callback", zap.String("data", cb.Data))
		h.answerCallback(cb, "")
	}
}

func (h *Handler) startQuiz(ctx context.Context, chatID, userID int64, direction entities.Direction) {
	view := &quizView{h: h, chatID: chatID}
	session := h.newQuiz(userID, direction, view)
	h.quizzes.replace(chatID, &chatQuiz{session: session, view: view})

	h.runQuiz(ctx, chatID, userID, session.Start)
}

func (h *Handler) runQuiz(ctx context.Context, chatID, userID int64, start func(context.Context) error) {
	err := start(ctx)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoWordsAvailable):
		h.send(newMessage(chatID, md(msgNoWordsAvailable)))
	default:
		h.logger.Error("failed to start quiz",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.sendError(chatID, msgInternalError)
	}
}

func (h *Handler) handleQuizAnswer(cb *tgbotapi.CallbackQuery, data callbackData, chatID int64) {
	ans, ok := parseAnswerCallback(data)
	if !ok {
		h.logger.Warn("invalid answer callback", zap.String("data", cb.Data))
		h.answerCallback(cb, "")
		return
	}

	q, ok := h.quizzes.get(chatID)
	if !ok {
		h.answerCallback(cb, msgNoQuizInProgress)
		return
	}

	q.view.mu.Lock()
	current := sessionTag(q.view.question.SessionID)
	q.view.mu.Unlock()
	if current != ans.SessionTag {
		h.answerCallback(cb, msgQuestionClosed)
		return
	}

	// Acknowledge first: the answer path edits the message and schedules the next question.
	h.answerCallback(cb, "")

	err := q.session.Answer(ans.Number, ans.OptionID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrQuestionClosed), errors.Is(err, service.ErrUnknownOption):
		h.logger.Debug("stale answer ignored",
			zap.Int64("chat_id", chatID),
			zap.Int("number", ans.Number),
			zap.Error(err),
		)
	default:
		h.logger.Error("failed to submit answer", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
