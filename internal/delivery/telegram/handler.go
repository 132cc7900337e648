package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handler struct {
	bot             BotAPI
	logger          *zap.Logger
	newQuiz         QuizFactory
	settingsService SettingsService
	statsService    StatsService
	lexiconService  LexiconService
	resetService    ResetService
	quizzes         *quizRegistry
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	newQuiz QuizFactory,
	settingsService SettingsService,
	statsService StatsService,
	lexiconService LexiconService,
	resetService ResetService,
) *Handler {
	return &Handler{
		bot:             bot,
		logger:          logger,
		newQuiz:         newQuiz,
		settingsService: settingsService,
		statsService:    statsService,
		lexiconService:  lexiconService,
		resetService:    resetService,
		quizzes:         newQuizRegistry(),
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")
	defer h.quizzes.closeAll()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if !update.Message.IsCommand() {
		// Plain text is treated as a lexicon search.
		_ = h.withErrorHandling("search", userID, h.lexiconHandler(userID, update.Message.Text))(ctx, chatID)
		return
	}

	switch update.Message.Command() {
	case "start":
		msg := newMessage(chatID, welcomeMessage())
		msg.ReplyMarkup = buildDirectionKeyboard()
		h.send(msg)

	case "help":
		h.send(newMessage(chatID, helpMessage()))

	case "quiz":
		h.sendDirectionChooser(chatID)

	case "lexique", "lexicon":
		_ = h.withErrorHandling("lexique", userID, h.lexiconHandler(userID, update.Message.CommandArguments()))(ctx, chatID)

	case "stats":
		_ = h.withErrorHandling("stats", userID, h.statsHandler(userID))(ctx, chatID)

	case "settings":
		_ = h.withErrorHandling("settings", userID, h.settingsHandler(userID))(ctx, chatID)

	case "reset":
		msg := newMessage(chatID, md(msgResetConfirm))
		msg.ReplyMarkup = buildResetKeyboard()
		h.send(msg)

	default:
		h.send(newMessage(chatID, md(msgUnknownCommand)))
	}
}

func (h *Handler) sendDirectionChooser(chatID int64) {
	msg := newMessage(chatID, md(msgChooseDirection))
	msg.ReplyMarkup = buildDirectionKeyboard()
	h.send(msg)
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newMessage(chatID, md(err)))
}

func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	sent, err := h.bot.Send(c)
	if err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return tgbotapi.Message{}, false
	}
	return sent, true
}

// answerCallback removes the loading indicator of a button, optionally showing text.
func (h *Handler) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.logger.Warn("failed to answer callback",
			zap.String("callback_id", cb.ID),
			zap.Error(err),
		)
	}
}
