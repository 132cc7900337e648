package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		h.answerCallback(cb, "")
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	userID := cb.From.ID
	data := decodeCallback(cb.Data)

	switch data.Action {
	case actionQuiz:
		h.handleQuizCallback(ctx, cb, data, chatID, userID)
		return

	case actionSettings:
		h.handleSettingsCallback(ctx, cb, data, chatID, messageID, userID)
		return

	case actionReset:
		h.handleResetCallback(ctx, cb, data, chatID, messageID, userID)
		return

	case actionStats:
		st := h.statsService.Get(ctx, userID)
		edit := newEdit(chatID, messageID, renderStats(st))
		kb := buildStatsKeyboard()
		edit.ReplyMarkup = &kb
		h.send(edit)

	case actionLexicon:
		page, query, ok := parseLexiconCallback(data)
		if !ok {
			h.logger.Warn("invalid lexicon callback", zap.String("data", cb.Data))
			break
		}
		entries := h.lexiconService.Search(ctx, userID, query)
		text, totalPages := buildLexiconPage(entries, page)
		if text == "" {
			break
		}
		edit := newEdit(chatID, messageID, text)
		edit.ReplyMarkup = buildLexiconKeyboard(page, totalPages, query)
		h.send(edit)

	default:
		h.logger.Warn("unknown callback action", zap.String("data", cb.Data))
	}

	h.answerCallback(cb, "")
}
