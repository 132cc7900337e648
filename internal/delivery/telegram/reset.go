package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleResetCallback(
	ctx context.Context,
	cb *tgbotapi.CallbackQuery,
	data callbackData,
	chatID int64,
	messageID int,
	userID int64,
) {
	switch data.param(0) {
	case resetAsk:
		edit := newEdit(chatID, messageID, md(msgResetConfirm))
		kb := buildResetKeyboard()
		edit.ReplyMarkup = &kb
		h.send(edit)

	case resetConfirm:
		// A running quiz would write its old snapshot back over the reset.
		h.quizzes.remove(chatID)

		if err := h.resetService.ResetUser(ctx, userID); err != nil {
			h.logger.Error("failed to reset user progress", zap.Int64("user_id", userID), zap.Error(err))
			h.send(newEdit(chatID, messageID, md(msgInternalError)))
			break
		}
		h.send(newEdit(chatID, messageID, md(msgResetDone)))

	case resetCancel:
		h.send(newEdit(chatID, messageID, md(msgResetCancelled)))

	default:
		h.logger.Warn("unknown reset callback", zap.String("data", cb.Data))
	}

	h.answerCallback(cb, "")
}
