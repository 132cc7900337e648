package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/service"
)

func (h *Handler) settingsHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		settings := h.settingsService.Get(ctx, userID)

		msg := newMessage(chatID, renderSettings(settings))
		msg.ReplyMarkup = buildSettingsKeyboard(settings)
		h.send(msg)
		return nil
	}
}

func (h *Handler) handleSettingsCallback(
	ctx context.Context,
	cb *tgbotapi.CallbackQuery,
	data callbackData,
	chatID int64,
	messageID int,
	userID int64,
) {
	notice := ""

	switch data.param(0) {
	case settingsMenu:

	case settingsTimer:
		seconds, err := strconv.Atoi(data.param(1))
		if err == nil {
			err = h.settingsService.SetQuizTimer(ctx, userID, seconds)
		}
		switch {
		case err == nil:
			notice = msgSettingsSaved
		case errors.Is(err, service.ErrInvalidQuizTimer), errors.Is(err, strconv.ErrSyntax):
			notice = msgInvalidQuizTimer
		default:
			h.logger.Error("failed to save quiz timer", zap.Int64("user_id", userID), zap.Error(err))
			notice = msgInternalError
		}

	case settingsNotifications:
		enabled := data.param(1) == "on"
		if err := h.settingsService.SetNotificationsEnabled(ctx, userID, enabled); err != nil {
			h.logger.Error("failed to save notifications flag", zap.Int64("user_id", userID), zap.Error(err))
			notice = msgInternalError
		} else {
			notice = msgSettingsSaved
		}

	default:
		h.logger.Warn("unknown settings callback", zap.String("data", cb.Data))
	}

	settings := h.settingsService.Get(ctx, userID)
	edit := newEdit(chatID, messageID, renderSettings(settings))
	kb := buildSettingsKeyboard(settings)
	edit.ReplyMarkup = &kb
	h.send(edit)

	h.answerCallback(cb, notice)
}
