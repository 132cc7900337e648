package telegram

import (
	"context"
	"strings"
)

func (h *Handler) statsHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		st := h.statsService.Get(ctx, userID)

		msg := newMessage(chatID, renderStats(st))
		msg.ReplyMarkup = buildStatsKeyboard()
		h.send(msg)
		return nil
	}
}

func (h *Handler) lexiconHandler(userID int64, query string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		query = strings.TrimSpace(query)
		entries := h.lexiconService.Search(ctx, userID, query)
		if len(entries) == 0 {
			h.send(newMessage(chatID, md(msgNoLexiconResults)))
			return nil
		}

		text, totalPages := buildLexiconPage(entries, 0)
		msg := newMessage(chatID, text)
		if kb := buildLexiconKeyboard(0, totalPages, query); kb != nil {
			msg.ReplyMarkup = *kb
		}
		h.send(msg)
		return nil
	}
}
