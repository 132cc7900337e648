package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// HandlerFunc answers one user command in chatID.
type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling runs fn for a user command. An error or a panic is logged
// with the command and the user, and the user gets a generic apology.
func (h *Handler) withErrorHandling(command string, userID int64, fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			if err == nil {
				return
			}
			h.logger.Error("command failed",
				zap.String("command", command),
				zap.Int64("user_id", userID),
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			err = nil
		}()
		return fn(ctx, chatID)
	}
}
