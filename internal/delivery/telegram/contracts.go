package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/service"
)

// BotAPI is the part of *tgbotapi.BotAPI used by the handler.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type SettingsService interface {
	Get(ctx context.Context, userID int64) *entities.UserSettings
	SetQuizTimer(ctx context.Context, userID int64, seconds int) error
	SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error
}

type StatsService interface {
	Get(ctx context.Context, userID int64) *service.Stats
}

type ResetService interface {
	ResetUser(ctx context.Context, userID int64) error
}

type LexiconService interface {
	Search(ctx context.Context, userID int64, query string) []service.LexiconEntry
}

// QuizSession is a running quiz of one chat.
type QuizSession interface {
	Start(ctx context.Context) error
	Restart(ctx context.Context) error
	Answer(number, optionID int) error
	Summary() entities.QuizSummary
	Direction() entities.Direction
	Close()
}

// QuizFactory creates the quiz session of a user, reporting its events to listener.
type QuizFactory func(userID int64, direction entities.Direction, listener service.QuizListener) QuizSession
