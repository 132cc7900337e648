package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// buildDirectionKeyboard builds keyboard for choosing the quiz direction.
func buildDirectionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇫🇷 → Shimaoré", buildQuizDirectionCallback(entities.DirectionFrToSh)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Shimaoré → 🇫🇷", buildQuizDirectionCallback(entities.DirectionShToFr)),
		),
	)
}

// buildQuizAnswerKeyboard builds keyboard for quiz question.
func buildQuizAnswerKeyboard(q entities.Question) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, option := range q.Options {
		data := buildQuizAnswerCallback(q.SessionID, q.Number, option.ID)
		button := tgbotapi.NewInlineKeyboardButtonData(option.Answer(q.Direction), data)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuizResultKeyboard builds keyboard for quiz results screen.
func buildQuizResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Recommencer", buildQuizRestartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Changer de sens", buildQuizMenuCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Statistiques", buildStatsCallback()),
		),
	)
}

// buildStatsKeyboard builds keyboard for the statistics screen.
func buildStatsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Actualiser", buildStatsCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Lancer un quiz", buildQuizMenuCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Réglages", buildSettingsCallback(settingsMenu)),
		),
	)
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(s *entities.UserSettings) tgbotapi.InlineKeyboardMarkup {
	var timerRow []tgbotapi.InlineKeyboardButton
	for _, seconds := range entities.QuizTimerChoices {
		label := fmt.Sprintf("%d s", seconds)
		if seconds == s.QuizTimer {
			label = "• " + label + " •"
		}
		timerRow = append(timerRow,
			tgbotapi.NewInlineKeyboardButtonData(label, buildSettingsCallback(settingsTimer, strconv.Itoa(seconds))),
		)
	}

	notifLabel, notifValue := "🔔 Activer les rappels", "on"
	if s.NotificationsEnabled {
		notifLabel, notifValue = "🔕 Désactiver les rappels", "off"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		timerRow,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(notifLabel, buildSettingsCallback(settingsNotifications, notifValue)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Statistiques", buildStatsCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Réinitialiser la progression", buildResetAskCallback()),
		),
	)
}

// buildResetKeyboard builds keyboard for confirming a progress reset.
func buildResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Oui, tout effacer", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Annuler", buildResetCancelCallback()),
		),
	)
}

// buildLexiconKeyboard builds pagination keyboard for the lexicon list.
func buildLexiconKeyboard(page, totalPages int, query string) *tgbotapi.InlineKeyboardMarkup {
	if totalPages <= 1 {
		return nil
	}

	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀️ Précédent", buildLexiconCallback(page-1, query)))
	}
	if page < totalPages-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Suivant ▶️", buildLexiconCallback(page+1, query)))
	}

	kb := tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{row},
	}
	return &kb
}
