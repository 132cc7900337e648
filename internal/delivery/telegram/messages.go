// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/service"
)

// Error messages.
const (
	msgInternalError     = "Une erreur est survenue. Réessayez plus tard."
	msgUnknownCommand    = "Commande inconnue. Tapez /help pour la liste des commandes."
	msgNoWordsAvailable  = "Aucun mot à réviser pour le moment 🎉\nTous vos mots sont maîtrisés, revenez plus tard."
	msgQuestionClosed    = "Trop tard, cette question est terminée."
	msgNoQuizInProgress  = "Aucun quiz en cours. Tapez /quiz pour commencer."
	msgInvalidQuizTimer  = "Durée invalide."
	msgSettingsSaved     = "Réglage enregistré ✅"
	msgNoLexiconResults  = "Aucun mot ne correspond à votre recherche."
	msgChooseDirection   = "Choisissez le sens du quiz :"
	msgSettingsTimerHint = "Choisissez le temps par question :"
	msgResetConfirm      = "Effacer toute votre progression ? Les mots débloqués, les niveaux et l'historique seront perdus. Vos réglages sont conservés."
	msgResetDone         = "Progression réinitialisée ✅"
	msgResetCancelled    = "Réinitialisation annulée."
)

const (
	wordsPerPage      = 15
	progressBarLength = 20
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, messageID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// welcomeMessage builds the /start message.
func welcomeMessage() string {
	return strings.Join([]string{
		bold("Karibu ! Bienvenue 👋"),
		"",
		md("Ce bot vous aide à apprendre le vocabulaire shimaoré."),
		md("Chaque quiz propose jusqu'à 10 mots, des plus fréquents aux plus rares."),
		md("Un mot maîtrisé revient de temps en temps pour ne pas l'oublier."),
		"",
		md("Choisissez le sens du quiz pour commencer :"),
	}, "\n")
}

// helpMessage builds the /help message.
func helpMessage() string {
	return strings.Join([]string{
		bold("Commandes"),
		"",
		md("/quiz — lancer un quiz"),
		md("/lexique [mot] — parcourir ou chercher dans le lexique"),
		md("/stats — voir vos statistiques"),
		md("/settings — régler le temps par question"),
		md("/reset — effacer votre progression"),
		md("/help — afficher cette aide"),
	}, "\n")
}

func directionLabel(d entities.Direction) string {
	if d == entities.DirectionShToFr {
		return "Shimaoré → Français"
	}
	return "Français → Shimaoré"
}

func directionInstruction(d entities.Direction) string {
	if d == entities.DirectionShToFr {
		return "Traduisez en français :"
	}
	return "Traduisez en shimaoré :"
}

// renderQuestion renders a question with the remaining time.
func renderQuestion(q entities.Question, remaining int) string {
	return fmt.Sprintf(
		"%s   %s\n\n%s\n%s",
		bold(fmt.Sprintf("Question %d/%d", q.Number, q.Total)),
		md(fmt.Sprintf("⏱ %d s", remaining)),
		md(directionInstruction(q.Direction)),
		bold(q.Word.Prompt(q.Direction)),
	)
}

// renderReveal renders the outcome of a question.
func renderReveal(q entities.Question, res entities.AnswerResult) string {
	var verdict string
	switch {
	case res.Record.Correct:
		verdict = "✅ Bonne réponse !"
	case res.Record.TimedOut:
		verdict = "⌛ Temps écoulé."
	default:
		verdict = fmt.Sprintf("❌ Vous avez répondu « %s ».", res.Record.Selected.Answer(q.Direction))
	}

	return fmt.Sprintf(
		"%s\n\n%s → %s\n\n%s\n%s",
		bold(fmt.Sprintf("Question %d/%d", q.Number, q.Total)),
		bold(q.Word.Prompt(q.Direction)),
		md(q.Word.Answer(q.Direction)),
		md(verdict),
		italic(fmt.Sprintf("Score : %d · niveau %d/%d", res.Score, res.Mastery.Level, entities.MaxLevel)),
	)
}

// renderSummary renders the end-of-session report.
func renderSummary(s entities.QuizSummary) string {
	var b strings.Builder

	b.WriteString(bold("🏁 Quiz terminé"))
	b.WriteString("\n")
	b.WriteString(md(directionLabel(s.Direction)))
	b.WriteString("\n\n")
	b.WriteString(md(fmt.Sprintf("Score : %d/%d", s.Score, s.Total)))

	mistakes := s.Mistakes()
	if len(mistakes) == 0 {
		b.WriteString("\n\n")
		b.WriteString(md("Sans faute, bravo ! 🎉"))
		return b.String()
	}

	b.WriteString("\n\n")
	b.WriteString(bold("À revoir"))
	for _, r := range mistakes {
		b.WriteString("\n")
		b.WriteString(md(fmt.Sprintf("• %s → %s", r.Word.Prompt(s.Direction), r.Word.Answer(s.Direction))))
		if r.TimedOut {
			b.WriteString(" ")
			b.WriteString(italic("(temps écoulé)"))
		}
	}

	return b.String()
}

// renderStats renders the statistics screen.
func renderStats(st *service.Stats) string {
	var b strings.Builder

	b.WriteString(bold("📊 Vos statistiques"))
	b.WriteString("\n\n")
	b.WriteString(md(buildProgressBar(st.Mastered, st.TotalWords, progressBarLength)))
	b.WriteString("\n\n")
	b.WriteString(md(fmt.Sprintf("✅ Maîtrisés : %d / %d", st.Mastered, st.TotalWords)))
	b.WriteString("\n")
	b.WriteString(md(fmt.Sprintf("🔓 Découverts : %d", st.UnlockedWords)))
	b.WriteString("\n")
	b.WriteString(md(fmt.Sprintf("🔁 À réviser : %d", st.DueForReview)))
	b.WriteString("\n")
	b.WriteString(md(fmt.Sprintf("🎯 Précision : %.1f%% (%d/%d)", st.Accuracy(), st.Correct, st.Answers)))

	b.WriteString("\n\n")
	b.WriteString(bold("Niveaux"))
	for level := entities.MaxLevel; level >= 0; level-- {
		b.WriteString("\n")
		b.WriteString(md(fmt.Sprintf("%s %d", levelStars(level), st.LevelCounts[level])))
	}

	if len(st.RecentHistory) > 0 {
		b.WriteString("\n\n")
		b.WriteString(bold("Dernières réponses"))
		for i := len(st.RecentHistory) - 1; i >= 0; i-- {
			e := st.RecentHistory[i]
			mark := "❌"
			if e.Correct {
				mark = "✅"
			}
			b.WriteString("\n")
			b.WriteString(md(fmt.Sprintf("%s %s", mark, e.Word)))
		}
	}

	return b.String()
}

// renderSettings renders the settings screen.
func renderSettings(s *entities.UserSettings) string {
	return fmt.Sprintf(
		"%s\n\n%s\n%s",
		bold("⚙️ Réglages"),
		md(fmt.Sprintf("⏱ Temps par question : %d s", s.QuizTimer)),
		md(fmt.Sprintf("🔔 Rappels : %s", formatBool(s.NotificationsEnabled))),
	)
}

// buildLexiconPage renders one page of lexicon entries.
func buildLexiconPage(entries []service.LexiconEntry, page int) (text string, totalPages int) {
	totalPages = (len(entries) + wordsPerPage - 1) / wordsPerPage
	if totalPages == 0 || page < 0 || page >= totalPages {
		return "", totalPages
	}

	start := page * wordsPerPage
	end := min(start+wordsPerPage, len(entries))

	var b strings.Builder
	b.WriteString(bold(fmt.Sprintf("📖 Lexique (%d/%d)", page+1, totalPages)))
	for _, e := range entries[start:end] {
		b.WriteString("\n")
		if !e.Unlocked {
			b.WriteString(md(fmt.Sprintf("🔒 %s → %s", e.Word.Francais, e.Word.Shimaore)))
			continue
		}
		level := 0
		if e.Record != nil {
			level = e.Record.Level
		}
		b.WriteString(md(fmt.Sprintf("%s %s → %s", levelStars(level), e.Word.Francais, e.Word.Shimaore)))
	}

	return b.String(), totalPages
}

func levelStars(level int) string {
	level = min(max(level, 0), entities.MaxLevel)
	return strings.Repeat("★", level) + strings.Repeat("☆", entities.MaxLevel-level)
}

// buildProgressBar creates ASCII progress bar.
func buildProgressBar(current, total, length int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", length) + "]"
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}

	empty := length - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}

func formatBool(b bool) string {
	if b {
		return "activés ✅"
	}
	return "désactivés ❌"
}
