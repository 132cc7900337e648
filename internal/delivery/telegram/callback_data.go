package telegram

import (
	"strconv"
	"strings"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// Callback action constants.
const (
	actionQuiz     = "quiz"
	actionSettings = "settings"
	actionStats    = "stats"
	actionLexicon  = "lex"
	actionReset    = "reset"
)

// Quiz sub-actions.
const (
	quizMenu      = "menu"
	quizDirection = "dir"
	quizAnswer    = "ans"
	quizRestart   = "restart"
)

// Settings sub-actions.
const (
	settingsMenu          = "menu"
	settingsTimer         = "timer"
	settingsNotifications = "notif"
)

// Reset sub-actions.
const (
	resetAsk     = "ask"
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// sessionTagLen is the number of session id characters carried by answer buttons.
const sessionTagLen = 8

// maxCallbackQuery bounds the search query kept in pagination buttons; Telegram limits callback data to 64 bytes.
const maxCallbackQuery = 40

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 || parts[0] == "" {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or an empty string.
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

func buildQuizMenuCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizMenu}}.encode()
}

func buildQuizDirectionCallback(d entities.Direction) string {
	return callbackData{Action: actionQuiz, Params: []string{quizDirection, string(d)}}.encode()
}

func buildQuizRestartCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizRestart}}.encode()
}

// buildQuizAnswerCallback builds the data of an option button.
func buildQuizAnswerCallback(sessionID string, number, optionID int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{
			quizAnswer,
			sessionTag(sessionID),
			strconv.Itoa(number),
			strconv.Itoa(optionID),
		},
	}.encode()
}

// answerCallback is a decoded option button.
type answerCallback struct {
	SessionTag string
	Number     int
	OptionID   int
}

// parseAnswerCallback decodes the parameters built by buildQuizAnswerCallback.
func parseAnswerCallback(cd callbackData) (answerCallback, bool) {
	if cd.Action != actionQuiz || cd.param(0) != quizAnswer || len(cd.Params) != 4 {
		return answerCallback{}, false
	}

	number, err := strconv.Atoi(cd.param(2))
	if err != nil || number < 1 {
		return answerCallback{}, false
	}
	optionID, err := strconv.Atoi(cd.param(3))
	if err != nil || optionID < 0 {
		return answerCallback{}, false
	}

	return answerCallback{
		SessionTag: cd.param(1),
		Number:     number,
		OptionID:   optionID,
	}, true
}

func sessionTag(sessionID string) string {
	if len(sessionID) > sessionTagLen {
		return sessionID[:sessionTagLen]
	}
	return sessionID
}

func buildSettingsCallback(params ...string) string {
	return callbackData{Action: actionSettings, Params: params}.encode()
}

func buildStatsCallback() string {
	return callbackData{Action: actionStats}.encode()
}

// buildLexiconCallback builds callback data for a lexicon page.
// The query is truncated on a rune boundary and stripped of separators.
func buildLexiconCallback(page int, query string) string {
	query = strings.ReplaceAll(query, ":", " ")
	if len(query) > maxCallbackQuery {
		cut := 0
		for i := range query {
			if i > maxCallbackQuery {
				break
			}
			cut = i
		}
		query = query[:cut]
	}
	return callbackData{Action: actionLexicon, Params: []string{strconv.Itoa(page), query}}.encode()
}

// parseLexiconCallback decodes the page and query of a lexicon page button.
func parseLexiconCallback(cd callbackData) (page int, query string, ok bool) {
	if cd.Action != actionLexicon || len(cd.Params) != 2 {
		return 0, "", false
	}
	page, err := strconv.Atoi(cd.param(0))
	if err != nil || page < 0 {
		return 0, "", false
	}
	return page, cd.param(1), true
}

func buildResetAskCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetAsk}}.encode()
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}
