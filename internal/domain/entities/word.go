// Package entities contains domain entities used across the application.
package entities

import "strings"

// Word is one entry of the French ↔ Shimaoré lexicon.
// Francais is the stable identity of the word everywhere in the application.
type Word struct {
	Francais  string  `json:"francais"`  // French form, identity key
	Shimaore  string  `json:"shimaore"`  // Shimaoré translation
	Frequence float64 `json:"frequence"` // frequency rank, lower ranks are served first
}

// IsComplete reports whether both sides of the entry are filled in.
func (w Word) IsComplete() bool {
	return strings.TrimSpace(w.Francais) != "" && strings.TrimSpace(w.Shimaore) != ""
}

// SessionWord is a Word annotated with an id that is only meaningful inside one quiz session.
// The id is the index of the word in the session word list and must never be persisted.
type SessionWord struct {
	Word
	ID int
}

// Prompt returns the text shown as the question for the given direction.
func (w SessionWord) Prompt(d Direction) string {
	if d == DirectionShToFr {
		return w.Shimaore
	}
	return w.Francais
}

// Answer returns the text shown on an option button for the given direction.
func (w SessionWord) Answer(d Direction) string {
	if d == DirectionShToFr {
		return w.Francais
	}
	return w.Shimaore
}
