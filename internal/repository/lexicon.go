package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

var ErrEmptyLexicon = errors.New("lexicon is empty")

// LexiconRepository provides read-only access to the French ↔ Shimaoré lexicon.
// The dataset is loaded once from a JSON file and never mutated.
type LexiconRepository struct {
	words []entities.Word
}

// NewLexiconRepository loads the lexicon from path.
func NewLexiconRepository(path string) (*LexiconRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	words, err := parseLexicon(data)
	if err != nil {
		return nil, err
	}

	return NewLexiconRepositoryFromWords(words), nil
}

// NewLexiconRepositoryFromWords wraps an already loaded word list.
func NewLexiconRepositoryFromWords(words []entities.Word) *LexiconRepository {
	return &LexiconRepository{words: append([]entities.Word(nil), words...)}
}

// All returns the lexicon in its original order. The returned slice must not be modified.
func (r *LexiconRepository) All() []entities.Word {
	return r.words
}

// Len returns the number of entries in the lexicon.
func (r *LexiconRepository) Len() int {
	return len(r.words)
}

// parseLexicon accepts either a bare JSON array or an object with a "words" array.
func parseLexicon(data []byte) ([]entities.Word, error) {
	data = bytes.TrimSpace(data)

	var words []entities.Word
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &words); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lexicon JSON: %w", err)
		}
	} else {
		var wrapper struct {
			Words []entities.Word `json:"words"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lexicon JSON: %w", err)
		}
		words = wrapper.Words
	}

	if len(words) == 0 {
		return nil, ErrEmptyLexicon
	}

	return words, nil
}
