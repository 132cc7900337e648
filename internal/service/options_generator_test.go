package service

import (
	"testing"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

func sessionWords(n int) []entities.SessionWord {
	out := make([]entities.SessionWord, n)
	for i, w := range makeLexicon(n) {
		out[i] = entities.SessionWord{Word: w, ID: i}
	}
	return out
}

func TestGenerateOptionsIntegrity(t *testing.T) {
	g := NewOptionGeneratorWithSeed(42)
	pool := sessionWords(10)

	for i := 0; i < 200; i++ {
		target := pool[i%len(pool)]
		options := g.GenerateOptions(target, pool)

		if len(options) != OptionsPerQuestion {
			t.Fatalf("expected %d options, got %d", OptionsPerQuestion, len(options))
		}

		ids := make(map[int]bool)
		targets := 0
		for _, o := range options {
			if ids[o.ID] {
				t.Fatalf("duplicate option id %d in %+v", o.ID, options)
			}
			ids[o.ID] = true
			if o.ID == target.ID {
				targets++
			}
			if o.ID < 0 || o.ID >= len(pool) {
				t.Fatalf("option id %d not from pool", o.ID)
			}
		}
		if targets != 1 {
			t.Fatalf("expected exactly one target option, got %d", targets)
		}
	}
}

func TestGenerateOptionsSmallPool(t *testing.T) {
	g := NewOptionGeneratorWithSeed(1)
	pool := sessionWords(2)

	options := g.GenerateOptions(pool[1], pool)
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %+v", options)
	}

	single := g.GenerateOptions(pool[0], pool[:1])
	if len(single) != 1 || single[0].ID != 0 {
		t.Fatalf("expected only the target, got %+v", single)
	}
}

func TestGenerateOptionsIgnoresDuplicateIDs(t *testing.T) {
	g := NewOptionGeneratorWithSeed(7)
	pool := sessionWords(3)
	dupes := []entities.SessionWord{pool[0], pool[1], pool[1], pool[1], pool[0]}

	options := g.GenerateOptions(pool[0], dupes)
	if len(options) != 2 {
		t.Fatalf("expected target plus one distractor, got %+v", options)
	}
}

func TestGenerateOptionsShufflesTargetPosition(t *testing.T) {
	g := NewOptionGeneratorWithSeed(3)
	pool := sessionWords(10)

	positions := make(map[int]bool)
	for i := 0; i < 100; i++ {
		for pos, o := range g.GenerateOptions(pool[0], pool) {
			if o.ID == 0 {
				positions[pos] = true
			}
		}
	}
	if len(positions) < 2 {
		t.Fatalf("target always at the same position: %v", positions)
	}
}
