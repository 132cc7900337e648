package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

// OptionsPerQuestion is the number of answer buttons shown for a question.
const OptionsPerQuestion = 4

// OptionGenerator generates multiple choice options for quiz questions.
type OptionGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOptionGenerator creates a new option generator seeded from the current time.
func NewOptionGenerator() *OptionGenerator {
	return NewOptionGeneratorWithSeed(time.Now().UnixNano())
}

// NewOptionGeneratorWithSeed creates an option generator with a fixed seed.
func NewOptionGeneratorWithSeed(seed int64) *OptionGenerator {
	return &OptionGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GenerateOptions returns the target and up to three distractors drawn from pool, shuffled.
// Distractors never share the target id and no id appears twice.
func (g *OptionGenerator) GenerateOptions(target entities.SessionWord, pool []entities.SessionWord) []entities.SessionWord {
	seen := map[int]struct{}{target.ID: {}}
	candidates := make([]entities.SessionWord, 0, len(pool))
	for _, w := range pool {
		if _, ok := seen[w.ID]; ok {
			continue
		}
		seen[w.ID] = struct{}{}
		candidates = append(candidates, w)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	n := min(OptionsPerQuestion-1, len(candidates))
	options := make([]entities.SessionWord, 0, n+1)
	options = append(options, candidates[:n]...)
	options = append(options, target)

	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options
}
