// Package distractor generates quiz-mode distractor words (spec §4.6),
// grounded on the teacher's internal/testing.TestingModule.getIncorrectOptions
// (same-pool-first filtering, widen-if-short, final shuffle), generalized
// from "same topic" to the spec's difficulty-band widening rule.
package distractor

import (
	"context"
	"math/rand"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/pkg/models"
)

// Params configures distractor selection. Defaults match spec §6.
type Params struct {
	Count int // how many distractors to produce
	Band  int // initial +/- difficulty-rank window
}

func DefaultParams() Params {
	return Params{Count: 3, Band: 10}
}

// Generate returns Count distractor words for correct, widening the
// difficulty band monotonically until Count candidates are found or the
// catalog is exhausted. The returned slice is shuffled.
func Generate(ctx context.Context, reader catalog.Reader, correct models.Word, p Params, rnd *rand.Rand) ([]models.Word, error) {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}

	total, err := reader.Count(ctx)
	if err != nil {
		return nil, err
	}

	band := p.Band
	var candidates []models.Word

	for {
		candidates, err = collectCandidates(ctx, reader, correct, band)
		if err != nil {
			return nil, err
		}
		if len(candidates) >= p.Count || band >= 100 || len(candidates) >= total-1 {
			break
		}
		band *= 2
		if band == 0 {
			band = 1
		}
	}

	if len(candidates) < p.Count {
		if len(candidates) == 0 {
			return nil, apperr.NewExhausted("no distractor candidates available for word %d", correct.ID)
		}
		// Catalog exhausted before reaching Count: return what exists,
		// shuffled, rather than fail a quiz that otherwise has a valid
		// correct answer.
	}

	rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > p.Count {
		candidates = candidates[:p.Count]
	}
	return candidates, nil
}

// collectCandidates scans the full catalog for words within +/- band of
// correct's difficulty rank, excluding correct's id and any word sharing
// its target form (spec §4.6: avoid duplicate displayed answers).
func collectCandidates(ctx context.Context, reader catalog.Reader, correct models.Word, band int) ([]models.Word, error) {
	// ByUnit(0) would only return unit 0; the catalog has no "all words"
	// listing on Reader other than NearestByDifficulty's internal scan, so
	// widen via repeated nearest-difficulty sampling against a growing
	// exclude set instead of requiring a new catalog method.
	var out []models.Word
	exclude := map[int64]struct{}{correct.ID: {}}

	for {
		w, err := reader.NearestByDifficulty(ctx, correct.DifficultyRank, exclude)
		if err != nil {
			if apperr.Is(err, apperr.Exhausted) {
				break
			}
			return nil, err
		}
		exclude[w.ID] = struct{}{}

		if abs(w.DifficultyRank-correct.DifficultyRank) > band {
			continue
		}
		if w.TargetForm == correct.TargetForm {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
