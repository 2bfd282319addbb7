// Package assembler builds the three session shapes the core exposes
// (spec §4.7), each with its own word/status ordering, layered on top of
// internal/progress and internal/catalog the way the teacher's
// internal/testing.TestingModule composes its word and topic repositories
// into a single test-assembly call.
package assembler

import (
	"context"
	"sort"
	"time"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/internal/progress"
	"github.com/example/vocabadapt/pkg/models"
)

// Assembler wires a Progress Store and a Word Catalog reader into the
// three session shapes spec §4.7 names.
type Assembler struct {
	progress *progress.Store
	catalog  catalog.Reader
}

func New(progressStore *progress.Store, catalogReader catalog.Reader) *Assembler {
	return &Assembler{progress: progressStore, catalog: catalogReader}
}

// ReviewSession returns up to limit due words (default 20), Learning items
// before Review items, earliest next_review_at first within each group.
func (a *Assembler) ReviewSession(ctx context.Context, learnerID int64, limit int, now time.Time) ([]models.ProgressWithWord, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := a.progress.QueryDue(ctx, learnerID, now, limit, []models.Status{models.StatusLearning, models.StatusReview})
	if err != nil {
		return nil, err
	}
	return a.attachWords(ctx, entries)
}

// UnitFilterSession returns the words of unit the learner has not yet
// classified as learned (status absent, New, or Learning), ordered by ascending
// difficulty rank, ties by word id. Used by the triage UI.
func (a *Assembler) UnitFilterSession(ctx context.Context, learnerID int64, unit int) ([]models.ProgressWithWord, error) {
	words, err := a.catalog.ByUnit(ctx, unit)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProgressWithWord, 0, len(words))
	for _, w := range words {
		entry, err := a.progress.Get(ctx, learnerID, w.ID)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				// Absent entries are treated as New for this session.
				out = append(out, models.ProgressWithWord{
					Progress: models.ProgressEntry{LearnerID: learnerID, WordID: w.ID, Status: models.StatusNew},
					Word:     w,
				})
				continue
			}
			return nil, err
		}
		if entry.Status == models.StatusMastered || entry.Status == models.StatusReview {
			continue
		}
		out = append(out, models.ProgressWithWord{Progress: entry, Word: w})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Word.DifficultyRank != out[j].Word.DifficultyRank {
			return out[i].Word.DifficultyRank < out[j].Word.DifficultyRank
		}
		return out[i].Word.ID < out[j].Word.ID
	})
	return out, nil
}

// UnitLearnedPool returns unit's words with status Review or Mastered, used
// to seed quiz distractor/question pools. Order is not spec-significant;
// ascending word id keeps it deterministic for callers and tests.
func (a *Assembler) UnitLearnedPool(ctx context.Context, learnerID int64, unit int) ([]models.ProgressWithWord, error) {
	words, err := a.catalog.ByUnit(ctx, unit)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProgressWithWord, 0, len(words))
	for _, w := range words {
		entry, err := a.progress.Get(ctx, learnerID, w.ID)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				continue
			}
			return nil, err
		}
		if entry.Status != models.StatusReview && entry.Status != models.StatusMastered {
			continue
		}
		out = append(out, models.ProgressWithWord{Progress: entry, Word: w})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Word.ID < out[j].Word.ID })
	return out, nil
}

func (a *Assembler) attachWords(ctx context.Context, entries []models.ProgressEntry) ([]models.ProgressWithWord, error) {
	out := make([]models.ProgressWithWord, 0, len(entries))
	for _, e := range entries {
		w, err := a.catalog.ByID(ctx, e.WordID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ProgressWithWord{Progress: e, Word: w})
	}
	return out, nil
}
