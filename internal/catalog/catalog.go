// Package catalog is the read-only Word Catalog (spec §4.1): words keyed by
// id, grouped by unit, ordered by difficulty rank. Grounded on the teacher's
// internal/database.WordRepository, generalized to the "?"-placeholder +
// Rebind pattern centralized in internal/store.
package catalog

import (
	"context"
	"sort"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/store"
	"github.com/example/vocabadapt/pkg/models"
)

// Reader is the read surface the rest of the core depends on, so
// internal/catalogcache can sit behind the same interface as the SQL-backed
// Store.
type Reader interface {
	ByID(ctx context.Context, id int64) (models.Word, error)
	ByUnit(ctx context.Context, unit int) ([]models.Word, error)
	NearestByDifficulty(ctx context.Context, target int, exclude map[int64]struct{}) (models.Word, error)
	Count(ctx context.Context) (int, error)
}

// Store is the SQL-backed Reader.
type Store struct {
	db *store.Store
}

func NewStore(db *store.Store) *Store {
	return &Store{db: db}
}

func (s *Store) ByID(ctx context.Context, id int64) (models.Word, error) {
	var w models.Word
	query := s.db.Rebind("SELECT id, unit, difficulty_rank, source_form, target_form, audio_ref FROM words WHERE id = ?")
	err := s.db.DB.GetContext(ctx, &w, query, id)
	found, nerr := store.NotFoundToNil(err)
	if nerr != nil {
		return models.Word{}, apperr.Wrap(apperr.Internal, nerr, "get word by id")
	}
	if !found {
		return models.Word{}, apperr.NewNotFound("word %d not found", id)
	}
	return w, nil
}

func (s *Store) ByUnit(ctx context.Context, unit int) ([]models.Word, error) {
	var words []models.Word
	query := s.db.Rebind("SELECT id, unit, difficulty_rank, source_form, target_form, audio_ref FROM words WHERE unit = ? ORDER BY difficulty_rank, id")
	if err := s.db.DB.SelectContext(ctx, &words, query, unit); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "list words by unit")
	}
	return words, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM words"); err != nil {
		return 0, apperr.Wrap(apperr.Internal, err, "count words")
	}
	return n, nil
}

// NearestByDifficulty returns the word whose difficulty_rank is closest to
// target, excluding word ids in exclude, breaking exact ties by the lowest
// word id (spec §4.2 edge case: deterministic tie-break).
//
// The candidate set is small enough (catalog sizes in this domain are in
// the hundreds to low thousands) to rank in Go rather than push an
// ABS()-ordered query through the dual-driver query layer; SQLite and
// Postgres spell integer ABS differently in edge cases (NULL handling,
// overflow) and this keeps the tie-break rule in one place, tested once.
func (s *Store) NearestByDifficulty(ctx context.Context, target int, exclude map[int64]struct{}) (models.Word, error) {
	var words []models.Word
	if err := s.db.DB.SelectContext(ctx, &words, "SELECT id, unit, difficulty_rank, source_form, target_form, audio_ref FROM words"); err != nil {
		return models.Word{}, apperr.Wrap(apperr.Internal, err, "list words for nearest-difficulty search")
	}

	var candidates []models.Word
	for _, w := range words {
		if _, skip := exclude[w.ID]; skip {
			continue
		}
		candidates = append(candidates, w)
	}
	if len(candidates) == 0 {
		return models.Word{}, apperr.NewExhausted("no catalog words remain at difficulty %d", target)
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := diff(candidates[i].DifficultyRank, target)
		dj := diff(candidates[j].DifficultyRank, target)
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})

	return candidates[0], nil
}

func diff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
