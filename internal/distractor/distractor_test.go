package distractor

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/pkg/models"
)

// fakeReader is an in-memory catalog.Reader, implementing NearestByDifficulty
// the same way internal/catalog.Store does (scan, exclude, lowest-id
// tie-break) so distractor.Generate exercises the same contract a real
// Store would present.
type fakeReader struct {
	words []models.Word
}

func (f *fakeReader) ByID(_ context.Context, id int64) (models.Word, error) {
	for _, w := range f.words {
		if w.ID == id {
			return w, nil
		}
	}
	return models.Word{}, apperr.NewNotFound("word %d not found", id)
}

func (f *fakeReader) ByUnit(context.Context, int) ([]models.Word, error) { return nil, nil }

func (f *fakeReader) Count(context.Context) (int, error) { return len(f.words), nil }

func (f *fakeReader) NearestByDifficulty(_ context.Context, target int, exclude map[int64]struct{}) (models.Word, error) {
	var candidates []models.Word
	for _, w := range f.words {
		if _, skip := exclude[w.ID]; skip {
			continue
		}
		candidates = append(candidates, w)
	}
	if len(candidates) == 0 {
		return models.Word{}, apperr.NewExhausted("no catalog words remain at difficulty %d", target)
	}
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := abs(candidates[i].DifficultyRank-target), abs(candidates[j].DifficultyRank-target)
		if di != dj {
			return di < dj
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], nil
}

func idsOf(words []models.Word) []int64 {
	out := make([]int64, len(words))
	for i, w := range words {
		out[i] = w.ID
	}
	return out
}

func TestGenerate_FindsEnoughWithinInitialBand(t *testing.T) {
	correct := models.Word{ID: 1, DifficultyRank: 50, TargetForm: "cat"}
	reader := &fakeReader{words: []models.Word{
		correct,
		{ID: 2, DifficultyRank: 48, TargetForm: "dog"},
		{ID: 3, DifficultyRank: 55, TargetForm: "bird"},
		{ID: 4, DifficultyRank: 44, TargetForm: "fish"},
		{ID: 5, DifficultyRank: 75, TargetForm: "mouse"}, // outside the +/-10 band
	}}
	p := Params{Count: 3, Band: 10}

	got, err := Generate(context.Background(), reader, correct, p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.ElementsMatch(t, []int64{2, 3, 4}, idsOf(got))
}

func TestGenerate_WidensBandWhenInitialBandIsShort(t *testing.T) {
	correct := models.Word{ID: 1, DifficultyRank: 50, TargetForm: "cat"}
	reader := &fakeReader{words: []models.Word{
		correct,
		{ID: 2, DifficultyRank: 46, TargetForm: "dog"},
		{ID: 3, DifficultyRank: 54, TargetForm: "bird"},
		{ID: 4, DifficultyRank: 65, TargetForm: "fish"}, // needs band >= 15
		{ID: 5, DifficultyRank: 90, TargetForm: "mouse"},
	}}
	p := Params{Count: 3, Band: 10}

	got, err := Generate(context.Background(), reader, correct, p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.ElementsMatch(t, []int64{2, 3, 4}, idsOf(got))
}

func TestGenerate_ExcludesSameTargetFormAndSameID(t *testing.T) {
	correct := models.Word{ID: 1, DifficultyRank: 50, TargetForm: "cat"}
	reader := &fakeReader{words: []models.Word{
		correct,
		{ID: 2, DifficultyRank: 50, TargetForm: "cat"}, // duplicate target form, must be excluded
		{ID: 3, DifficultyRank: 51, TargetForm: "dog"},
	}}
	p := Params{Count: 3, Band: 10}

	got, err := Generate(context.Background(), reader, correct, p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{3}, idsOf(got))
}

func TestGenerate_ReturnsFewerWhenCatalogIsExhausted(t *testing.T) {
	correct := models.Word{ID: 1, DifficultyRank: 50, TargetForm: "cat"}
	reader := &fakeReader{words: []models.Word{
		correct,
		{ID: 2, DifficultyRank: 51, TargetForm: "dog"},
	}}
	p := Params{Count: 5, Band: 10}

	got, err := Generate(context.Background(), reader, correct, p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGenerate_ErrorsWhenNoCandidatesExist(t *testing.T) {
	correct := models.Word{ID: 1, DifficultyRank: 50, TargetForm: "cat"}
	reader := &fakeReader{words: []models.Word{correct}}
	p := DefaultParams()

	_, err := Generate(context.Background(), reader, correct, p, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Exhausted))
}
