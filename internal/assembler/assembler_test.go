package assembler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/internal/progress"
	"github.com/example/vocabadapt/internal/testutil"
	"github.com/example/vocabadapt/pkg/models"
)

func TestAssembler_UnitFilterSession_OrdersByDifficultyThenWordID(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	_, err := db.DB.ExecContext(ctx, "INSERT INTO learners (id) VALUES (1)")
	require.NoError(t, err)

	words := []struct {
		id   int64
		rank int
	}{
		{id: 100, rank: 3},
		{id: 200, rank: 17},
		{id: 150, rank: 17},
		{id: 75, rank: 42},
	}
	for _, w := range words {
		_, err := db.DB.ExecContext(ctx,
			"INSERT INTO words (id, unit, difficulty_rank, source_form, target_form, audio_ref) VALUES (?, 1, ?, 'a', 'b', '')",
			w.id, w.rank)
		require.NoError(t, err)
	}

	asm := New(progress.NewStore(db), catalog.NewStore(db))

	got, err := asm.UnitFilterSession(ctx, 1, 1)
	require.NoError(t, err)

	var order []int64
	for _, e := range got {
		order = append(order, e.Word.ID)
		assert.Equal(t, models.StatusNew, e.Progress.Status, "absent progress is synthesized as New")
	}
	assert.Equal(t, []int64{100, 150, 200, 75}, order)
}

func TestAssembler_UnitFilterSession_ExcludesMasteredWords(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	_, err := db.DB.ExecContext(ctx, "INSERT INTO learners (id) VALUES (1)")
	require.NoError(t, err)
	_, err = db.DB.ExecContext(ctx,
		"INSERT INTO words (id, unit, difficulty_rank, source_form, target_form, audio_ref) VALUES (1, 1, 5, 'a', 'b', '')")
	require.NoError(t, err)
	_, err = db.DB.ExecContext(ctx,
		"INSERT INTO progress_entries (learner_id, word_id, status) VALUES (1, 1, 'Mastered')")
	require.NoError(t, err)

	asm := New(progress.NewStore(db), catalog.NewStore(db))
	got, err := asm.UnitFilterSession(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssembler_UnitLearnedPool_ReturnsOnlyReviewAndMastered(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	_, err := db.DB.ExecContext(ctx, "INSERT INTO learners (id) VALUES (1)")
	require.NoError(t, err)

	words := []struct {
		id     int64
		status string
	}{
		{id: 1, status: "New"},
		{id: 2, status: "Learning"},
		{id: 3, status: "Review"},
		{id: 4, status: "Mastered"},
	}
	for _, w := range words {
		_, err := db.DB.ExecContext(ctx,
			"INSERT INTO words (id, unit, difficulty_rank, source_form, target_form, audio_ref) VALUES (?, 1, 5, 'a', 'b', '')", w.id)
		require.NoError(t, err)
		_, err = db.DB.ExecContext(ctx,
			"INSERT INTO progress_entries (learner_id, word_id, status) VALUES (1, ?, ?)", w.id, w.status)
		require.NoError(t, err)
	}

	asm := New(progress.NewStore(db), catalog.NewStore(db))
	got, err := asm.UnitLearnedPool(ctx, 1, 1)
	require.NoError(t, err)

	var order []int64
	for _, e := range got {
		order = append(order, e.Word.ID)
	}
	assert.Equal(t, []int64{3, 4}, order)
}

func TestAssembler_ReviewSession_UsesProgressDueOrdering(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)

	_, err := db.DB.ExecContext(ctx, "INSERT INTO learners (id) VALUES (1)")
	require.NoError(t, err)
	_, err = db.DB.ExecContext(ctx,
		"INSERT INTO words (id, unit, difficulty_rank, source_form, target_form, audio_ref) VALUES (1, 1, 5, 'a', 'b', '')")
	require.NoError(t, err)
	_, err = db.DB.ExecContext(ctx,
		"INSERT INTO progress_entries (learner_id, word_id, status, next_review_at) VALUES (1, 1, 'Review', ?)",
		now.Add(-time.Hour))
	require.NoError(t, err)

	asm := New(progress.NewStore(db), catalog.NewStore(db))
	got, err := asm.ReviewSession(ctx, 1, 20, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Word.ID)
}
