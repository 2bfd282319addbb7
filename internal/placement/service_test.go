package placement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/internal/testutil"
)

func newServiceWithCatalog(t *testing.T) (*Service, int64) {
	t.Helper()
	db := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	_, err := db.DB.ExecContext(ctx, "INSERT INTO learners (id) VALUES (1)")
	require.NoError(t, err)
	for rank := 1; rank <= 100; rank++ {
		_, err := db.DB.ExecContext(ctx,
			"INSERT INTO words (id, unit, difficulty_rank, source_form, target_form, audio_ref) VALUES (?, ?, ?, ?, ?, '')",
			rank, (rank-1)/10+1, rank, "src", "tgt")
		require.NoError(t, err)
	}

	store := NewStore(db)
	reader := catalog.NewStore(db)
	return NewService(store, reader, DefaultParams()), 1
}

func TestService_Start_ReturnsAQuestionAtTheMidpoint(t *testing.T) {
	svc, learnerID := newServiceWithCatalog(t)

	sess, q, err := svc.Start(context.Background(), learnerID)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.CurrentMin)
	assert.Equal(t, 100, sess.CurrentMax)
	assert.Equal(t, int64(50), q.Word.ID) // word ids mirror difficulty rank in this fixture
	assert.False(t, q.IsRegressionProbe)
}

func TestService_Start_IsIdempotentForAnInProgressSession(t *testing.T) {
	svc, learnerID := newServiceWithCatalog(t)

	first, _, err := svc.Start(context.Background(), learnerID)
	require.NoError(t, err)

	second, _, err := svc.Start(context.Background(), learnerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestService_Answer_NeverRepeatsAWordAndEventuallyCompletes(t *testing.T) {
	svc, learnerID := newServiceWithCatalog(t)

	_, q, err := svc.Start(context.Background(), learnerID)
	require.NoError(t, err)

	seen := map[int64]bool{}

	for i := 0; i < 20; i++ {
		require.False(t, seen[q.Word.ID], "word %d asked twice", q.Word.ID)
		seen[q.Word.ID] = true

		updated, next, err := svc.Answer(context.Background(), learnerID, q.Word.ID, true)
		require.NoError(t, err)
		if next == nil {
			assert.False(t, updated.Active)
			require.NotNil(t, updated.FinalLevel)
			return
		}
		q = *next
	}
	t.Fatal("session did not complete within MaxQuestions")
}

func TestService_Answer_RejectsAnswersWithNoActiveSession(t *testing.T) {
	svc, learnerID := newServiceWithCatalog(t)

	_, _, err := svc.Answer(context.Background(), learnerID, 1, true)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}
