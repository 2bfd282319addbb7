package background

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/vocabadapt/internal/placement"
	"github.com/example/vocabadapt/internal/testutil"
)

// fakeRefresher counts Clear calls with an atomic counter since
// Sweep.Start runs ticks on gocron's own goroutine, concurrently with
// whatever goroutine reads the count.
type fakeRefresher struct {
	cleared atomic.Int64
}

func (f *fakeRefresher) Clear() { f.cleared.Add(1) }

func TestSweep_Tick_PrunesAbandonedSessionsAndClearsCache(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	_, err := db.DB.ExecContext(ctx, "INSERT INTO learners (id) VALUES (1)")
	require.NoError(t, err)

	sessions := placement.NewStore(db)
	sess, err := sessions.CreateOrGetActive(ctx, 1)
	require.NoError(t, err)

	_, err = db.DB.ExecContext(ctx,
		"UPDATE placement_sessions SET updated_at = ? WHERE id = ?",
		time.Now().Add(-48*time.Hour), sess.ID)
	require.NoError(t, err)

	cache := &fakeRefresher{}
	sw := New(sessions, cache, time.Hour, 24*time.Hour, zap.NewNop())

	sw.tick()

	var active bool
	require.NoError(t, db.DB.Get(&active, "SELECT is_active FROM placement_sessions WHERE id = ?", sess.ID))
	assert.False(t, active, "a session idle past abandonAfter must be deactivated on tick")
	assert.Equal(t, int64(1), cache.cleared.Load(), "every tick clears the catalog cache")
}

func TestSweep_Tick_LeavesRecentSessionsActive(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	_, err := db.DB.ExecContext(ctx, "INSERT INTO learners (id) VALUES (1)")
	require.NoError(t, err)

	sessions := placement.NewStore(db)
	sess, err := sessions.CreateOrGetActive(ctx, 1)
	require.NoError(t, err)

	cache := &fakeRefresher{}
	sw := New(sessions, cache, time.Hour, 24*time.Hour, zap.NewNop())
	sw.tick()

	var active bool
	require.NoError(t, db.DB.Get(&active, "SELECT is_active FROM placement_sessions WHERE id = ?", sess.ID))
	assert.True(t, active, "a session updated moments ago must not be pruned")
}

func TestSweep_Tick_ToleratesNilCache(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	sessions := placement.NewStore(db)

	sw := New(sessions, nil, time.Hour, 24*time.Hour, zap.NewNop())
	assert.NotPanics(t, sw.tick)
}

func TestSweep_StartAndStop_DoesNotBlockOrPanic(t *testing.T) {
	db := testutil.NewSQLiteStore(t)
	sessions := placement.NewStore(db)
	cache := &fakeRefresher{}

	sw := New(sessions, cache, time.Millisecond, time.Hour, zap.NewNop())
	sw.Start()
	time.Sleep(20 * time.Millisecond)
	sw.Stop()

	assert.GreaterOrEqual(t, cache.cleared.Load(), int64(1), "at least one scheduled tick should have run")
}
