// Package activity implements the Daily Activity Tracker (spec §4.8): per
// learner review streak and daily-goal signaling, observed on every review
// event. Grounded on the teacher's internal/scheduler env-var-with-default
// idiom for DAILY_GOAL. The tracker holds no clock: each event's time is
// passed in by the caller (internal/core reads it from internal/clock).
package activity

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/store"
	"github.com/example/vocabadapt/pkg/models"
)

// Result is what a review event reports back about the learner's activity.
type Result struct {
	Activity    models.DailyActivity
	GoalReached bool // true only on the review that first reaches DailyGoal today
}

// Tracker observes review events and updates streak/goal state.
type Tracker struct {
	db        *store.Store
	dailyGoal int
}

func NewTracker(db *store.Store, dailyGoal int) *Tracker {
	return &Tracker{db: db, dailyGoal: dailyGoal}
}

// Observe records one review event at `at` and returns the updated activity
// plus whether this event is the one that first reached the daily goal.
// Calendar days are taken in at's own location; internal/core passes UTC
// times, since no per-learner timezone is stored.
func (t *Tracker) Observe(ctx context.Context, learnerID int64, at time.Time) (Result, error) {
	day := truncateToDay(at)

	var out Result
	err := t.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTx(ctx, tx, t.db, learnerID)
		found := true
		if err != nil {
			if !apperr.Is(err, apperr.NotFound) {
				return err
			}
			found = false
		}

		var next models.DailyActivity
		var goalReached bool

		switch {
		case !found:
			next = models.DailyActivity{LearnerID: learnerID, Streak: 1, LastActiveDay: day, TodayCount: 1, TodayDay: day}
			goalReached = next.TodayCount >= t.dailyGoal

		case current.TodayDay.Equal(day):
			next = current
			next.TodayCount++
			before := current.TodayCount
			goalReached = before < t.dailyGoal && next.TodayCount >= t.dailyGoal

		default:
			streak := 1
			if current.LastActiveDay.Equal(day.AddDate(0, 0, -1)) {
				streak = current.Streak + 1
			}
			next = models.DailyActivity{LearnerID: learnerID, Streak: streak, LastActiveDay: day, TodayCount: 1, TodayDay: day}
			goalReached = next.TodayCount >= t.dailyGoal
		}

		if err := upsertTx(ctx, tx, t.db, next); err != nil {
			return err
		}
		out = Result{Activity: next, GoalReached: goalReached}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return out, nil
}

// Get returns the learner's current activity record, or the zero-streak
// state if they have never reviewed.
func (t *Tracker) Get(ctx context.Context, learnerID int64) (models.DailyActivity, error) {
	a, err := getDB(ctx, t.db.DB, t.db, learnerID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return models.DailyActivity{LearnerID: learnerID}, nil
		}
		return models.DailyActivity{}, err
	}
	return a, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func getTx(ctx context.Context, tx *sqlx.Tx, db *store.Store, learnerID int64) (models.DailyActivity, error) {
	return getDB(ctx, tx, db, learnerID)
}

func getDB(ctx context.Context, q queryer, db *store.Store, learnerID int64) (models.DailyActivity, error) {
	var a models.DailyActivity
	query := db.Rebind("SELECT * FROM daily_activity WHERE learner_id = ?")
	err := q.GetContext(ctx, &a, query, learnerID)
	found, nerr := store.NotFoundToNil(err)
	if nerr != nil {
		return models.DailyActivity{}, apperr.Wrap(apperr.Internal, nerr, "get daily activity")
	}
	if !found {
		return models.DailyActivity{}, apperr.NewNotFound("no activity record for learner %d", learnerID)
	}
	return a, nil
}

func upsertTx(ctx context.Context, tx *sqlx.Tx, db *store.Store, a models.DailyActivity) error {
	query := db.Rebind(`
		INSERT INTO daily_activity (learner_id, streak, last_active_day, today_count, today_day)
		VALUES (?, ?, ?, ?, ?)
	`)
	if _, err := tx.ExecContext(ctx, query, a.LearnerID, a.Streak, a.LastActiveDay, a.TodayCount, a.TodayDay); err != nil {
		// Row already exists: update instead. SQLite/Postgres upsert syntax
		// diverges (INSERT ... ON CONFLICT vs REPLACE), so this tries a plain
		// INSERT and falls back to an UPDATE on any insert error instead of
		// one dialect-specific statement.
		update := db.Rebind(`
			UPDATE daily_activity SET streak = ?, last_active_day = ?, today_count = ?, today_day = ?
			WHERE learner_id = ?
		`)
		if _, uerr := tx.ExecContext(ctx, update, a.Streak, a.LastActiveDay, a.TodayCount, a.TodayDay, a.LearnerID); uerr != nil {
			return apperr.Wrap(apperr.Internal, uerr, "upsert daily activity")
		}
	}
	return nil
}
