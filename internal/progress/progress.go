// Package progress is the persistent (learner, word) -> Progress Entry
// mapping (spec §4.2), generalizing the teacher's
// internal/database.UserProgressRepository to the four operations the
// core needs: get-or-create, update, query-due, count-by-unit.
package progress

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/store"
	"github.com/example/vocabadapt/pkg/models"
)

// UnitCount is one row of count-by-unit: how many of a learner's words in
// a unit have reached Review or Mastered.
type UnitCount struct {
	Unit     int
	Reviewed int
	Total    int
}

// Store is the SQL-backed Progress Store.
type Store struct {
	db *store.Store
}

func NewStore(db *store.Store) *Store {
	return &Store{db: db}
}

// GetOrCreate returns the existing entry for (learnerID, wordID), or
// inserts one with initialStatus (and the lifecycle-default zero values for
// every other field) and returns that. The unique (learner_id, word_id)
// primary key makes the insert path atomic under concurrent first access:
// a losing insert falls back to re-reading the winner's row.
func (s *Store) GetOrCreate(ctx context.Context, learnerID, wordID int64, initialStatus models.Status) (models.ProgressEntry, error) {
	var out models.ProgressEntry
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := getTx(ctx, tx, s.db, learnerID, wordID)
		if err == nil {
			out = existing
			return nil
		}
		if apperr.KindOf(err) != apperr.NotFound {
			return err
		}

		insert := s.db.Rebind(`
			INSERT INTO progress_entries
				(learner_id, word_id, status, repetition_number, easiness_factor, interval_days, next_review_at, last_reviewed_at, version)
			VALUES (?, ?, ?, 0, 2.5, 0, NULL, NULL, 0)
		`)
		if _, err := tx.ExecContext(ctx, insert, learnerID, wordID, string(initialStatus)); err != nil {
			// Unique-constraint violation: another request created the row
			// first. Re-read it instead of surfacing a spurious conflict.
			existing, rerr := getTx(ctx, tx, s.db, learnerID, wordID)
			if rerr != nil {
				return apperr.Wrap(apperr.Internal, err, "insert progress entry")
			}
			out = existing
			return nil
		}

		out = models.ProgressEntry{
			LearnerID:        learnerID,
			WordID:           wordID,
			Status:           initialStatus,
			RepetitionNumber: 0,
			EasinessFactor:   2.5,
			IntervalDays:     0,
			Version:          0,
		}
		return nil
	})
	if err != nil {
		return models.ProgressEntry{}, err
	}
	return out, nil
}

// Update performs a total replacement of the mutable fields of an existing
// entry, requiring the stored row's version to still match e.Version (the
// version this entry was loaded with) — the same CAS discipline
// placement.Store.Save uses for placement_sessions, closing the
// read-outside-a-transaction gap a bare "UPDATE ... WHERE learner_id = ?
// AND word_id = ?" would leave between GetOrCreate's read and this write.
// It fails with NotFound if no entry exists for the pair, or Conflict if
// one exists but was modified concurrently since e was loaded.
func (s *Store) Update(ctx context.Context, e models.ProgressEntry) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := s.db.Rebind(`
			UPDATE progress_entries SET
				status = ?, repetition_number = ?, easiness_factor = ?, interval_days = ?,
				next_review_at = ?, last_reviewed_at = ?, version = version + 1
			WHERE learner_id = ? AND word_id = ? AND version = ?
		`)
		res, err := tx.ExecContext(ctx, query,
			string(e.Status), e.RepetitionNumber, e.EasinessFactor, e.IntervalDays,
			e.NextReviewAt, e.LastReviewedAt, e.LearnerID, e.WordID, e.Version)
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "update progress entry")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "check update result")
		}
		if n > 0 {
			return nil
		}

		if _, err := getTx(ctx, tx, s.db, e.LearnerID, e.WordID); err != nil {
			if apperr.KindOf(err) == apperr.NotFound {
				return apperr.NewNotFound("no progress entry for learner %d word %d", e.LearnerID, e.WordID)
			}
			return err
		}
		return apperr.NewConflict("progress entry for learner %d word %d was modified concurrently", e.LearnerID, e.WordID)
	})
}

// Get returns the entry for (learnerID, wordID), or NotFound.
func (s *Store) Get(ctx context.Context, learnerID, wordID int64) (models.ProgressEntry, error) {
	return getDB(ctx, s.db.DB, s.db, learnerID, wordID)
}

func getTx(ctx context.Context, tx *sqlx.Tx, db *store.Store, learnerID, wordID int64) (models.ProgressEntry, error) {
	return getDB(ctx, tx, db, learnerID, wordID)
}

type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func getDB(ctx context.Context, q queryer, db *store.Store, learnerID, wordID int64) (models.ProgressEntry, error) {
	var row progressRow
	query := db.Rebind("SELECT * FROM progress_entries WHERE learner_id = ? AND word_id = ?")
	err := q.GetContext(ctx, &row, query, learnerID, wordID)
	found, nerr := store.NotFoundToNil(err)
	if nerr != nil {
		return models.ProgressEntry{}, apperr.Wrap(apperr.Internal, nerr, "get progress entry")
	}
	if !found {
		return models.ProgressEntry{}, apperr.NewNotFound("no progress entry for learner %d word %d", learnerID, wordID)
	}
	return row.toModel(), nil
}

// progressRow is the db-tagged scan target; next_review_at/last_reviewed_at
// are nullable columns, so they scan through sql.NullTime before becoming
// the model's *time.Time.
type progressRow struct {
	LearnerID        int64      `db:"learner_id"`
	WordID           int64      `db:"word_id"`
	Status           string     `db:"status"`
	RepetitionNumber int        `db:"repetition_number"`
	EasinessFactor   float64    `db:"easiness_factor"`
	IntervalDays     int        `db:"interval_days"`
	NextReviewAt     *time.Time `db:"next_review_at"`
	LastReviewedAt   *time.Time `db:"last_reviewed_at"`
	Version          int        `db:"version"`
}

func (r progressRow) toModel() models.ProgressEntry {
	return models.ProgressEntry{
		LearnerID:        r.LearnerID,
		WordID:           r.WordID,
		Status:           models.Status(r.Status),
		RepetitionNumber: r.RepetitionNumber,
		EasinessFactor:   r.EasinessFactor,
		IntervalDays:     r.IntervalDays,
		NextReviewAt:     r.NextReviewAt,
		LastReviewedAt:   r.LastReviewedAt,
		Version:          r.Version,
	}
}

// QueryDue returns up to limit entries for learnerID whose status is in
// filter and are due (status = New, or next_review_at <= atTime), ordered
// by status priority (Learning > Review > New > Mastered), then ascending
// next_review_at (absent sorts last within its status group, matching
// "treating absent as +infinity"), then ascending word id.
func (s *Store) QueryDue(ctx context.Context, learnerID int64, atTime time.Time, limit int, filter []models.Status) ([]models.ProgressEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if len(filter) == 0 {
		return nil, nil
	}

	placeholders := make([]any, 0, len(filter)+2)
	inClause := ""
	for i, st := range filter {
		if i > 0 {
			inClause += ", "
		}
		inClause += "?"
		placeholders = append(placeholders, string(st))
	}
	placeholders = append(placeholders, learnerID, atTime)

	query := s.db.Rebind(`
		SELECT * FROM progress_entries
		WHERE status IN (` + inClause + `)
		  AND learner_id = ?
		  AND (status = 'New' OR next_review_at <= ?)
		ORDER BY
			CASE status
				WHEN 'Learning' THEN 0
				WHEN 'Review' THEN 1
				WHEN 'New' THEN 2
				WHEN 'Mastered' THEN 3
				ELSE 4
			END,
			CASE WHEN next_review_at IS NULL THEN 1 ELSE 0 END,
			next_review_at,
			word_id
		LIMIT ?
	`)
	placeholders = append(placeholders, limit)

	var rows []progressRow
	if err := s.db.DB.SelectContext(ctx, &rows, query, placeholders...); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "query due progress entries")
	}

	out := make([]models.ProgressEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CountByUnit aggregates, per unit, how many of the learner's words have
// reached Review or Mastered against the unit's total word count.
func (s *Store) CountByUnit(ctx context.Context, learnerID int64) ([]UnitCount, error) {
	query := s.db.Rebind(`
		SELECT
			w.unit AS unit,
			COUNT(CASE WHEN pe.status IN ('Review', 'Mastered') THEN 1 END) AS reviewed,
			COUNT(w.id) AS total
		FROM words w
		LEFT JOIN progress_entries pe
			ON pe.word_id = w.id AND pe.learner_id = ?
		GROUP BY w.unit
		ORDER BY w.unit
	`)

	rows, err := s.db.DB.QueryxContext(ctx, query, learnerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "count progress by unit")
	}
	defer rows.Close()

	var out []UnitCount
	for rows.Next() {
		var uc UnitCount
		if err := rows.Scan(&uc.Unit, &uc.Reviewed, &uc.Total); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "scan unit count")
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}
