package placement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/store"
	"github.com/example/vocabadapt/pkg/models"
)

// Store is the Placement Session Store (spec §3, §4.5 persistence),
// generalizing the teacher's per-entity repository pattern to the single
// active-session-per-learner invariant this domain needs.
type Store struct {
	db *store.Store
}

func NewStore(db *store.Store) *Store {
	return &Store{db: db}
}

type sessionRow struct {
	ID            string     `db:"id"`
	LearnerID     int64      `db:"learner_id"`
	CurrentMin    int        `db:"current_min"`
	CurrentMax    int        `db:"current_max"`
	QuestionCount int        `db:"question_count"`
	Active        bool       `db:"is_active"`
	FinalLevel    *int       `db:"final_level"`
	LogJSON       string     `db:"log_json"`
	Version       int        `db:"version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (r sessionRow) toModel() (models.PlacementSession, error) {
	var log []models.PlacementLogEntry
	if err := json.Unmarshal([]byte(r.LogJSON), &log); err != nil {
		return models.PlacementSession{}, apperr.Wrap(apperr.Internal, err, "decode placement log")
	}
	return models.PlacementSession{
		ID:            r.ID,
		LearnerID:     r.LearnerID,
		CurrentMin:    r.CurrentMin,
		CurrentMax:    r.CurrentMax,
		QuestionCount: r.QuestionCount,
		Active:        r.Active,
		FinalLevel:    r.FinalLevel,
		Log:           log,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.Version,
	}, nil
}

// GetActive returns the learner's active session, or NotFound.
func (s *Store) GetActive(ctx context.Context, learnerID int64) (models.PlacementSession, error) {
	var row sessionRow
	query := s.db.Rebind("SELECT * FROM placement_sessions WHERE learner_id = ? AND is_active = 1")
	err := s.db.DB.GetContext(ctx, &row, query, learnerID)
	found, nerr := store.NotFoundToNil(err)
	if nerr != nil {
		return models.PlacementSession{}, apperr.Wrap(apperr.Internal, nerr, "get active placement session")
	}
	if !found {
		return models.PlacementSession{}, apperr.NewNotFound("no active placement session for learner %d", learnerID)
	}
	return row.toModel()
}

// CreateOrGetActive returns the learner's active session if one exists
// (idempotence, spec §4.5), otherwise creates a fresh one at [1, 100].
func (s *Store) CreateOrGetActive(ctx context.Context, learnerID int64) (models.PlacementSession, error) {
	var out models.PlacementSession
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var row sessionRow
		query := s.db.Rebind("SELECT * FROM placement_sessions WHERE learner_id = ? AND is_active = 1")
		err := tx.GetContext(ctx, &row, query, learnerID)
		found, nerr := store.NotFoundToNil(err)
		if nerr != nil {
			return apperr.Wrap(apperr.Internal, nerr, "check active placement session")
		}
		if found {
			model, err := row.toModel()
			if err != nil {
				return err
			}
			out = model
			return nil
		}

		sess := models.PlacementSession{
			ID:         uuid.NewString(),
			LearnerID:  learnerID,
			CurrentMin: 1,
			CurrentMax: 100,
			Active:     true,
			Log:        []models.PlacementLogEntry{},
		}
		insert := s.db.Rebind(`
			INSERT INTO placement_sessions
				(id, learner_id, current_min, current_max, question_count, is_active, final_level, log_json, version)
			VALUES (?, ?, ?, ?, 0, 1, NULL, '[]', 0)
		`)
		if _, err := tx.ExecContext(ctx, insert, sess.ID, sess.LearnerID, sess.CurrentMin, sess.CurrentMax); err != nil {
			return apperr.Wrap(apperr.Internal, err, "insert placement session")
		}
		out = sess
		return nil
	})
	if err != nil {
		return models.PlacementSession{}, err
	}
	return out, nil
}

// Save persists sess, requiring the stored row's version to still match
// sess.Version (the version this session was loaded with). A mismatch
// means another answer was already applied concurrently, and is reported
// as a Conflict rather than overwritten.
func (s *Store) Save(ctx context.Context, sess models.PlacementSession) error {
	logJSON, err := json.Marshal(sess.Log)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "encode placement log")
	}

	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := s.db.Rebind(`
			UPDATE placement_sessions SET
				current_min = ?, current_max = ?, question_count = ?, is_active = ?,
				final_level = ?, log_json = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND version = ?
		`)
		res, err := tx.ExecContext(ctx, query,
			sess.CurrentMin, sess.CurrentMax, sess.QuestionCount, sess.Active,
			sess.FinalLevel, string(logJSON), sess.ID, sess.Version)
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "save placement session")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "check save result")
		}
		if n == 0 {
			return apperr.NewConflict("placement session %s was modified concurrently", sess.ID)
		}
		return nil
	})
}

// PruneAbandoned deactivates every active session whose last update is
// older than cutoff, without assigning a final_level: the learner simply
// never finished it. Returns the number of sessions pruned.
func (s *Store) PruneAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	query := s.db.Rebind("UPDATE placement_sessions SET is_active = 0 WHERE is_active = 1 AND updated_at < ?")
	res, err := s.db.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, err, "prune abandoned placement sessions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, err, "check prune result")
	}
	return n, nil
}
