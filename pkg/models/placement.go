package models

import "time"

// PlacementLogEntry records one question/answer pair within a placement
// session, used for the no-repeat-word invariant and for auditability.
type PlacementLogEntry struct {
	Position           int   `json:"position" db:"position"`
	WordID             int64 `json:"word_id" db:"word_id"`
	WasRegressionProbe bool  `json:"was_regression_probe" db:"was_regression_probe"`
	WasKnown           bool  `json:"was_known" db:"was_known"`
}

// PlacementSession is a learner's in-progress or completed "Sorting Hat" run.
//
// Invariants (see spec §3, §8):
//   - 1 <= CurrentMin <= CurrentMax <= 100 while Active.
//   - QuestionCount <= MAX_QUESTIONS.
//   - At most one active session per learner.
//   - No word id appears twice in Log.
type PlacementSession struct {
	ID            string              `json:"id" db:"id"`
	LearnerID     int64               `json:"learner_id" db:"learner_id"`
	CurrentMin    int                 `json:"current_min" db:"current_min"`
	CurrentMax    int                 `json:"current_max" db:"current_max"`
	QuestionCount int                 `json:"question_count" db:"question_count"`
	Active        bool                `json:"active" db:"is_active"`
	FinalLevel    *int                `json:"final_level,omitempty" db:"final_level"`
	Log           []PlacementLogEntry `json:"log"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`

	// Version is the optimistic-concurrency token (spec §5): a Save only
	// succeeds if the stored version still matches the one this session
	// was loaded with, otherwise it fails with a conflict rather than
	// silently coalescing two concurrent answers.
	Version int `json:"-" db:"version"`
}

// SeenWordIDs returns the set of word ids already shown in this session.
func (s *PlacementSession) SeenWordIDs() map[int64]struct{} {
	seen := make(map[int64]struct{}, len(s.Log))
	for _, entry := range s.Log {
		seen[entry.WordID] = struct{}{}
	}
	return seen
}
