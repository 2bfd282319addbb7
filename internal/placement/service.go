package placement

import (
	"context"

	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/pkg/models"
)

// Question is the next word to show the learner, alongside whether it is a
// regression probe (spec §6: placement.start/answer return shape).
type Question struct {
	Word              models.Word
	IsRegressionProbe bool
}

// Service wires the pure engine to the Placement Session Store and the
// Word Catalog.
type Service struct {
	store   *Store
	catalog catalog.Reader
	params  Params
}

func NewService(store *Store, catalog catalog.Reader, params Params) *Service {
	return &Service{store: store, catalog: catalog, params: params}
}

// Start begins (or resumes, per the idempotence rule) a placement session
// and returns its first question. A resumed session's "first question" is
// simply whatever NextTarget computes from its current state; Start never
// re-asks a question already in the log.
func (s *Service) Start(ctx context.Context, learnerID int64) (models.PlacementSession, Question, error) {
	sess, err := s.store.CreateOrGetActive(ctx, learnerID)
	if err != nil {
		return models.PlacementSession{}, Question{}, err
	}
	if !sess.Active {
		return sess, Question{}, apperr.NewExhausted("placement session %s already complete", sess.ID)
	}

	q, err := s.selectQuestion(ctx, sess)
	if err != nil {
		return sess, Question{}, err
	}
	return sess, q, nil
}

// Current returns the learner's active session and its next question
// without mutating anything, for clients reconnecting mid-session.
func (s *Service) Current(ctx context.Context, learnerID int64) (models.PlacementSession, Question, error) {
	sess, err := s.store.GetActive(ctx, learnerID)
	if err != nil {
		return models.PlacementSession{}, Question{}, err
	}
	q, err := s.selectQuestion(ctx, sess)
	if err != nil {
		return sess, Question{}, err
	}
	return sess, q, nil
}

// Answer submits an answer to the learner's active session's current
// question and returns the next question (none if the session just
// completed) along with the updated session.
func (s *Service) Answer(ctx context.Context, learnerID int64, wordID int64, isKnown bool) (models.PlacementSession, *Question, error) {
	sess, err := s.store.GetActive(ctx, learnerID)
	if err != nil {
		return models.PlacementSession{}, nil, err
	}

	target, isProbe := NextTarget(sess, s.params)
	updated, complete := ApplyAnswer(sess, wordID, target, isProbe, isKnown, s.params)

	if err := s.store.Save(ctx, updated); err != nil {
		return models.PlacementSession{}, nil, err
	}

	if complete {
		return updated, nil, nil
	}

	q, err := s.selectQuestion(ctx, updated)
	if err != nil {
		return updated, nil, err
	}
	return updated, &q, nil
}

// selectQuestion resolves NextTarget's difficulty rank into an actual
// catalog word, excluding every word already shown this session.
func (s *Service) selectQuestion(ctx context.Context, sess models.PlacementSession) (Question, error) {
	target, isProbe := NextTarget(sess, s.params)

	word, err := s.catalog.NearestByDifficulty(ctx, target, sess.SeenWordIDs())
	if err != nil {
		return Question{}, err
	}
	return Question{Word: word, IsRegressionProbe: isProbe}, nil
}
