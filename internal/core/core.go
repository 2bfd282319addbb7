// Package core is the Service facade answering every operation spec §6
// names, composing internal/placement, internal/progress,
// internal/lifecycle, internal/srs, internal/assembler,
// internal/distractor and internal/activity behind the context-deadline,
// zap-logged style the teacher's service layer (and Sheliakhin's
// dictionary_service.go) uses.
package core

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/example/vocabadapt/internal/activity"
	"github.com/example/vocabadapt/internal/apperr"
	"github.com/example/vocabadapt/internal/assembler"
	"github.com/example/vocabadapt/internal/catalog"
	"github.com/example/vocabadapt/internal/clock"
	"github.com/example/vocabadapt/internal/config"
	"github.com/example/vocabadapt/internal/distractor"
	"github.com/example/vocabadapt/internal/lifecycle"
	"github.com/example/vocabadapt/internal/placement"
	"github.com/example/vocabadapt/internal/progress"
	"github.com/example/vocabadapt/internal/srs"
	"github.com/example/vocabadapt/pkg/models"
)

// Service is the core's single entry point; every method honors ctx's
// deadline (spec §6), and every method except Distractors takes a learner id.
type Service struct {
	cfg *config.Config
	clk clock.Clock
	log *zap.Logger

	catalog    catalog.Reader
	progress   *progress.Store
	placement  *placement.Service
	assembler  *assembler.Assembler
	activity   *activity.Tracker
	srsParams  srs.Params
	plcParams  placement.Params
	dstParams  distractor.Params
}

func New(
	cfg *config.Config,
	clk clock.Clock,
	logger *zap.Logger,
	catalogReader catalog.Reader,
	progressStore *progress.Store,
	placementSvc *placement.Service,
	asm *assembler.Assembler,
	activityTracker *activity.Tracker,
) *Service {
	return &Service{
		cfg:       cfg,
		clk:       clk,
		log:       logger,
		catalog:   catalogReader,
		progress:  progressStore,
		placement: placementSvc,
		assembler: asm,
		activity:  activityTracker,
		srsParams: srs.Params{EFMin: cfg.EFMin, EFMax: cfg.EFMax},
		plcParams: placement.Params{
			RegressionInterval: cfg.RegressionInterval,
			RegressionFactor:   cfg.RegressionFactor,
			MinRange:           cfg.MinRange,
			MaxQuestions:       cfg.MaxQuestions,
		},
		dstParams: distractor.Params{Count: cfg.DistractorCount, Band: cfg.DistractorBand},
	}
}

// PlacementStart implements placement.start.
func (s *Service) PlacementStart(ctx context.Context, learnerID int64) (models.PlacementSession, placement.Question, error) {
	return s.placement.Start(ctx, learnerID)
}

// PlacementAnswer implements placement.answer.
func (s *Service) PlacementAnswer(ctx context.Context, learnerID, wordID int64, isKnown bool) (models.PlacementSession, *placement.Question, error) {
	return s.placement.Answer(ctx, learnerID, wordID, isKnown)
}

// PlacementCurrent implements placement.current.
func (s *Service) PlacementCurrent(ctx context.Context, learnerID int64) (models.PlacementSession, placement.Question, error) {
	return s.placement.Current(ctx, learnerID)
}

// Triage implements triage(learner, word, is_known): a non-SM-2 classification
// event used for the unit_filter UI, moving a word straight to Mastered or
// into Learning per spec §9's pinned "known bypasses Learning" reading.
func (s *Service) Triage(ctx context.Context, learnerID, wordID int64, isKnown bool) (models.ProgressEntry, error) {
	if _, err := s.catalog.ByID(ctx, wordID); err != nil {
		return models.ProgressEntry{}, err
	}

	initial := models.StatusNew
	if isKnown {
		initial = models.StatusMastered
	}
	entry, err := s.progress.GetOrCreate(ctx, learnerID, wordID, initial)
	if err != nil {
		return models.ProgressEntry{}, err
	}

	event := lifecycle.EventTriageUnknown
	if isKnown {
		event = lifecycle.EventTriageKnown
	}
	nextStatus := lifecycle.Transition(entry.Status, event, entry.RepetitionNumber, entry.IntervalDays, s.cfg.MasteryThresholdDays)

	now := s.clk.Now()
	entry.Status = nextStatus
	entry.LastReviewedAt = &now
	if isKnown {
		entry.RepetitionNumber = 1
		entry.IntervalDays = s.cfg.MasterySeedDays
	} else {
		entry.RepetitionNumber = 0
		entry.IntervalDays = 1
	}
	nextReviewAt := now.AddDate(0, 0, entry.IntervalDays)
	entry.NextReviewAt = &nextReviewAt

	if err := s.progress.Update(ctx, entry); err != nil {
		s.log.Error("triage update failed", zap.Error(err), zap.Int64("learner_id", learnerID), zap.Int64("word_id", wordID))
		return models.ProgressEntry{}, err
	}
	return entry, nil
}

// ReviewSession implements review.session.
func (s *Service) ReviewSession(ctx context.Context, learnerID int64, limit int) ([]models.ProgressWithWord, error) {
	return s.assembler.ReviewSession(ctx, learnerID, limit, s.clk.Now())
}

// ReviewUnitFilter implements review.unit_filter.
func (s *Service) ReviewUnitFilter(ctx context.Context, learnerID int64, unit int) ([]models.ProgressWithWord, error) {
	return s.assembler.UnitFilterSession(ctx, learnerID, unit)
}

// ReviewUnitLearned implements review.unit_learned.
func (s *Service) ReviewUnitLearned(ctx context.Context, learnerID int64, unit int) ([]models.ProgressWithWord, error) {
	return s.assembler.UnitLearnedPool(ctx, learnerID, unit)
}

// ReviewResult is the return shape of review.submit.
type ReviewResult struct {
	Entry         models.ProgressEntry
	GoalReached   bool
	DailyCount    int
	CurrentStreak int
}

// ReviewSubmit implements review.submit(learner, word, quality).
func (s *Service) ReviewSubmit(ctx context.Context, learnerID, wordID int64, quality int) (ReviewResult, error) {
	if quality < 0 || quality > 5 {
		return ReviewResult{}, apperr.NewInvalidArgument("quality %d out of range [0,5]", quality)
	}
	if _, err := s.catalog.ByID(ctx, wordID); err != nil {
		return ReviewResult{}, err
	}

	entry, err := s.progress.GetOrCreate(ctx, learnerID, wordID, models.StatusNew)
	if err != nil {
		return ReviewResult{}, err
	}

	prior := srs.State{RepetitionNumber: entry.RepetitionNumber, EasinessFactor: entry.EasinessFactor, IntervalDays: entry.IntervalDays}
	next := srs.Review(prior, quality, s.srsParams)

	event := lifecycle.EventReviewPass
	if quality < 3 {
		event = lifecycle.EventReviewFail
	}
	nextStatus := lifecycle.Transition(entry.Status, event, next.RepetitionNumber, next.IntervalDays, s.cfg.MasteryThresholdDays)

	now := s.clk.Now()
	nextReviewAt := now.AddDate(0, 0, next.IntervalDays)

	entry.Status = nextStatus
	entry.RepetitionNumber = next.RepetitionNumber
	entry.EasinessFactor = next.EasinessFactor
	entry.IntervalDays = next.IntervalDays
	entry.NextReviewAt = &nextReviewAt
	entry.LastReviewedAt = &now

	if err := s.progress.Update(ctx, entry); err != nil {
		if apperr.KindOf(err) == apperr.Conflict {
			s.log.Warn("review submit lost a concurrent update race", zap.Int64("learner_id", learnerID), zap.Int64("word_id", wordID))
		} else {
			s.log.Error("review submit update failed", zap.Error(err), zap.Int64("learner_id", learnerID), zap.Int64("word_id", wordID))
		}
		return ReviewResult{}, err
	}

	actResult, err := s.activity.Observe(ctx, learnerID, now.UTC())
	if err != nil {
		s.log.Error("daily activity observe failed", zap.Error(err), zap.Int64("learner_id", learnerID))
		return ReviewResult{}, err
	}

	return ReviewResult{
		Entry:         entry,
		GoalReached:   actResult.GoalReached,
		DailyCount:    actResult.Activity.TodayCount,
		CurrentStreak: actResult.Activity.Streak,
	}, nil
}

// UnitStats is one row of stats.by_unit.
type UnitStats struct {
	Unit    int
	Learned int
	Total   int
	Percent float64
}

// StatsByUnit implements stats.by_unit.
func (s *Service) StatsByUnit(ctx context.Context, learnerID int64) ([]UnitStats, UnitStats, error) {
	counts, err := s.progress.CountByUnit(ctx, learnerID)
	if err != nil {
		return nil, UnitStats{}, err
	}

	out := make([]UnitStats, 0, len(counts))
	var overall UnitStats
	for _, c := range counts {
		pct := 0.0
		if c.Total > 0 {
			pct = float64(c.Reviewed) / float64(c.Total) * 100
		}
		out = append(out, UnitStats{Unit: c.Unit, Learned: c.Reviewed, Total: c.Total, Percent: pct})
		overall.Learned += c.Reviewed
		overall.Total += c.Total
	}
	if overall.Total > 0 {
		overall.Percent = float64(overall.Learned) / float64(overall.Total) * 100
	}
	return out, overall, nil
}

// UserStats is the return shape of stats.user.
type UserStats struct {
	Streak     int
	DailyCount int
	DailyGoal  int
}

// StatsUser implements stats.user.
func (s *Service) StatsUser(ctx context.Context, learnerID int64) (UserStats, error) {
	a, err := s.activity.Get(ctx, learnerID)
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{Streak: a.Streak, DailyCount: a.TodayCount, DailyGoal: s.cfg.DailyGoal}, nil
}

// Distractors implements distractors(word, n).
func (s *Service) Distractors(ctx context.Context, wordID int64, n int) ([]models.Word, error) {
	correct, err := s.catalog.ByID(ctx, wordID)
	if err != nil {
		return nil, err
	}
	params := s.dstParams
	if n > 0 {
		params.Count = n
	}
	rnd := rand.New(rand.NewSource(s.clk.Now().UnixNano() ^ wordID))
	return distractor.Generate(ctx, s.catalog, correct, params, rnd)
}
