package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReview_PassSequenceFromFresh(t *testing.T) {
	p := DefaultParams()
	state := NewState()

	steps := []struct {
		quality          int
		wantRepetition   int
		wantIntervalDays int
		wantEF           float64
	}{
		{quality: 5, wantRepetition: 1, wantIntervalDays: 1, wantEF: 2.5},
		{quality: 5, wantRepetition: 2, wantIntervalDays: 6, wantEF: 2.5},
		{quality: 5, wantRepetition: 3, wantIntervalDays: 15, wantEF: 2.5},
		{quality: 5, wantRepetition: 4, wantIntervalDays: 38, wantEF: 2.5},
	}

	for i, step := range steps {
		state = Review(state, step.quality, p)
		assert.Equalf(t, step.wantRepetition, state.RepetitionNumber, "step %d repetition", i)
		assert.Equalf(t, step.wantIntervalDays, state.IntervalDays, "step %d interval", i)
		assert.InDeltaf(t, step.wantEF, state.EasinessFactor, 1e-9, "step %d EF", i)
	}
}

func TestReview_FailedRecallResets(t *testing.T) {
	p := DefaultParams()
	prior := State{RepetitionNumber: 4, EasinessFactor: 2.5, IntervalDays: 38}

	next := Review(prior, 2, p)

	assert.Equal(t, 0, next.RepetitionNumber)
	assert.Equal(t, 1, next.IntervalDays)
	assert.InDelta(t, 2.18, next.EasinessFactor, 1e-9)
}

func TestReview_EasinessFactorClampsToFloor(t *testing.T) {
	p := DefaultParams()
	state := State{RepetitionNumber: 0, EasinessFactor: 1.35, IntervalDays: 0}

	state = Review(state, 0, p)

	assert.Equal(t, p.EFMin, state.EasinessFactor)
	assert.Equal(t, 0, state.RepetitionNumber)
	assert.Equal(t, 1, state.IntervalDays)
}

func TestReview_EasinessFactorClampsToCeiling(t *testing.T) {
	p := DefaultParams()
	state := State{RepetitionNumber: 2, EasinessFactor: 2.5, IntervalDays: 6}

	state = Review(state, 5, p)

	assert.Equal(t, p.EFMax, state.EasinessFactor)
}

func TestReview_QualityThreeIsThePassBoundary(t *testing.T) {
	p := DefaultParams()
	prior := State{RepetitionNumber: 1, EasinessFactor: 2.0, IntervalDays: 6}

	passed := Review(prior, 3, p)
	assert.Equal(t, 2, passed.RepetitionNumber)
	assert.Equal(t, 6, passed.IntervalDays, "a pass from repetition 1 uses the fixed 6-day interval")

	failed := Review(prior, 2, p)
	assert.Equal(t, 0, failed.RepetitionNumber)
	assert.Equal(t, 1, failed.IntervalDays)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 38, roundHalfUp(37.5))
	assert.Equal(t, 15, roundHalfUp(15.0))
	assert.Equal(t, 4, roundHalfUp(3.5))
}
