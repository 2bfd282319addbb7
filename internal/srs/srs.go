// Package srs implements the SM-2 spaced-repetition scheduler (spec §4.3)
// as a pure function, generalizing the teacher's
// internal/spaced_repetition.SM2.Process to the spec's exact recurrence,
// clamp, and HALF-UP rounding rule.
package srs

import "math"

// Params bounds the easiness factor the scheduler will produce.
type Params struct {
	EFMin float64
	EFMax float64
}

// DefaultParams matches spec §6's EF_MIN/EF_MAX defaults.
func DefaultParams() Params {
	return Params{EFMin: 1.3, EFMax: 2.5}
}

// State is the subset of a Progress Entry the scheduler reads and writes.
// NewState, not the zero value, is the synthetic "never reviewed" state:
// RepetitionNumber == 0 with EasinessFactor 2.5. The zero value has
// EasinessFactor 0, which Review clamps up to EFMin.
type State struct {
	RepetitionNumber int
	EasinessFactor   float64
	IntervalDays     int
}

// NewState returns the initial SM-2 state for a word that has never been
// reviewed (EF starts at 2.5, per spec §4.3 edge cases).
func NewState() State {
	return State{RepetitionNumber: 0, EasinessFactor: 2.5, IntervalDays: 0}
}

// Review applies one SM-2 review of the given quality (0-5) to prior,
// returning the updated state. quality is assumed already validated to
// [0,5] by the caller (spec §7: InvalidArgument is raised at the
// boundary, before entering the scheduler).
func Review(prior State, quality int, p Params) State {
	q := float64(quality)
	ef := prior.EasinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	ef = clamp(ef, p.EFMin, p.EFMax)

	next := State{EasinessFactor: ef}

	if quality < 3 {
		// Failed recall: reset repetition count, review again tomorrow.
		next.RepetitionNumber = 0
		next.IntervalDays = 1
		return next
	}

	switch prior.RepetitionNumber {
	case 0:
		next.IntervalDays = 1
	case 1:
		next.IntervalDays = 6
	default:
		next.IntervalDays = roundHalfUp(float64(prior.IntervalDays) * ef)
	}
	next.RepetitionNumber = prior.RepetitionNumber + 1

	return next
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// roundHalfUp rounds a positive float to the nearest integer, ties rounding
// up, per spec §4.3's "Fractional intervals are rounded HALF-UP" edge case.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
