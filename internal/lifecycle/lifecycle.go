// Package lifecycle centralizes every Progress Entry status transition
// (spec §4.4) behind one total function, per spec §9's "Polymorphism by
// state, not by type" design note.
package lifecycle

import "github.com/example/vocabadapt/pkg/models"

// Event is one of the triggers spec §4.4 names.
type Event string

const (
	EventTriageKnown   Event = "triage_known"
	EventTriageUnknown Event = "triage_unknown"
	EventReviewFail    Event = "review_fail"    // quality < 3
	EventReviewPass    Event = "review_pass"    // quality >= 3
)

// MasteryThresholdDays is passed in per-call rather than held as package
// state, since it is a configured value (spec §6), not a constant.

// Transition computes the next status for (current, event). It is total:
// every (status, event) pair yields exactly one next status.
//
// Decision recorded in DESIGN.md: Learning -> Review requires two
// consecutive passing reviews (repetitionAfter reaching 2), the stricter
// reading spec §4.4 explicitly permits.
func Transition(current models.Status, event Event, repetitionAfter, intervalAfterDays, masteryThresholdDays int) models.Status {
	switch event {
	case EventTriageKnown:
		return models.StatusMastered

	case EventTriageUnknown:
		return models.StatusLearning

	case EventReviewFail:
		// review with q < 3 -> {Learning, Review, Mastered} -> Learning.
		// A failing review on a New word is not a defined source state in
		// spec §4.4 (New only ever receives passing reviews or triage), so
		// New falls through to Learning as the only sensible total answer.
		return models.StatusLearning

	case EventReviewPass:
		switch current {
		case models.StatusNew:
			return models.StatusReview
		case models.StatusLearning:
			if repetitionAfter >= 2 {
				return models.StatusReview
			}
			return models.StatusLearning
		case models.StatusReview:
			if intervalAfterDays >= masteryThresholdDays {
				return models.StatusMastered
			}
			return models.StatusReview
		case models.StatusMastered:
			return models.StatusMastered
		}
	}

	// Unreachable for the Event/Status values this package defines; total
	// functions still need a fallback to satisfy the compiler.
	return current
}
