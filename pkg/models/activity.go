package models

import "time"

// DailyActivity tracks a learner's review streak and daily-goal progress.
// Day boundaries are UTC calendar days: the core stores no per-learner
// timezone.
type DailyActivity struct {
	LearnerID     int64     `json:"learner_id" db:"learner_id"`
	Streak        int       `json:"streak" db:"streak"`
	LastActiveDay time.Time `json:"last_active_day" db:"last_active_day"`
	TodayCount    int       `json:"today_count" db:"today_count"`
	TodayDay      time.Time `json:"today_day" db:"today_day"`
}
