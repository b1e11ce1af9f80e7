package models

import "time"

// DateLayout is the day-granularity format used for completion records.
const DateLayout = "2006-01-02"

// TaskDefinition maps a daily activity type to its completion-tracking key
// and canonical reward. Seed data, read-only at runtime.
type TaskDefinition struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskName     string    `gorm:"size:64;not null" json:"task_name"`
	ActivityType string    `gorm:"size:64;uniqueIndex;not null" json:"activity_type"`
	Points       int       `gorm:"not null" json:"points"`
	CreatedAt    time.Time `json:"-"`
}

// DailyTaskCompletion marks one rewarded completion of a daily task.
// The unique index enforces at most one row per (user, task, day); the award
// flow inserts with ON CONFLICT DO NOTHING so the check is atomic.
type DailyTaskCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"size:64;not null;uniqueIndex:idx_daily_completion_once,priority:1" json:"user_id"`
	TaskID        uint      `gorm:"not null;uniqueIndex:idx_daily_completion_once,priority:2" json:"task_id"`
	CompletedDate string    `gorm:"size:10;not null;uniqueIndex:idx_daily_completion_once,priority:3" json:"completed_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// SeedTaskDefinitions returns the built-in daily task catalogue.
func SeedTaskDefinitions() []TaskDefinition {
	return []TaskDefinition{
		{TaskName: "Daily Check-In", ActivityType: ActivityDailyLogin, Points: PointsDailyCheckIn},
		{TaskName: "Comment Comrade", ActivityType: ActivityCommentMade, Points: PointsCommentComrade},
		{TaskName: "Quick Reviewer", ActivityType: ActivityQuickReviewer, Points: PointsQuickReviewer},
	}
}
