package models

import "time"

// Activity types recorded by the tracker. Daily task types are rewarded at
// most once per user per calendar day; the others are awarded every time.
const (
	ActivityDailyLogin      = "daily_login"
	ActivityCommentMade     = "comment_made"
	ActivityQuickReviewer   = "quick_reviewer_task"
	ActivityReviewSubmitted = "review_submitted"
	ActivityPostLiked       = "post_liked"
	ActivityCommentPost     = "comment_post"
)

// Fixed reward sizes. comment_post carries caller-chosen points and has no
// constant here.
const (
	PointsDailyCheckIn    = 5
	PointsCommentComrade  = 15
	PointsQuickReviewer   = 25
	PointsReviewSubmitted = 15
	PointsPostLiked       = 5
)

// IsDailyTask reports whether the activity type is capped at one rewarded
// completion per day.
func IsDailyTask(activityType string) bool {
	switch activityType {
	case ActivityDailyLogin, ActivityCommentMade, ActivityQuickReviewer:
		return true
	}
	return false
}

// ActivityLog is the append-only record of every points-awarding event.
// Rows are never updated or deleted. RequestID carries the client's
// idempotency key when present; the unique index absorbs duplicate delivery.
type ActivityLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"size:64;index;not null" json:"user_id"`
	ActivityType    string    `gorm:"size:64;not null" json:"activity_type"`
	PointsAwarded   int       `gorm:"not null" json:"points_awarded"`
	RelatedItemID   string    `gorm:"size:64" json:"related_item_id,omitempty"`
	RelatedItemType string    `gorm:"size:32" json:"related_item_type,omitempty"`
	RequestID       *string   `gorm:"size:36;uniqueIndex" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}
