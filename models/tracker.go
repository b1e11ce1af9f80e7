package models

import "time"

// LevelStep is the amount of XP between levels.
const LevelStep = 200

// UserTracker holds the per-user XP aggregate. One row per user, created
// lazily on first award and mutated only by the award flow.
type UserTracker struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:64;uniqueIndex;not null" json:"user_id"`
	XP        int       `gorm:"column:xp;not null;default:0" json:"xp"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LevelForXP derives the level tier from accumulated XP.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/LevelStep + 1
}
