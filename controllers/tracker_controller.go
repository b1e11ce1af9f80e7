package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/animelog/tracker/models"
	"github.com/animelog/tracker/utils"
)

const activityPageLimit = 100

// TrackerController serves read-only views of the XP aggregate and the
// activity log for the authenticated user.
type TrackerController struct {
	db *gorm.DB
}

// NewTrackerController creates a new controller instance.
func NewTrackerController(db *gorm.DB) *TrackerController {
	return &TrackerController{db: db}
}

// Status returns the caller's XP and level. Users without an aggregate row
// yet report xp=0, level=1.
func (t *TrackerController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var tracker models.UserTracker
	if err := t.db.Where("user_id = ?", userID).First(&tracker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Success(ctx, gin.H{
				"user_id": userID,
				"xp":      0,
				"level":   1,
			})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load tracker")
		return
	}

	utils.Success(ctx, gin.H{
		"user_id":    tracker.UserID,
		"xp":         tracker.XP,
		"level":      tracker.Level,
		"updated_at": tracker.UpdatedAt,
	})
}

// Activity returns the caller's recent activity log entries, newest first.
func (t *TrackerController) Activity(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > activityPageLimit {
		limit = activityPageLimit
	}

	entries := []models.ActivityLog{}
	if err := t.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load activity")
		return
	}

	utils.Success(ctx, gin.H{"entries": entries})
}
