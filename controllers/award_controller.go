package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/animelog/tracker/middleware"
	"github.com/animelog/tracker/models"
	"github.com/animelog/tracker/utils"
)

// AwardController is the sole writer of XP, levels, daily completion records,
// and the activity log.
type AwardController struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	errAlreadyCompleted = errors.New("task already completed today")
	errDuplicateRequest = errors.New("duplicate award request")
)

// NewAwardController creates a new controller instance.
func NewAwardController(db *gorm.DB) *AwardController {
	return &AwardController{db: db, now: time.Now}
}

type awardRequest struct {
	UserID          string   `json:"user_id"`
	ActivityType    string   `json:"activity_type"`
	PointsAwarded   *float64 `json:"points_awarded"`
	RelatedItemID   string   `json:"related_item_id"`
	RelatedItemType string   `json:"related_item_type"`
	RequestID       string   `json:"request_id"`
}

// awardResponse is the wire contract the platform's clients already speak,
// so it is not wrapped in the standard response envelope.
type awardResponse struct {
	Message       string `json:"message"`
	NewXP         *int   `json:"new_xp"`
	NewLevel      *int   `json:"new_level"`
	PointsAwarded *int   `json:"points_awarded,omitempty"`
}

type awardOutcome struct {
	applied bool
	message string
	tracker models.UserTracker
}

// Award validates an award request, enforces the one-per-day cap for daily
// task types, and mutates the caller's XP aggregate.
func (a *AwardController) Award(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req awardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	if req.UserID == "" || req.ActivityType == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: user_id and activity_type are required"})
		return
	}
	if req.PointsAwarded == nil || *req.PointsAwarded < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: points_awarded must be a non-negative number"})
		return
	}
	if req.UserID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "user_id does not match the authenticated user"})
		return
	}

	points := int(*req.PointsAwarded)
	outcome, err := a.apply(req, points)
	if err != nil {
		utils.Sugar.Errorf("award failed for user %s activity %s: %v", req.UserID, req.ActivityType, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to award points"})
		return
	}

	if !outcome.applied {
		ctx.JSON(http.StatusOK, awardResponse{Message: outcome.message})
		return
	}
	ctx.JSON(http.StatusOK, awardResponse{
		Message:       "points awarded",
		NewXP:         &outcome.tracker.XP,
		NewLevel:      &outcome.tracker.Level,
		PointsAwarded: &points,
	})
}

// apply runs the award inside one transaction: the daily completion insert,
// the request-id dedup record, and the XP increment either all land or none
// do. The activity log append for keyless requests stays outside the
// transaction and is best-effort.
func (a *AwardController) apply(req awardRequest, points int) (awardOutcome, error) {
	var task *models.TaskDefinition
	if models.IsDailyTask(req.ActivityType) {
		task = a.lookupTask(req.ActivityType)
		if task == nil {
			utils.Sugar.Warnf("no task definition for activity type %s, awarding without daily cap", req.ActivityType)
		}
	}

	today := a.now().Format(models.DateLayout)
	outcome := awardOutcome{}
	loggedInTx := false

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if task != nil {
			completion := models.DailyTaskCompletion{
				UserID:        req.UserID,
				TaskID:        task.ID,
				CompletedDate: today,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errAlreadyCompleted
			}
		}

		if req.RequestID != "" {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(a.logEntry(req, points))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errDuplicateRequest
			}
			loggedInTx = true
		}

		seed := models.UserTracker{UserID: req.UserID, XP: points, Level: models.LevelForXP(points)}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"xp":         gorm.Expr("xp + ?", points),
				"updated_at": a.now(),
			}),
		}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", req.UserID).Take(&outcome.tracker).Error; err != nil {
			return err
		}
		if level := models.LevelForXP(outcome.tracker.XP); level != outcome.tracker.Level {
			if err := tx.Model(&models.UserTracker{}).Where("user_id = ?", req.UserID).Update("level", level).Error; err != nil {
				return err
			}
			outcome.tracker.Level = level
		}
		return nil
	})

	switch {
	case errors.Is(err, errAlreadyCompleted), errors.Is(err, errDuplicateRequest):
		outcome.message = err.Error()
		return outcome, nil
	case err != nil:
		return outcome, err
	}

	if !loggedInTx {
		// XP is already committed; a failed append must not fail the award.
		if err := a.db.Create(a.logEntry(req, points)).Error; err != nil {
			utils.Sugar.Warnf("activity log append failed for user %s: %v", req.UserID, err)
		}
	}

	outcome.applied = true
	return outcome, nil
}

func (a *AwardController) logEntry(req awardRequest, points int) *models.ActivityLog {
	entry := &models.ActivityLog{
		UserID:          req.UserID,
		ActivityType:    req.ActivityType,
		PointsAwarded:   points,
		RelatedItemID:   req.RelatedItemID,
		RelatedItemType: req.RelatedItemType,
		CreatedAt:       a.now(),
	}
	if req.RequestID != "" {
		rid := req.RequestID
		entry.RequestID = &rid
	}
	return entry
}

// lookupTask resolves a daily activity type to its task definition, going
// through the Redis cache first. Returns nil when no definition exists.
func (a *AwardController) lookupTask(activityType string) *models.TaskDefinition {
	key := "taskdef:" + activityType
	var task models.TaskDefinition
	if utils.CacheGetJSON(key, &task) && task.ID != 0 {
		return &task
	}
	if err := a.db.Where("activity_type = ?", activityType).First(&task).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Sugar.Warnf("task definition lookup failed for %s: %v", activityType, err)
		}
		return nil
	}
	utils.CacheSetJSON(key, &task, 0)
	return &task
}

func getUserID(ctx *gin.Context) (string, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
