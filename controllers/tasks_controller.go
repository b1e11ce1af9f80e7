package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/animelog/tracker/models"
	"github.com/animelog/tracker/utils"
)

// TasksController serves the daily task catalogue together with the caller's
// completion state for today.
type TasksController struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTasksController creates a new controller instance.
func NewTasksController(db *gorm.DB) *TasksController {
	return &TasksController{db: db, now: time.Now}
}

type dailyTaskView struct {
	ID             uint   `json:"id"`
	TaskName       string `json:"task_name"`
	ActivityType   string `json:"activity_type"`
	Points         int    `json:"points"`
	CompletedToday bool   `json:"completed_today"`
}

// ListDaily returns every task definition with a completed_today flag.
func (t *TasksController) ListDaily(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var defs []models.TaskDefinition
	if err := t.db.Order("id").Find(&defs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load task definitions")
		return
	}

	today := t.now().Format(models.DateLayout)
	var completions []models.DailyTaskCompletion
	if err := t.db.Where("user_id = ? AND completed_date = ?", userID, today).Find(&completions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load completions")
		return
	}

	done := make(map[uint]bool, len(completions))
	for _, c := range completions {
		done[c.TaskID] = true
	}

	tasks := make([]dailyTaskView, 0, len(defs))
	for _, def := range defs {
		tasks = append(tasks, dailyTaskView{
			ID:             def.ID,
			TaskName:       def.TaskName,
			ActivityType:   def.ActivityType,
			Points:         def.Points,
			CompletedToday: done[def.ID],
		})
	}

	utils.Success(ctx, gin.H{"tasks": tasks})
}
