package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/animelog/tracker/models"
)

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func newTrackerRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewTrackerController(db)
	r := gin.New()
	r.GET("/status", testUserMiddleware(), ctrl.Status)
	r.GET("/activity", testUserMiddleware(), ctrl.Activity)
	return r
}

func TestTrackerStatusDefaultsForNewUser(t *testing.T) {
	db := newTestDB(t)
	r := newTrackerRouter(db)

	w := getJSON(t, r, "/status", "user-1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp envelope
	decodeBody(t, w, &resp)
	if resp.Code != 0 {
		t.Fatalf("expected code 0, got %d", resp.Code)
	}
	if xp := resp.Data["xp"].(float64); xp != 0 {
		t.Fatalf("expected xp=0 for new user, got %v", xp)
	}
	if level := resp.Data["level"].(float64); level != 1 {
		t.Fatalf("expected level=1 for new user, got %v", level)
	}
}

func TestTrackerStatusReflectsAggregate(t *testing.T) {
	db := newTestDB(t)
	r := newTrackerRouter(db)

	if err := db.Create(&models.UserTracker{UserID: "user-2", XP: 415, Level: 3}).Error; err != nil {
		t.Fatalf("seed tracker: %v", err)
	}

	w := getJSON(t, r, "/status", "user-2")
	var resp envelope
	decodeBody(t, w, &resp)
	if xp := resp.Data["xp"].(float64); xp != 415 {
		t.Fatalf("expected xp=415, got %v", xp)
	}
	if level := resp.Data["level"].(float64); level != 3 {
		t.Fatalf("expected level=3, got %v", level)
	}
}

func TestTrackerStatusRequiresUser(t *testing.T) {
	db := newTestDB(t)
	r := newTrackerRouter(db)

	w := getJSON(t, r, "/status", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestTrackerActivityNewestFirstAndCapped(t *testing.T) {
	db := newTestDB(t)
	r := newTrackerRouter(db)

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := models.ActivityLog{
			UserID:        "user-3",
			ActivityType:  models.ActivityPostLiked,
			PointsAwarded: 5,
			RelatedItemID: fmt.Sprintf("post-%d", i),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	w := getJSON(t, r, "/activity?limit=3", "user-3")
	var resp envelope
	decodeBody(t, w, &resp)
	entries := resp.Data["entries"].([]interface{})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	first := entries[0].(map[string]interface{})
	if first["related_item_id"] != "post-4" {
		t.Fatalf("expected newest entry first, got %v", first["related_item_id"])
	}
}

func TestTrackerActivityScopedToUser(t *testing.T) {
	db := newTestDB(t)
	r := newTrackerRouter(db)

	if err := db.Create(&models.ActivityLog{UserID: "user-a", ActivityType: models.ActivityPostLiked, PointsAwarded: 5}).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}

	w := getJSON(t, r, "/activity", "user-b")
	var resp envelope
	decodeBody(t, w, &resp)
	if entries := resp.Data["entries"].([]interface{}); len(entries) != 0 {
		t.Fatalf("expected no entries for other user, got %d", len(entries))
	}
}
