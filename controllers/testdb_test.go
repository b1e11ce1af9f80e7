package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/animelog/tracker/config"
	"github.com/animelog/tracker/middleware"
	"github.com/animelog/tracker/models"
	"github.com/animelog/tracker/utils"
)

var testSetupOnce sync.Once

// initTestEnv installs the test configuration and logger once per package
// run. Without a cached config the Redis singleton on the task lookup path
// would fall through to the boot-time loader.
func initTestEnv(t *testing.T) {
	t.Helper()
	testSetupOnce.Do(func() {
		config.SetForTesting(config.AppConfig{
			JWTSecret: "controllers-test-secret",
			LogLevel:  "error",
			RedisHost: "127.0.0.1",
			RedisPort: 6379,
		})
		if err := utils.InitLogger(config.Get()); err != nil {
			t.Fatalf("logger init failed: %v", err)
		}
	})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	initTestEnv(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.TaskDefinition{},
		&models.DailyTaskCompletion{},
		&models.UserTracker{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := config.SeedTaskDefinitions(db); err != nil {
		t.Fatalf("seed task definitions: %v", err)
	}
	return db
}

// testUserMiddleware injects the authenticated user id from a test header in
// place of the JWT middleware.
func testUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(middleware.ContextUserIDKey, uid)
		}
		c.Next()
	}
}

func postJSON(t *testing.T, r *gin.Engine, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, r *gin.Engine, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
