package client

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/animelog/tracker/models"
)

// MarkerStore persists completion hint timestamps keyed by task key.
// It is a cache, never authoritative: the server enforces the daily cap on
// its own records, so a cleared or stale store only costs an extra call.
type MarkerStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// FileMarkerStore keeps markers in a single JSON file.
type FileMarkerStore struct {
	path string
	mu   sync.Mutex
}

// NewFileMarkerStore creates a store backed by the given file path.
func NewFileMarkerStore(path string) *FileMarkerStore {
	return &FileMarkerStore{path: path}
}

// Get returns the stored timestamp for a key.
func (s *FileMarkerStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	markers := s.load()
	v, ok := markers[key]
	return v, ok
}

// Set persists a timestamp under a key.
func (s *FileMarkerStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	markers := s.load()
	markers[key] = value
	b, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *FileMarkerStore) load() map[string]string {
	markers := map[string]string{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return markers
	}
	// a corrupt file degrades to an empty hint cache
	_ = json.Unmarshal(b, &markers)
	return markers
}

// TaskGate suppresses redundant daily task award calls using locally
// persisted completion markers.
type TaskGate struct {
	client *Client
	store  MarkerStore
	now    func() time.Time
}

// NewTaskGate creates a gate in front of the given client.
func NewTaskGate(c *Client, store MarkerStore) *TaskGate {
	return &TaskGate{client: c, store: store, now: time.Now}
}

// HandleDailyCheckIn awards the daily check-in unless it was already
// completed today. Reports true when an award round-trip was attempted and
// succeeded, false when the marker suppressed the call.
func (g *TaskGate) HandleDailyCheckIn(ctx context.Context, userID string) (bool, error) {
	return g.run(ctx, "daily_check_in_"+userID, userID, models.ActivityDailyLogin, models.PointsDailyCheckIn, "", "")
}

// HandleCommentComrade awards the first-comment-of-the-day task.
func (g *TaskGate) HandleCommentComrade(ctx context.Context, userID, itemID, itemType string) (bool, error) {
	key := "comment_comrade_" + userID + "_" + g.today()
	return g.run(ctx, key, userID, models.ActivityCommentMade, models.PointsCommentComrade, itemID, itemType)
}

// HandleQuickReviewer awards the first-review-of-the-day task.
func (g *TaskGate) HandleQuickReviewer(ctx context.Context, userID, itemID, itemType string) (bool, error) {
	key := "quick_reviewer_" + userID + "_" + g.today()
	return g.run(ctx, key, userID, models.ActivityQuickReviewer, models.PointsQuickReviewer, itemID, itemType)
}

// run is the shared gate: check marker, call the service, then mark. The
// marker is only written after a successful call so a failed award can be
// retried later.
func (g *TaskGate) run(ctx context.Context, key, userID, activityType string, points int, itemID, itemType string) (bool, error) {
	if g.wasCompletedToday(key) {
		return false, nil
	}
	if _, err := g.client.AwardPoints(ctx, userID, activityType, points, itemID, itemType); err != nil {
		return false, err
	}
	g.markCompleted(key)
	return true, nil
}

func (g *TaskGate) today() string {
	return g.now().Format(models.DateLayout)
}

func (g *TaskGate) wasCompletedToday(key string) bool {
	raw, ok := g.store.Get(key)
	if !ok {
		return false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	y1, m1, d1 := ts.Local().Date()
	y2, m2, d2 := g.now().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (g *TaskGate) markCompleted(key string) {
	// hint only; the server still deduplicates
	_ = g.store.Set(key, g.now().Format(time.RFC3339))
}
