package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newGateServer(t *testing.T, calls *int32, status *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if s := atomic.LoadInt32(status); s != http.StatusOK {
			w.WriteHeader(int(s))
			_, _ = w.Write([]byte(`{"error":"boom"}`))
			return
		}
		xp, level := 5, 1
		_ = json.NewEncoder(w).Encode(AwardResponse{Message: "points awarded", NewXP: &xp, NewLevel: &level})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGate(t *testing.T, baseURL string, at time.Time) *TaskGate {
	t.Helper()
	c := New(baseURL, StaticTokenSource("test-token"), WithBackoffUnit(time.Millisecond))
	store := NewFileMarkerStore(filepath.Join(t.TempDir(), "markers.json"))
	g := NewTaskGate(c, store)
	g.now = func() time.Time { return at }
	return g
}

func TestTaskGateSuppressesSecondCallSameDay(t *testing.T) {
	var calls, status int32
	status = http.StatusOK
	srv := newGateServer(t, &calls, &status)
	g := newTestGate(t, srv.URL, time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))

	attempted, err := g.HandleDailyCheckIn(context.Background(), "user-1")
	if err != nil || !attempted {
		t.Fatalf("expected first call to award, got attempted=%v err=%v", attempted, err)
	}
	attempted, err = g.HandleDailyCheckIn(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempted {
		t.Fatalf("second call should be suppressed by the marker")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly 1 network call, got %d", n)
	}
}

func TestTaskGateDoesNotMarkOnFailure(t *testing.T) {
	var calls, status int32
	status = http.StatusInternalServerError
	srv := newGateServer(t, &calls, &status)
	g := newTestGate(t, srv.URL, time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))

	attempted, err := g.HandleCommentComrade(context.Background(), "user-1", "post-7", "post")
	if err == nil || attempted {
		t.Fatalf("expected failure, got attempted=%v err=%v", attempted, err)
	}

	// service recovers; the gate must retry because no marker was written
	atomic.StoreInt32(&status, http.StatusOK)
	attempted, err = g.HandleCommentComrade(context.Background(), "user-1", "post-7", "post")
	if err != nil || !attempted {
		t.Fatalf("expected retry to award, got attempted=%v err=%v", attempted, err)
	}
}

func TestTaskGateMarkerExpiresNextDay(t *testing.T) {
	var calls, status int32
	status = http.StatusOK
	srv := newGateServer(t, &calls, &status)

	c := New(srv.URL, StaticTokenSource("test-token"), WithBackoffUnit(time.Millisecond))
	store := NewFileMarkerStore(filepath.Join(t.TempDir(), "markers.json"))
	g := NewTaskGate(c, store)

	day1 := time.Date(2026, 3, 14, 23, 30, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 15, 0, 30, 0, 0, time.Local)

	g.now = func() time.Time { return day1 }
	if attempted, err := g.HandleQuickReviewer(context.Background(), "user-1", "anime-3", "anime"); err != nil || !attempted {
		t.Fatalf("day one award failed: attempted=%v err=%v", attempted, err)
	}

	g.now = func() time.Time { return day2 }
	if attempted, err := g.HandleQuickReviewer(context.Background(), "user-1", "anime-3", "anime"); err != nil || !attempted {
		t.Fatalf("expected a fresh award on the next day: attempted=%v err=%v", attempted, err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 network calls, got %d", n)
	}
}

func TestTaskGateKeysAreScopedPerUser(t *testing.T) {
	var calls, status int32
	status = http.StatusOK
	srv := newGateServer(t, &calls, &status)
	g := newTestGate(t, srv.URL, time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))

	if _, err := g.HandleDailyCheckIn(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attempted, err := g.HandleDailyCheckIn(context.Background(), "user-2")
	if err != nil || !attempted {
		t.Fatalf("a different user must not be suppressed: attempted=%v err=%v", attempted, err)
	}
}

func TestFileMarkerStoreSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.json")
	s := NewFileMarkerStore(path)
	if err := s.Set("daily_check_in_user-1", "2026-03-14T09:00:00Z"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened := NewFileMarkerStore(path)
	v, ok := reopened.Get("daily_check_in_user-1")
	if !ok || v != "2026-03-14T09:00:00Z" {
		t.Fatalf("expected persisted marker, got %q ok=%v", v, ok)
	}
}
