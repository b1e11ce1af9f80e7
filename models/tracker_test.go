package models

import "testing"

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{5, 1},
		{195, 1},
		{199, 1},
		{200, 2},
		{205, 2},
		{223, 2},
		{399, 2},
		{400, 3},
		{-5, 1},
	}
	for _, tc := range tests {
		if got := LevelForXP(tc.xp); got != tc.level {
			t.Fatalf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.level)
		}
	}
}

func TestIsDailyTask(t *testing.T) {
	daily := []string{ActivityDailyLogin, ActivityCommentMade, ActivityQuickReviewer}
	for _, at := range daily {
		if !IsDailyTask(at) {
			t.Fatalf("expected %s to be a daily task", at)
		}
	}
	other := []string{ActivityPostLiked, ActivityReviewSubmitted, ActivityCommentPost, "unknown"}
	for _, at := range other {
		if IsDailyTask(at) {
			t.Fatalf("expected %s not to be a daily task", at)
		}
	}
}

func TestSeedTaskDefinitionsCoverDailyTypes(t *testing.T) {
	defs := SeedTaskDefinitions()
	if len(defs) != 3 {
		t.Fatalf("expected 3 seed definitions, got %d", len(defs))
	}
	byType := map[string]TaskDefinition{}
	for _, def := range defs {
		byType[def.ActivityType] = def
	}
	if byType[ActivityDailyLogin].Points != PointsDailyCheckIn {
		t.Fatalf("unexpected daily_login points: %d", byType[ActivityDailyLogin].Points)
	}
	if byType[ActivityCommentMade].Points != PointsCommentComrade {
		t.Fatalf("unexpected comment_made points: %d", byType[ActivityCommentMade].Points)
	}
	if byType[ActivityQuickReviewer].Points != PointsQuickReviewer {
		t.Fatalf("unexpected quick_reviewer points: %d", byType[ActivityQuickReviewer].Points)
	}
}
