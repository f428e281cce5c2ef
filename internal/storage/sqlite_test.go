package storage

import (
	"context"
	"testing"

	"github.com/haven-labs/mindhaven/backend/internal/model/mood"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveMoodAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveMood(ctx, mood.Entry{Date: "2025-06-01", Mood: 4, Factors: "sleep,work", Note: "busy day"})
	if err != nil {
		t.Fatalf("SaveMood err: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero insert id")
	}

	if _, err := store.SaveMood(ctx, mood.Entry{Date: "2025-06-02", Mood: 2}); err != nil {
		t.Fatalf("SaveMood err: %v", err)
	}

	points, err := store.ListMoods(ctx)
	if err != nil {
		t.Fatalf("ListMoods err: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Date != "2025-06-01" || points[0].Mood != 4 {
		t.Fatalf("unexpected first point: %+v", points[0])
	}
}

func TestMoodSummaryBuckets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, score := range []int{1, 2, 3, 4, 5, 7} {
		if _, err := store.SaveMood(ctx, mood.Entry{Date: "2025-06-01", Mood: score}); err != nil {
			t.Fatalf("SaveMood err: %v", err)
		}
	}

	summary, err := store.MoodSummary(ctx)
	if err != nil {
		t.Fatalf("MoodSummary err: %v", err)
	}

	if summary.Sad != 2 || summary.Neutral != 1 || summary.Happy != 1 || summary.Excited != 1 || summary.Angry != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestListFactorsSkipsNull(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.db.ExecContext(ctx, "INSERT INTO moods (entry_date, mood, factors) VALUES ('2025-06-01', 3, NULL)"); err != nil {
		t.Fatalf("insert err: %v", err)
	}
	if _, err := store.SaveMood(ctx, mood.Entry{Date: "2025-06-02", Mood: 3, Factors: "sleep, stress"}); err != nil {
		t.Fatalf("SaveMood err: %v", err)
	}

	factors, err := store.ListFactors(ctx)
	if err != nil {
		t.Fatalf("ListFactors err: %v", err)
	}
	if len(factors) != 1 {
		t.Fatalf("expected 1 factor row, got %d", len(factors))
	}
	if factors[0] != "sleep, stress" {
		t.Fatalf("unexpected factors: %q", factors[0])
	}
}
