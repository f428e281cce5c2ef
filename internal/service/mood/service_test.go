package mood

import (
	"context"
	"strings"
	"testing"

	moodmodel "github.com/haven-labs/mindhaven/backend/internal/model/mood"
)

type stubStore struct {
	factors    []string
	factorsErr error
}

func (s *stubStore) SaveMood(context.Context, moodmodel.Entry) (int64, error) { return 1, nil }
func (s *stubStore) ListMoods(context.Context) ([]moodmodel.Point, error)     { return nil, nil }
func (s *stubStore) MoodSummary(context.Context) (moodmodel.Summary, error) {
	return moodmodel.Summary{}, nil
}
func (s *stubStore) ListFactors(context.Context) ([]string, error) {
	return s.factors, s.factorsErr
}

func TestAggregateFactorsNormalizesAndCounts(t *testing.T) {
	// The NULL row never reaches the aggregator; the store skips it.
	raw := []string{"sleep, stress", "Stress ", "", "sleep"}

	got := AggregateFactors(raw, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 factors, got %d", len(got))
	}

	// sleep and stress both count 2; sleep was seen first, so the stable
	// tie-break keeps it in front.
	if got[0].Label != "sleep" || got[0].Count != 2 {
		t.Fatalf("unexpected first factor: %+v", got[0])
	}
	if got[1].Label != "stress" || got[1].Count != 2 {
		t.Fatalf("unexpected second factor: %+v", got[1])
	}
}

func TestAggregateFactorsDescendingCount(t *testing.T) {
	raw := []string{"work", "work, sleep", "work, sleep", "mood"}

	got := AggregateFactors(raw, 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 factors, got %d", len(got))
	}
	if got[0].Label != "work" || got[0].Count != 3 {
		t.Fatalf("unexpected top factor: %+v", got[0])
	}
	if got[1].Label != "sleep" || got[1].Count != 2 {
		t.Fatalf("unexpected second factor: %+v", got[1])
	}
	if got[2].Label != "mood" || got[2].Count != 1 {
		t.Fatalf("unexpected third factor: %+v", got[2])
	}
}

func TestAggregateFactorsBlankRowsContributeNothing(t *testing.T) {
	if got := AggregateFactors([]string{"", " , ", ","}, 5); len(got) != 0 {
		t.Fatalf("expected no factors, got %+v", got)
	}
}

func TestTipPromptUsesTopFactors(t *testing.T) {
	svc := NewService(&stubStore{factors: []string{"sleep, stress", "stress"}})

	prompt, err := svc.TipPrompt(context.Background())
	if err != nil {
		t.Fatalf("TipPrompt err: %v", err)
	}

	if !strings.Contains(prompt, "stress, sleep") {
		t.Fatalf("expected factors in count order, got %q", prompt)
	}
	if !strings.Contains(prompt, "Suggest a professional daily mental health tip.") {
		t.Fatalf("template missing directive: %q", prompt)
	}
}

func TestLogEntryRequiresDate(t *testing.T) {
	svc := NewService(&stubStore{})
	if _, err := svc.LogEntry(context.Background(), moodmodel.Entry{Mood: 3}); err != ErrDateRequired {
		t.Fatalf("expected ErrDateRequired, got %v", err)
	}
}
