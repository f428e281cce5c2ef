// Package mood provides mood logging and the recurring-factor aggregation
// feeding the daily-tip prompt.
package mood

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	moodmodel "github.com/haven-labs/mindhaven/backend/internal/model/mood"
)

// ErrDateRequired rejects entries without a date.
var ErrDateRequired = errors.New("entry date is required")

const tipPromptTemplate = "These are the top recurring mental health factors today: %s. Suggest a professional daily mental health tip."

// DefaultFactorLimit caps the recurring factors folded into the tip prompt.
const DefaultFactorLimit = 5

// Store is the datastore surface this service needs. The aggregation paths
// are strictly read-only.
type Store interface {
	SaveMood(ctx context.Context, entry moodmodel.Entry) (int64, error)
	ListMoods(ctx context.Context) ([]moodmodel.Point, error)
	MoodSummary(ctx context.Context) (moodmodel.Summary, error)
	ListFactors(ctx context.Context) ([]string, error)
}

// Service wraps the mood store.
type Service struct {
	store Store
}

// NewService builds a Service over the given store handle.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// LogEntry persists a mood entry and returns its id.
func (s *Service) LogEntry(ctx context.Context, entry moodmodel.Entry) (int64, error) {
	if strings.TrimSpace(entry.Date) == "" {
		return 0, ErrDateRequired
	}
	return s.store.SaveMood(ctx, entry)
}

// History returns the date/mood series ordered by date.
func (s *Service) History(ctx context.Context) ([]moodmodel.Point, error) {
	return s.store.ListMoods(ctx)
}

// Summary buckets all stored scores.
func (s *Service) Summary(ctx context.Context) (moodmodel.Summary, error) {
	return s.store.MoodSummary(ctx)
}

// TopFactors derives the most frequent normalized factor labels across all
// stored entries.
func (s *Service) TopFactors(ctx context.Context, limit int) ([]string, error) {
	raw, err := s.store.ListFactors(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading factors: %w", err)
	}

	recurring := AggregateFactors(raw, limit)
	labels := make([]string, len(recurring))
	for i, f := range recurring {
		labels[i] = f.Label
	}
	return labels, nil
}

// TipPrompt folds the top recurring factors into the fixed daily-tip
// user prompt.
func (s *Service) TipPrompt(ctx context.Context) (string, error) {
	factors, err := s.TopFactors(ctx, DefaultFactorLimit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(tipPromptTemplate, strings.Join(factors, ", ")), nil
}

// AggregateFactors tallies comma-separated factor lists into recurring
// factors. Tokens are trimmed and lowercased; blanks contribute nothing.
// Results are ordered by descending count, ties kept in first-seen order.
func AggregateFactors(raw []string, limit int) []moodmodel.RecurringFactor {
	counts := make(map[string]int)
	order := make([]string, 0, 16)

	for _, row := range raw {
		for _, token := range strings.Split(row, ",") {
			label := strings.ToLower(strings.TrimSpace(token))
			if label == "" {
				continue
			}
			if _, seen := counts[label]; !seen {
				order = append(order, label)
			}
			counts[label]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	result := make([]moodmodel.RecurringFactor, len(order))
	for i, label := range order {
		result[i] = moodmodel.RecurringFactor{Label: label, Count: counts[label]}
	}
	return result
}
