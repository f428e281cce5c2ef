package mood

import "time"

// Entry is one logged mood record. Factors is a free-text comma-separated
// list as submitted by the tracking form.
type Entry struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Mood      int       `json:"mood"`
	Factors   string    `json:"factors,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Point is the trimmed projection returned by the mood history endpoint.
type Point struct {
	Date string `json:"date"`
	Mood int    `json:"mood"`
}

// Summary buckets mood scores into coarse emotional bands.
type Summary struct {
	Sad     int `json:"sad"`
	Neutral int `json:"neutral"`
	Happy   int `json:"happy"`
	Excited int `json:"excited"`
	Angry   int `json:"angry"`
}

// Bucket assigns a score to its summary band.
func (s *Summary) Bucket(score int) {
	switch {
	case score <= 2:
		s.Sad++
	case score == 3:
		s.Neutral++
	case score == 4:
		s.Happy++
	case score == 5:
		s.Excited++
	default:
		s.Angry++
	}
}

// RecurringFactor is a normalized factor label with its occurrence count,
// recomputed on every daily-tip request and never persisted.
type RecurringFactor struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
