// Package sentiment scores the emotional tone of a message independently of
// the chat reply path.
package sentiment

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

// ErrTextTooShort rejects input with no analyzable content.
var ErrTextTooShort = errors.New("text too short for sentiment analysis")

// StrongCompound is the absolute compound score above which clients
// auto-surface the detail view.
const StrongCompound = 0.7

// Scores carries the normalized sentiment components. Compound ranges from
// -1 (most negative) to +1 (most positive).
type Scores struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Result is the outcome of one analysis.
type Result struct {
	Emotion  string   `json:"emotion"`
	Scores   Scores   `json:"scores"`
	Keywords []string `json:"keywords_detected,omitempty"`
}

// Strong reports whether the result should be auto-surfaced.
func (r Result) Strong() bool {
	return math.Abs(r.Scores.Compound) > StrongCompound
}

// lexicon holds word valences on the usual -4..+4 scale.
var lexicon = map[string]float64{
	"good": 1.9, "great": 3.1, "happy": 2.7, "joyful": 2.9, "love": 3.2,
	"hopeful": 2.3, "optimistic": 2.4, "motivated": 2.1, "energized": 2.0,
	"grateful": 2.6, "thankful": 2.5, "calm": 1.3, "peaceful": 2.2,
	"relaxed": 1.8, "better": 1.9, "fine": 0.8, "okay": 0.9, "proud": 2.5,
	"excited": 2.4, "wonderful": 3.0, "amazing": 2.8, "supported": 1.6,
	"safe": 1.6, "rested": 1.5, "confident": 2.3,
	"bad": -2.5, "sad": -2.1, "unhappy": -1.8, "depressed": -2.9,
	"anxious": -2.0, "anxiety": -2.2, "worried": -1.9, "nervous": -1.7,
	"tired": -1.4, "exhausted": -2.2, "fatigued": -1.9, "lonely": -2.1,
	"alone": -1.3, "angry": -2.3, "mad": -2.0, "frustrated": -2.1,
	"annoyed": -1.7, "stressed": -2.2, "overwhelmed": -2.4, "panic": -2.8,
	"scared": -2.2, "afraid": -2.1, "hopeless": -3.0, "worthless": -3.1,
	"miserable": -2.8, "awful": -2.7, "terrible": -2.9, "hurt": -2.0,
	"cry": -1.9, "crying": -2.0, "fear": -2.1, "hate": -2.7, "upset": -1.9,
}

// negations flip the valence of the following word.
var negations = map[string]bool{
	"not": true, "no": true, "never": true, "dont": true, "cant": true,
	"wont": true, "isnt": true, "wasnt": true, "couldnt": true, "nothing": true,
}

const negationScalar = -0.74

// keywordEmotions maps strong lexical cues to a display emotion.
// First match wins and can override the score-derived label.
var keywordEmotions = []struct {
	word    string
	emotion string
}{
	{"anxious", "Anxious"},
	{"anxiety", "Anxious"},
	{"worried", "Anxious"},
	{"nervous", "Anxious"},
	{"tired", "Exhausted"},
	{"exhausted", "Exhausted"},
	{"fatigued", "Exhausted"},
	{"lonely", "Lonely"},
	{"alone", "Lonely"},
	{"depressed", "Depressed"},
	{"sad", "Sad"},
	{"unhappy", "Sad"},
	{"angry", "Angry"},
	{"mad", "Angry"},
	{"frustrated", "Frustrated"},
	{"annoyed", "Frustrated"},
	{"relaxed", "Calm"},
	{"calm", "Calm"},
	{"peaceful", "Calm"},
	{"grateful", "Grateful"},
	{"thankful", "Grateful"},
	{"happy", "Happy"},
	{"joyful", "Happy"},
	{"hopeful", "Hopeful"},
	{"optimistic", "Hopeful"},
	{"motivated", "Motivated"},
	{"energized", "Motivated"},
	{"stressed", "Stressed"},
	{"overwhelmed", "Stressed"},
	{"panic", "Panicked"},
	{"scared", "Scared"},
	{"afraid", "Scared"},
}

var cleanPattern = regexp.MustCompile(`[^a-z\s.!?]`)

// Analyze scores the text and derives a display emotion.
func Analyze(text string) (Result, error) {
	cleaned := cleanPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "")
	if len(strings.TrimSpace(cleaned)) < 3 {
		return Result{}, ErrTextTooShort
	}

	scores := scoreWords(cleaned)

	exclamations := strings.Count(text, "!")
	if exclamations > 4 {
		exclamations = 4
	}
	if exclamations > 0 && scores.sum != 0 {
		boost := 0.292 * float64(exclamations)
		if scores.sum < 0 {
			boost = -boost
		}
		scores.sum += boost
	}

	compound := scores.sum / math.Sqrt(scores.sum*scores.sum+15)

	total := scores.pos + scores.neg + scores.neu
	result := Result{
		Scores: Scores{
			Compound: round3(compound),
			Positive: round3(safeRatio(scores.pos, total)),
			Negative: round3(safeRatio(scores.neg, total)),
			Neutral:  round3(safeRatio(scores.neu, total)),
		},
		Keywords: detectKeywords(cleaned),
	}
	result.Emotion = deriveEmotion(result)
	return result, nil
}

type wordScores struct {
	sum, pos, neg, neu float64
}

func scoreWords(cleaned string) wordScores {
	var s wordScores
	words := strings.Fields(cleanWordBreaks(cleaned))

	negated := false
	for _, word := range words {
		if negations[word] {
			negated = true
			s.neu++
			continue
		}

		valence, ok := lexicon[word]
		if !ok {
			s.neu++
			continue
		}
		if negated {
			valence *= negationScalar
			negated = false
		}

		s.sum += valence
		switch {
		case valence > 0:
			s.pos += valence + 1
		case valence < 0:
			s.neg += -valence + 1
		default:
			s.neu++
		}
	}
	return s
}

func cleanWordBreaks(text string) string {
	return strings.NewReplacer(".", " ", "!", " ", "?", " ").Replace(text)
}

func detectKeywords(cleaned string) []string {
	words := make(map[string]bool)
	for _, w := range strings.Fields(cleanWordBreaks(cleaned)) {
		words[w] = true
	}

	var detected []string
	for _, kw := range keywordEmotions {
		if words[kw.word] {
			detected = append(detected, kw.emotion)
		}
	}
	return detected
}

// deriveEmotion applies the weighted emotion ladder, letting a strong keyword
// cue override unless the score plainly contradicts it.
func deriveEmotion(r Result) string {
	compound := r.Scores.Compound

	var emotion string
	switch {
	case compound >= 0.6 && r.Scores.Positive > 0.5:
		emotion = "Hopeful / Motivated"
	case compound >= 0.3:
		emotion = "Calm / Relaxed"
	case compound >= -0.2 && r.Scores.Neutral > 0.6:
		emotion = "Neutral / Reflective"
	case compound >= -0.6 && compound < -0.2 && r.Scores.Negative > 0.3:
		emotion = "Sad / Low"
	case compound < -0.6:
		emotion = "Stressed / Anxious"
	default:
		emotion = "Mixed Emotions"
	}

	if len(r.Keywords) > 0 {
		primary := r.Keywords[0]
		contradicts := (strings.Contains(primary, "Anxious") && compound > 0) ||
			(strings.Contains(primary, "Happy") && compound < -0.3)
		if !contradicts {
			emotion = primary
		}
	}

	return emotion
}

func safeRatio(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
