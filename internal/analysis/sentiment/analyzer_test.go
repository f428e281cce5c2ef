package sentiment

import "testing"

func TestAnalyzeAnxiousText(t *testing.T) {
	result, err := Analyze("I feel anxious and worried today")
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}
	if result.Emotion != "Anxious" {
		t.Fatalf("expected Anxious, got %s", result.Emotion)
	}
	if result.Scores.Compound >= 0 {
		t.Fatalf("expected negative compound, got %f", result.Scores.Compound)
	}
	if len(result.Keywords) == 0 || result.Keywords[0] != "Anxious" {
		t.Fatalf("expected Anxious keyword first, got %v", result.Keywords)
	}
}

func TestAnalyzePositiveText(t *testing.T) {
	result, err := Analyze("I am grateful and happy today")
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}
	if result.Emotion != "Grateful" {
		t.Fatalf("expected Grateful, got %s", result.Emotion)
	}
	if result.Scores.Compound <= 0 {
		t.Fatalf("expected positive compound, got %f", result.Scores.Compound)
	}
}

func TestAnalyzeNeutralText(t *testing.T) {
	result, err := Analyze("the weather seemed ordinary this morning")
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}
	if result.Emotion != "Neutral / Reflective" {
		t.Fatalf("expected neutral emotion, got %s", result.Emotion)
	}
	if result.Scores.Neutral <= 0.6 {
		t.Fatalf("expected dominant neutral ratio, got %f", result.Scores.Neutral)
	}
}

func TestAnalyzeNegationFlipsValence(t *testing.T) {
	result, err := Analyze("I am not happy about this")
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}
	if result.Scores.Compound >= 0 {
		t.Fatalf("expected negated compound below zero, got %f", result.Scores.Compound)
	}
	if result.Emotion == "Happy" {
		t.Fatal("keyword must not override a contradicting score")
	}
}

func TestAnalyzeRejectsShortText(t *testing.T) {
	if _, err := Analyze("hi"); err != ErrTextTooShort {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
}

func TestStrongEmotionThreshold(t *testing.T) {
	weak := Result{Scores: Scores{Compound: 0.5}}
	if weak.Strong() {
		t.Fatal("0.5 compound must not be strong")
	}
	strong := Result{Scores: Scores{Compound: -0.81}}
	if !strong.Strong() {
		t.Fatal("-0.81 compound must be strong")
	}
}
