package sentiment

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(_ context.Context, audio io.Reader, _ string) (string, error) {
	io.Copy(io.Discard, audio)
	return s.text, s.err
}

func TestAnalyzeAudioHappyPath(t *testing.T) {
	svc := NewService(&stubTranscriber{text: "i feel stressed and overwhelmed"})

	transcript, result, err := svc.AnalyzeAudio(context.Background(), strings.NewReader("clip"), "audio/webm")
	if err != nil {
		t.Fatalf("AnalyzeAudio err: %v", err)
	}
	if transcript != "i feel stressed and overwhelmed" {
		t.Fatalf("unexpected transcript: %q", transcript)
	}
	if result.Emotion != "Stressed" {
		t.Fatalf("expected Stressed, got %s", result.Emotion)
	}
}

func TestAnalyzeAudioNoTranscriber(t *testing.T) {
	svc := NewService(nil)
	if _, _, err := svc.AnalyzeAudio(context.Background(), strings.NewReader(""), ""); !errors.Is(err, ErrTranscriptionUnavailable) {
		t.Fatalf("expected ErrTranscriptionUnavailable, got %v", err)
	}
}

func TestAnalyzeAudioEmptyTranscript(t *testing.T) {
	svc := NewService(&stubTranscriber{text: " "})
	if _, _, err := svc.AnalyzeAudio(context.Background(), strings.NewReader("clip"), ""); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestAnalyzeAudioTranscriberFailure(t *testing.T) {
	svc := NewService(&stubTranscriber{err: errors.New("upstream down")})
	if _, _, err := svc.AnalyzeAudio(context.Background(), strings.NewReader("clip"), ""); err == nil {
		t.Fatal("expected error from failing transcriber")
	}
}
