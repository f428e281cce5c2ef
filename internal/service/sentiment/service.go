// Package sentiment runs the emotional-tone side channel: text analysis and
// audio transcription + analysis, always decoupled from the chat reply path.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	analysis "github.com/haven-labs/mindhaven/backend/internal/analysis/sentiment"
)

var (
	// ErrTranscriptionUnavailable means no speech-to-text collaborator is
	// configured; the text path still works.
	ErrTranscriptionUnavailable = errors.New("transcription service not configured")

	// ErrNoSpeech means the recognizer produced no usable transcript.
	ErrNoSpeech = errors.New("no speech detected or speech too short")
)

// Transcriber converts captured audio to text. It is an external
// collaborator boundary; implementations live behind it.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, contentType string) (string, error)
}

// Service exposes the side-channel analysis operations.
type Service struct {
	transcriber Transcriber
}

// NewService builds a Service. transcriber may be nil, which disables the
// audio path only.
func NewService(transcriber Transcriber) *Service {
	return &Service{transcriber: transcriber}
}

// Transcriber exposes the configured speech-to-text collaborator, nil when
// the audio path is disabled.
func (s *Service) Transcriber() Transcriber {
	return s.transcriber
}

// TranscriptionEnabled reports whether the audio path can run.
func (s *Service) TranscriptionEnabled() bool {
	return s.transcriber != nil
}

// AnalyzeText classifies the emotional tone of a message.
func (s *Service) AnalyzeText(ctx context.Context, text string) (analysis.Result, error) {
	return analysis.Analyze(text)
}

// AnalyzeAudio transcribes a clip and classifies the transcript. The
// transcript is returned alongside the result even when analysis fails, so
// callers can echo what was heard.
func (s *Service) AnalyzeAudio(ctx context.Context, audio io.Reader, contentType string) (string, analysis.Result, error) {
	if s.transcriber == nil {
		return "", analysis.Result{}, ErrTranscriptionUnavailable
	}

	transcript, err := s.transcriber.Transcribe(ctx, audio, contentType)
	if err != nil {
		return "", analysis.Result{}, fmt.Errorf("transcribing audio: %w", err)
	}

	transcript = strings.TrimSpace(transcript)
	if len(transcript) < 2 {
		return transcript, analysis.Result{}, ErrNoSpeech
	}

	result, err := analysis.Analyze(transcript)
	if err != nil {
		return transcript, analysis.Result{}, err
	}
	return transcript, result, nil
}
